package mapper

import (
	"encoding/json"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// FromChatCompletionResponse translates a non-streaming Chat Completions
// reply into an Anthropic response, per §4.1 "Response: Chat Completions → Anthropic".
func FromChatCompletionResponse(resp wire.ChatCompletionResponse, requestedModel string) wire.Response {
	var content []wire.ContentBlock
	var finishReason string

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		finishReason = choice.FinishReason

		if choice.Message.Content != "" {
			content = append(content, wire.ContentBlock{Type: wire.ContentBlockText, Text: choice.Message.Content})
		}
		for _, tc := range choice.Message.ToolCalls {
			content = append(content, wire.ContentBlock{
				Type:  wire.ContentBlockToolUse,
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Input: parseToolArguments(tc.Function.Arguments),
			})
		}
	}

	return wire.NewResponse(
		"msg_"+resp.ID,
		requestedModel,
		content,
		ChatFinishReasonToStopReason(finishReason, HasToolUseBlock(content)),
		wire.Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens},
	)
}

// parseToolArguments parses a tool call's arguments string as JSON; on parse
// failure the raw string is preserved under _raw (§7 tool_arguments_parse_failure).
func parseToolArguments(raw string) json.RawMessage {
	if raw == "" {
		return json.RawMessage(`{}`)
	}
	var probe any
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		fallback, _ := json.Marshal(map[string]string{"_raw": raw})
		return fallback
	}
	return json.RawMessage(raw)
}

// ChatFinishReasonToStopReason maps a Chat Completions finish_reason to an
// Anthropic stop_reason, shared between non-streaming response translation
// and the Stream Translator's finalization step. hasToolCalls is ORed in
// regardless of finishReason, mirroring the ground-truth proxy's
// map_finish_reason(finish_reason, has_tool_calls) — some upstreams report a
// finish_reason other than "tool_calls" even when tool_calls are present.
func ChatFinishReasonToStopReason(finishReason string, hasToolCalls bool) wire.StopReason {
	switch {
	case finishReason == "tool_calls" || hasToolCalls:
		return wire.StopReasonToolUse
	case finishReason == "length":
		return wire.StopReasonMaxTokens
	default:
		return wire.StopReasonEndTurn
	}
}

// HasToolUseBlock reports whether a translated response carries at least one
// tool_use block; used by the §8 property-4 test (stop_reason == "tool_use"
// iff this holds).
func HasToolUseBlock(content []wire.ContentBlock) bool {
	for _, b := range content {
		if b.Type == wire.ContentBlockToolUse {
			return true
		}
	}
	return false
}
