package upstream

import (
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/responses"

	"github.com/adrycodes/anthro-bridge/internal/stream"
)

// DecodeChatChunk decodes one Chat Completions SSE payload using openai-go's
// own typed chunk shape, then adapts it into the stream package's neutral
// ChatChunk. Decoding through the real SDK type (rather than a hand-rolled
// one) is what exercises openai-go here; request construction stays on
// internal/wire's hand-rolled types, since this proxy builds outbound bodies
// itself rather than by way of an SDK request builder.
func DecodeChatChunk(payload string) (stream.ChatChunk, error) {
	var chunk openai.ChatCompletionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		return stream.ChatChunk{}, fmt.Errorf("decode chat completion chunk: %w", err)
	}

	out := stream.ChatChunk{
		ID:    chunk.ID,
		Model: chunk.Model,
	}

	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		out.Delta.Content = choice.Delta.Content
		out.FinishReason = choice.FinishReason
		for _, tc := range choice.Delta.ToolCalls {
			out.Delta.ToolCalls = append(out.Delta.ToolCalls, stream.ChatToolCallDelta{
				Index:     int(tc.Index),
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}

	if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
		out.Usage = &stream.Usage{
			PromptTokens:     int(chunk.Usage.PromptTokens),
			CompletionTokens: int(chunk.Usage.CompletionTokens),
		}
	}

	return out, nil
}

// DecodeResponsesEvent decodes one Responses API SSE payload using
// openai-go's ResponseStreamEventUnion discriminated union, then adapts it
// into the stream package's neutral ResponsesEvent.
func DecodeResponsesEvent(payload string) (stream.ResponsesEvent, error) {
	var ev responses.ResponseStreamEventUnion
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return stream.ResponsesEvent{}, fmt.Errorf("decode responses event: %w", err)
	}

	out := stream.ResponsesEvent{Type: ev.Type}

	switch ev.Type {
	case "response.output_text.delta":
		delta := ev.AsResponseOutputTextDelta()
		out.TextDelta = delta.Delta

	case "response.output_text.done":
		done := ev.AsResponseOutputTextDone()
		out.TextDone = done.Text
		out.TextSet = true

	case "response.output_item.added":
		added := ev.AsResponseOutputItemAdded()
		out.ItemID = added.Item.ID
		out.ItemType = string(added.Item.Type)
		out.ItemName = added.Item.Name

	case "response.function_call_arguments.delta":
		delta := ev.AsResponseFunctionCallArgumentsDelta()
		out.ArgsItemID = delta.ItemID
		out.ArgsDelta = delta.Delta

	case "response.function_call_arguments.done":
		done := ev.AsResponseFunctionCallArgumentsDone()
		out.ArgsItemID = done.ItemID
		out.ArgsDone = done.Arguments
		out.ArgsSet = true

	case "response.completed", "response.incomplete", "response.failed":
		var resp responses.Response
		switch ev.Type {
		case "response.incomplete":
			resp = ev.AsResponseIncomplete().Response
		case "response.failed":
			resp = ev.AsResponseFailed().Response
		default:
			resp = ev.AsResponseCompleted().Response
		}
		out.Usage = &stream.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
		}
		if resp.IncompleteDetails.Reason != "" {
			out.IncompleteReason = string(resp.IncompleteDetails.Reason)
		}
	}

	return out, nil
}
