package mapper

import (
	"encoding/json"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// ToChatCompletionRequest translates an Anthropic request into the OpenAI
// Chat Completions request shape, per §4.1 "Request: Anthropic → Chat Completions".
func ToChatCompletionRequest(req wire.Request) wire.ChatCompletionRequest {
	out := wire.ChatCompletionRequest{
		Model:    req.Model,
		Stream:   req.Stream,
		Stop:     req.StopSequences,
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		out.MaxTokens = &mt
	}
	out.Temperature = req.Temperature
	out.TopP = req.TopP

	if req.System != nil {
		if systemText := flattenSystem(req.System); systemText != "" {
			out.Messages = append(out.Messages, wire.ChatMessage{Role: "system", Content: systemText})
		}
	}

	for _, msg := range req.Messages {
		out.Messages = append(out.Messages, chatMessagesForTurn(msg)...)
	}

	out.Tools = chatToolsFrom(req.Tools)
	if req.ToolChoice != nil {
		out.ToolChoice = chatToolChoiceFrom(*req.ToolChoice)
	}

	return out
}

// chatMessagesForTurn expands one Anthropic Message into zero or more Chat
// Completions messages: a base message carrying role/text/tool_calls,
// followed by one {role:"tool",...} message per tool_result block.
func chatMessagesForTurn(msg wire.Message) []wire.ChatMessage {
	blocks := contentBlocks(msg.Content)

	base := wire.ChatMessage{
		Role:    string(msg.Role),
		Content: textOf(blocks),
	}

	var toolMessages []wire.ChatMessage
	for _, b := range blocks {
		switch b.Type {
		case wire.ContentBlockToolUse:
			base.ToolCalls = append(base.ToolCalls, wire.ChatToolCall{
				ID:   b.ID,
				Type: "function",
				Function: wire.ChatToolCallFunc{
					Name:      b.Name,
					Arguments: argumentsToString(b.Input),
				},
			})
		case wire.ContentBlockToolResult:
			content := flattenToolResultContent(b.Content)
			if b.IsError {
				content = "[tool_error] " + content
			}
			toolMessages = append(toolMessages, wire.ChatMessage{
				Role:       "tool",
				Content:    content,
				ToolCallID: b.ToolUseID,
			})
		}
	}

	out := make([]wire.ChatMessage, 0, 1+len(toolMessages))
	if base.Content != "" || len(base.ToolCalls) > 0 {
		out = append(out, base)
	}
	out = append(out, toolMessages...)
	return out
}

// textOf concatenates the text blocks of a content-block slice.
func textOf(blocks []wire.ContentBlock) string {
	text := ""
	for _, b := range blocks {
		if b.Type == wire.ContentBlockText {
			text += b.Text
		}
	}
	return text
}

// argumentsToString renders a tool_use input to the JSON-encoded-string form
// Chat Completions expects for function.arguments. If the input is already a
// JSON string literal, it is passed through unchanged rather than re-encoded.
func argumentsToString(input json.RawMessage) string {
	if len(input) == 0 {
		return "{}"
	}
	var asString string
	if err := json.Unmarshal(input, &asString); err == nil {
		return asString
	}
	return string(input)
}

func chatToolsFrom(tools []wire.Tool) []wire.ChatTool {
	var out []wire.ChatTool
	for _, t := range tools {
		if t.Name == "" {
			continue
		}
		out = append(out, wire.ChatTool{
			Type: "function",
			Function: wire.ChatFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
				Strict:      t.Strict,
			},
		})
	}
	return out
}

func chatToolChoiceFrom(tc wire.ToolChoice) json.RawMessage {
	if tc.IsNamed {
		raw, _ := json.Marshal(map[string]any{
			"type":     "function",
			"function": map[string]string{"name": tc.Name},
		})
		return raw
	}
	switch tc.Mode {
	case wire.ToolChoiceAuto, wire.ToolChoiceNone:
		raw, _ := json.Marshal(string(tc.Mode))
		return raw
	default:
		raw, _ := json.Marshal("auto")
		return raw
	}
}
