package mapper

import (
	"encoding/json"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// ToResponsesRequest translates an Anthropic request into the OpenAI
// Responses API request shape, per §4.1 "Request: Anthropic → Responses".
func ToResponsesRequest(req wire.Request) wire.ResponsesRequest {
	out := wire.ResponsesRequest{
		Model:       req.Model,
		Stream:      req.Stream,
		Store:       false,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		out.MaxOutputTokens = &mt
	}
	if req.System != nil {
		out.Instructions = flattenSystem(req.System)
	}

	for _, msg := range req.Messages {
		out.Input = append(out.Input, responseItemsForTurn(msg)...)
	}

	out.Tools = responseToolsFrom(req.Tools)
	if req.ToolChoice != nil {
		out.ToolChoice = responsesToolChoiceFrom(*req.ToolChoice)
	}

	return out
}

// responseItemsForTurn expands one Anthropic Message into the Responses
// API's input items: a leading {role, content} item if text is present,
// then one function_call item per tool_use, then one function_call_output
// item per tool_result.
func responseItemsForTurn(msg wire.Message) []wire.ResponseItem {
	blocks := contentBlocks(msg.Content)

	var items []wire.ResponseItem
	if text := textOf(blocks); text != "" {
		items = append(items, wire.ResponseItem{
			Role:    string(msg.Role),
			Content: text,
		})
	}

	for _, b := range blocks {
		switch b.Type {
		case wire.ContentBlockToolUse:
			items = append(items, wire.ResponseItem{
				Type:      "function_call",
				ID:        "fc_" + b.ID,
				CallID:    b.ID,
				Name:      b.Name,
				Arguments: argumentsToString(b.Input),
			})
		case wire.ContentBlockToolResult:
			items = append(items, wire.ResponseItem{
				Type:   "function_call_output",
				CallID: b.ToolUseID,
				Output: flattenToolResultOutput(b),
			})
		}
	}

	return items
}

func flattenToolResultOutput(b wire.ContentBlock) string {
	content := flattenToolResultContent(b.Content)
	if b.IsError {
		content = "[tool_error] " + content
	}
	return content
}

func responseToolsFrom(tools []wire.Tool) []wire.ResponseTool {
	var out []wire.ResponseTool
	for _, t := range tools {
		if t.Name == "" {
			continue
		}
		out = append(out, wire.ResponseTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
			Strict:      t.Strict,
		})
	}
	return out
}

func responsesToolChoiceFrom(tc wire.ToolChoice) json.RawMessage {
	if tc.IsNamed {
		raw, _ := json.Marshal(map[string]string{"type": "function", "name": tc.Name})
		return raw
	}
	switch tc.Mode {
	case wire.ToolChoiceAuto, wire.ToolChoiceNone, wire.ToolChoiceRequired:
		raw, _ := json.Marshal(string(tc.Mode))
		return raw
	default:
		raw, _ := json.Marshal("auto")
		return raw
	}
}
