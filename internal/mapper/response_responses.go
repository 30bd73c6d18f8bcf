package mapper

import (
	"github.com/adrycodes/anthro-bridge/internal/wire"
)

// FromResponsesResponse translates a non-streaming Responses API reply into
// an Anthropic response, per §4.1 "Response: Responses → Anthropic".
func FromResponsesResponse(resp wire.ResponsesResponse, requestedModel string) wire.Response {
	var content []wire.ContentBlock

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			if item.Role != "assistant" {
				continue
			}
			for _, part := range item.Content {
				if part.Type == "output_text" {
					content = append(content, wire.ContentBlock{Type: wire.ContentBlockText, Text: part.Text})
				}
			}
		case "function_call":
			id := item.CallID
			if id == "" {
				id = item.ID
			}
			content = append(content, wire.ContentBlock{
				Type:  wire.ContentBlockToolUse,
				ID:    id,
				Name:  item.Name,
				Input: parseToolArguments(item.Arguments),
			})
		}
	}

	if len(content) == 0 {
		content = append(content, wire.ContentBlock{Type: wire.ContentBlockText, Text: ""})
	}

	stopReason := wire.StopReasonEndTurn
	if HasToolUseBlock(content) {
		stopReason = wire.StopReasonToolUse
	}
	if resp.IncompleteDetails != nil {
		switch resp.IncompleteDetails.Reason {
		case "max_tokens", "max_output_tokens":
			stopReason = wire.StopReasonMaxTokens
		}
	}

	var usage wire.Usage
	if resp.Usage != nil {
		usage = wire.Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}
	}

	return wire.NewResponse("msg_"+resp.ID, requestedModel, content, stopReason, usage)
}
