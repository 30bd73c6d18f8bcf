package mapper

import (
	"testing"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

func TestFromResponsesResponse_MessageOutput(t *testing.T) {
	resp := wire.ResponsesResponse{
		ID: "resp_1",
		Output: []wire.ResponseOutput{
			{Type: "message", Role: "assistant", Content: []wire.ResponseOutputPart{{Type: "output_text", Text: "hi"}}},
		},
		Usage: &wire.ResponsesUsage{InputTokens: 3, OutputTokens: 7},
	}

	got := FromResponsesResponse(resp, "gpt-5")

	if len(got.Content) != 1 || got.Content[0].Text != "hi" {
		t.Fatalf("content = %+v", got.Content)
	}
	if got.StopReason != wire.StopReasonEndTurn {
		t.Errorf("stop_reason = %q, want end_turn", got.StopReason)
	}
	if got.Usage.InputTokens != 3 || got.Usage.OutputTokens != 7 {
		t.Errorf("usage = %+v", got.Usage)
	}
}

func TestFromResponsesResponse_FunctionCallSetsToolUse(t *testing.T) {
	resp := wire.ResponsesResponse{
		ID: "resp_1",
		Output: []wire.ResponseOutput{
			{Type: "function_call", CallID: "call_1", Name: "get_weather", Arguments: `{"city":"ny"}`},
		},
	}

	got := FromResponsesResponse(resp, "gpt-5")

	if got.StopReason != wire.StopReasonToolUse {
		t.Errorf("stop_reason = %q, want tool_use", got.StopReason)
	}
	if len(got.Content) != 1 || got.Content[0].Type != wire.ContentBlockToolUse || got.Content[0].ID != "call_1" {
		t.Fatalf("content = %+v", got.Content)
	}
}

func TestFromResponsesResponse_IncompleteMaxTokens(t *testing.T) {
	resp := wire.ResponsesResponse{
		ID:                "resp_1",
		Output:            []wire.ResponseOutput{{Type: "message", Role: "assistant", Content: []wire.ResponseOutputPart{{Type: "output_text", Text: "partial"}}}},
		IncompleteDetails: &wire.IncompleteDetails{Reason: "max_output_tokens"},
	}

	got := FromResponsesResponse(resp, "gpt-5")
	if got.StopReason != wire.StopReasonMaxTokens {
		t.Errorf("stop_reason = %q, want max_tokens", got.StopReason)
	}
}

func TestFromResponsesResponse_EmptyOutputYieldsEmptyTextBlock(t *testing.T) {
	resp := wire.ResponsesResponse{ID: "resp_1"}
	got := FromResponsesResponse(resp, "gpt-5")
	if len(got.Content) != 1 || got.Content[0].Type != wire.ContentBlockText || got.Content[0].Text != "" {
		t.Fatalf("content = %+v, want single empty text block", got.Content)
	}
}
