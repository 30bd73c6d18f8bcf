package mapper

import (
	"testing"

	"github.com/adrycodes/anthro-bridge/internal/wire"
)

func TestFromChatCompletionResponse_TextOnly(t *testing.T) {
	resp := wire.ChatCompletionResponse{
		ID: "abc123",
		Choices: []wire.ChatChoice{
			{Message: wire.ChatMessage{Content: "hello there"}, FinishReason: "stop"},
		},
		Usage: wire.ChatUsage{PromptTokens: 10, CompletionTokens: 5},
	}

	got := FromChatCompletionResponse(resp, "gpt-4o")

	if got.StopReason != wire.StopReasonEndTurn {
		t.Errorf("stop_reason = %q, want end_turn", got.StopReason)
	}
	if len(got.Content) != 1 || got.Content[0].Text != "hello there" {
		t.Fatalf("content = %+v", got.Content)
	}
	if got.Usage.InputTokens != 10 || got.Usage.OutputTokens != 5 {
		t.Errorf("usage = %+v", got.Usage)
	}
	if got.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o (requested model, not upstream's)", got.Model)
	}
}

func TestFromChatCompletionResponse_ToolCallsSetStopReason(t *testing.T) {
	resp := wire.ChatCompletionResponse{
		ID: "abc123",
		Choices: []wire.ChatChoice{{
			Message: wire.ChatMessage{
				ToolCalls: []wire.ChatToolCall{
					{ID: "call_1", Function: wire.ChatToolCallFunc{Name: "get_weather", Arguments: `{"city":"ny"}`}},
				},
			},
			FinishReason: "tool_calls",
		}},
	}

	got := FromChatCompletionResponse(resp, "gpt-4o")

	if got.StopReason != wire.StopReasonToolUse {
		t.Errorf("stop_reason = %q, want tool_use", got.StopReason)
	}
	if !HasToolUseBlock(got.Content) {
		t.Errorf("expected a tool_use block, got %+v", got.Content)
	}
}

func TestFromChatCompletionResponse_ToolCallsSetStopReasonEvenWithMismatchedFinishReason(t *testing.T) {
	resp := wire.ChatCompletionResponse{
		ID: "abc123",
		Choices: []wire.ChatChoice{{
			Message: wire.ChatMessage{
				ToolCalls: []wire.ChatToolCall{
					{ID: "call_1", Function: wire.ChatToolCallFunc{Name: "get_weather", Arguments: `{"city":"ny"}`}},
				},
			},
			// Some upstreams report "stop" here even with tool_calls present.
			FinishReason: "stop",
		}},
	}

	got := FromChatCompletionResponse(resp, "gpt-4o")

	if got.StopReason != wire.StopReasonToolUse {
		t.Errorf("stop_reason = %q, want tool_use even though finish_reason was %q", got.StopReason, "stop")
	}
}

func TestFromChatCompletionResponse_UnparsableArgumentsFallBackToRaw(t *testing.T) {
	resp := wire.ChatCompletionResponse{
		Choices: []wire.ChatChoice{{
			Message: wire.ChatMessage{
				ToolCalls: []wire.ChatToolCall{
					{ID: "call_1", Function: wire.ChatToolCallFunc{Name: "f", Arguments: "not json"}},
				},
			},
			FinishReason: "tool_calls",
		}},
	}

	got := FromChatCompletionResponse(resp, "gpt-4o")
	if len(got.Content) != 1 {
		t.Fatalf("content = %+v", got.Content)
	}
	if string(got.Content[0].Input) != `{"_raw":"not json"}` {
		t.Errorf("input = %s, want raw-wrapped fallback", got.Content[0].Input)
	}
}

func TestChatFinishReasonToStopReason(t *testing.T) {
	cases := []struct {
		reason       string
		hasToolCalls bool
		want         wire.StopReason
	}{
		{"tool_calls", false, wire.StopReasonToolUse},
		{"length", false, wire.StopReasonMaxTokens},
		{"stop", false, wire.StopReasonEndTurn},
		{"", false, wire.StopReasonEndTurn},
		{"content_filter", false, wire.StopReasonEndTurn},
		// An upstream can report a finish_reason other than "tool_calls"
		// even when tool_calls are present; hasToolCalls must win regardless.
		{"stop", true, wire.StopReasonToolUse},
		{"length", true, wire.StopReasonToolUse},
		{"", true, wire.StopReasonToolUse},
	}
	for _, tc := range cases {
		if got := ChatFinishReasonToStopReason(tc.reason, tc.hasToolCalls); got != tc.want {
			t.Errorf("ChatFinishReasonToStopReason(%q, %v) = %q, want %q", tc.reason, tc.hasToolCalls, got, tc.want)
		}
	}
}
