package stream

import "testing"

type recordedEvent struct {
	eventType string
	payload   map[string]any
}

func recordingSink(events *[]recordedEvent) Sink {
	return func(eventType string, payload map[string]any) error {
		*events = append(*events, recordedEvent{eventType, payload})
		return nil
	}
}

func eventTypes(events []recordedEvent) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.eventType
	}
	return types
}

func TestApplyChatChunk_TextOnly(t *testing.T) {
	var events []recordedEvent
	sink := recordingSink(&events)
	s := New("gpt-4o")

	if err := ApplyChatChunk(s, sink, ChatChunk{ID: "chatcmpl-1", Model: "gpt-4o-2024", Delta: ChatDelta{Content: "hel"}}); err != nil {
		t.Fatalf("first chunk: %v", err)
	}
	if err := ApplyChatChunk(s, sink, ChatChunk{Delta: ChatDelta{Content: "lo"}}); err != nil {
		t.Fatalf("second chunk: %v", err)
	}
	if err := ApplyChatChunk(s, sink, ChatChunk{FinishReason: "stop"}); err != nil {
		t.Fatalf("finish chunk: %v", err)
	}

	want := []string{"message_start", "content_block_start", "content_block_delta", "content_block_delta"}
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	msgStart := events[0].payload["message"].(map[string]any)
	if msgStart["id"] != "chatcmpl-1" || msgStart["model"] != "gpt-4o-2024" {
		t.Errorf("message_start = %+v", msgStart)
	}
	if s.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, want stop", s.FinishReason)
	}
}

func TestApplyChatChunk_ToolCallArrivesInPieces(t *testing.T) {
	var events []recordedEvent
	sink := recordingSink(&events)
	s := New("gpt-4o")

	// Fragment with no name yet: buffered.
	if err := ApplyChatChunk(s, sink, ChatChunk{Delta: ChatDelta{ToolCalls: []ChatToolCallDelta{
		{Index: 0, ID: "call_1", Arguments: `{"city":`},
	}}}); err != nil {
		t.Fatalf("fragment 1: %v", err)
	}
	if len(events) != 1 || events[0].eventType != "message_start" {
		t.Fatalf("expected only message_start so far, got %v", eventTypes(events))
	}

	// Name arrives: block starts and flushes buffered + this fragment.
	if err := ApplyChatChunk(s, sink, ChatChunk{Delta: ChatDelta{ToolCalls: []ChatToolCallDelta{
		{Index: 0, Name: "get_weather", Arguments: `"ny"}`},
	}}}); err != nil {
		t.Fatalf("fragment 2: %v", err)
	}

	want := []string{"message_start", "content_block_start", "content_block_delta", "content_block_delta"}
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	blockStart := events[1].payload["content_block"].(map[string]any)
	if blockStart["type"] != "tool_use" || blockStart["name"] != "get_weather" || blockStart["id"] != "call_1" {
		t.Errorf("content_block_start = %+v", blockStart)
	}
	firstDelta := events[2].payload["delta"].(map[string]any)
	if firstDelta["partial_json"] != `{"city":` {
		t.Errorf("first flushed fragment = %+v, want buffered arg first", firstDelta)
	}
	secondDelta := events[3].payload["delta"].(map[string]any)
	if secondDelta["partial_json"] != `"ny"}` {
		t.Errorf("second flushed fragment = %+v, want just-arrived arg second", secondDelta)
	}

	// Further fragments after started go straight through.
	if err := ApplyChatChunk(s, sink, ChatChunk{Delta: ChatDelta{ToolCalls: []ChatToolCallDelta{
		{Index: 0, Arguments: `more`},
	}}}); err != nil {
		t.Fatalf("fragment 3: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("events = %v, want one more delta appended", eventTypes(events))
	}
}

func TestApplyChatChunk_UsageCaptured(t *testing.T) {
	var events []recordedEvent
	sink := recordingSink(&events)
	s := New("gpt-4o")

	usage := &Usage{PromptTokens: 12, CompletionTokens: 4}
	if err := ApplyChatChunk(s, sink, ChatChunk{Usage: usage}); err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if s.Usage != usage {
		t.Errorf("Usage = %+v, want the chunk's usage pointer captured", s.Usage)
	}
}

func TestFinalize_ClosesOpenBlocksAndEmitsTerminalEvents(t *testing.T) {
	var events []recordedEvent
	sink := recordingSink(&events)
	s := New("gpt-4o")

	if err := ApplyChatChunk(s, sink, ChatChunk{Delta: ChatDelta{Content: "hi"}}); err != nil {
		t.Fatalf("chunk: %v", err)
	}
	events = nil // reset to inspect only Finalize's output

	if err := s.Finalize(sink, "end_turn"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	want := []string{"content_block_stop", "message_delta", "message_stop"}
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	delta := events[1].payload["delta"].(map[string]any)
	if delta["stop_reason"] != "end_turn" {
		t.Errorf("message_delta.delta = %+v", delta)
	}
}

func TestFinalize_StartsToolBlockThatNeverCrossedThreshold(t *testing.T) {
	var events []recordedEvent
	sink := recordingSink(&events)
	s := New("gpt-4o")

	// Arguments arrive but name never does before the stream ends.
	if err := ApplyChatChunk(s, sink, ChatChunk{Delta: ChatDelta{ToolCalls: []ChatToolCallDelta{
		{Index: 0, ID: "call_1", Arguments: `{}`},
	}}}); err != nil {
		t.Fatalf("chunk: %v", err)
	}

	if err := s.Finalize(sink, "tool_use"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	var sawStart, sawDelta, sawStop bool
	for _, e := range events {
		switch e.eventType {
		case "content_block_start":
			sawStart = true
		case "content_block_delta":
			sawDelta = true
		case "content_block_stop":
			sawStop = true
		}
	}
	if !sawStart || !sawDelta || !sawStop {
		t.Errorf("expected a never-started tool block to be started, flushed, and closed by Finalize; events = %v", eventTypes(events))
	}
}

func TestFinalize_EmptyResponseStillEmitsMessageStartAndStop(t *testing.T) {
	var events []recordedEvent
	sink := recordingSink(&events)
	s := New("gpt-4o")

	if err := s.Finalize(sink, "end_turn"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	want := []string{"message_start", "message_delta", "message_stop"}
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}
