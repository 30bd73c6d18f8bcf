package stream

import (
	"sort"

	"github.com/adrycodes/anthro-bridge/internal/mapper"
)

// Sink receives one Anthropic SSE frame at a time. The Stream Translator
// never touches a socket directly; internal/proxyserver's SSE writer is the
// concrete Sink used in production, while tests supply one that simply
// records events.
type Sink func(eventType string, payload map[string]any) error

func (s *State) ensureStarted(sink Sink) error {
	if s.Started {
		return nil
	}
	s.Started = true
	if s.MessageID == "" {
		s.MessageID = mapper.NewMessageID()
	}
	model := s.Model
	if model == "" {
		model = s.requestedModel
	}
	return sink("message_start", map[string]any{
		"type": "message_start",
		"message": map[string]any{
			"id":            s.MessageID,
			"type":          "message",
			"role":          "assistant",
			"content":       []any{},
			"model":         model,
			"stop_reason":   nil,
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 0, "output_tokens": 0},
		},
	})
}

func (s *State) openTextBlock(sink Sink) (int, error) {
	if s.TextIndex != nil {
		return *s.TextIndex, nil
	}
	idx := s.allocateIndex()
	s.TextIndex = &idx
	s.markStarted(idx)
	err := sink("content_block_start", map[string]any{
		"type":  "content_block_start",
		"index": idx,
		"content_block": map[string]any{
			"type": "text",
			"text": "",
		},
	})
	return idx, err
}

func (s *State) emitTextDelta(sink Sink, idx int, text string) error {
	return sink("content_block_delta", map[string]any{
		"type":  "content_block_delta",
		"index": idx,
		"delta": map[string]any{
			"type": "text_delta",
			"text": text,
		},
	})
}

// startToolBlock allocates a content block for a tool call, fabricating an id
// when upstream sent none, and flushes any buffered argument fragments.
func (s *State) startToolBlock(sink Sink, ts *ToolState) error {
	if ts.Started {
		return nil
	}
	if ts.ID == "" {
		ts.ID = mapper.NewToolUseID()
	}
	idx := s.allocateIndex()
	ts.ContentIndex = idx
	ts.Started = true
	s.markStarted(idx)

	if err := sink("content_block_start", map[string]any{
		"type":  "content_block_start",
		"index": idx,
		"content_block": map[string]any{
			"type":  "tool_use",
			"id":    ts.ID,
			"name":  ts.Name,
			"input": map[string]any{},
		},
	}); err != nil {
		return err
	}

	for _, frag := range ts.PendingArgs {
		if err := s.emitInputJSONDelta(sink, idx, frag); err != nil {
			return err
		}
		ts.accumulated += frag
	}
	ts.PendingArgs = nil
	return nil
}

func (s *State) emitInputJSONDelta(sink Sink, idx int, partialJSON string) error {
	return sink("content_block_delta", map[string]any{
		"type":  "content_block_delta",
		"index": idx,
		"delta": map[string]any{
			"type":         "input_json_delta",
			"partial_json": partialJSON,
		},
	})
}

func (s *State) emitBlockStop(sink Sink, idx int) error {
	return sink("content_block_stop", map[string]any{
		"type":  "content_block_stop",
		"index": idx,
	})
}

// Finalize closes every still-open block, emits message_delta with the
// captured stop_reason/usage, and emits message_stop. Called exactly once at
// the end of a stream by either upstream-flavor driver (§4.3 "Finalization").
func (s *State) Finalize(sink Sink, stopReason string) error {
	if err := s.ensureStarted(sink); err != nil {
		return err
	}

	// Any ToolState that accumulated data but never crossed the started
	// threshold (name/id known) is started now, flushing its fragments, in
	// upstream arrival order.
	ordinals := make([]int, 0, len(s.ToolStates))
	for ord := range s.ToolStates {
		ordinals = append(ordinals, ord)
	}
	sort.Ints(ordinals)
	for _, ord := range ordinals {
		ts := s.ToolStates[ord]
		if !ts.Started && (ts.Name != "" || len(ts.PendingArgs) > 0) {
			if err := s.startToolBlock(sink, ts); err != nil {
				return err
			}
		}
	}

	for _, idx := range s.StartedBlocks {
		if err := s.emitBlockStop(sink, idx); err != nil {
			return err
		}
	}

	usage := map[string]any{}
	if s.Usage != nil {
		usage["input_tokens"] = s.Usage.PromptTokens
		usage["output_tokens"] = s.Usage.CompletionTokens
	}
	deltaPayload := map[string]any{
		"type": "message_delta",
		"delta": map[string]any{
			"stop_reason":   stopReason,
			"stop_sequence": nil,
		},
	}
	if len(usage) > 0 {
		deltaPayload["usage"] = usage
	}
	if err := sink("message_delta", deltaPayload); err != nil {
		return err
	}

	return sink("message_stop", map[string]any{"type": "message_stop"})
}
