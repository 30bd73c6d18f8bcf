package stream

import "strings"

// ResponsesEvent is the subset of a Responses API streaming event this
// translator needs. internal/upstream decodes the upstream SSE payload (via
// openai-go's typed responses.ResponseStreamEventUnion discriminated union)
// and adapts it into this neutral shape.
type ResponsesEvent struct {
	Type string

	// output_text.delta / output_text.done
	TextDelta string
	TextDone  string
	TextSet   bool // true if this event carries a "text" field (done events)

	// output_item.added
	ItemID   string
	ItemType string
	ItemName string

	// function_call_arguments.delta / .done
	ArgsItemID string
	ArgsDelta  string
	ArgsDone   string
	ArgsSet    bool

	// completed/incomplete/failed
	Usage            *Usage
	IncompleteReason string
}

// ApplyResponsesEvent advances State by one Responses-API-flavored event,
// per §4.3 "Responses path". terminal reports whether this event ends the
// response (response.completed|incomplete|failed), in which case stopReason
// is the caller's cue to invoke Finalize.
func ApplyResponsesEvent(s *State, sink Sink, ev ResponsesEvent) (terminal bool, stopReason string, err error) {
	switch ev.Type {
	case "response.output_text.delta", "response.output_text.done",
		"response.function_call_arguments.delta", "response.function_call_arguments.done":
		// message_start precedes any content block, even when upstream
		// sent no response.created first.
		if err = s.ensureStarted(sink); err != nil {
			return false, "", err
		}
	}

	switch ev.Type {
	case "response.created", "response.in_progress", "response.queued":
		if err = s.ensureStarted(sink); err != nil {
			return false, "", err
		}

	case "response.output_text.delta":
		idx, e := s.openTextBlock(sink)
		if e != nil {
			return false, "", e
		}
		if e := s.emitTextDelta(sink, idx, ev.TextDelta); e != nil {
			return false, "", e
		}
		s.textAccumulated += ev.TextDelta

	case "response.output_text.done":
		// §10.7(1): done.text is the cumulative final text, not a fresh
		// delta; emit only the suffix beyond what was already accumulated.
		if ev.TextSet {
			if tail, ok := strings.CutPrefix(ev.TextDone, s.textAccumulated); ok && tail != "" {
				idx, e := s.openTextBlock(sink)
				if e != nil {
					return false, "", e
				}
				if e := s.emitTextDelta(sink, idx, tail); e != nil {
					return false, "", e
				}
				s.textAccumulated += tail
			}
		}

	case "response.output_item.added":
		if ev.ItemType == "function_call" || ev.ItemType == "custom_tool_call" || ev.ItemType == "mcp_call" {
			ts := s.toolStateForItem(ev.ItemID)
			ts.ID = ev.ItemID
			ts.Name = ev.ItemName
		}

	case "response.function_call_arguments.delta":
		ts := s.toolStateForItem(ev.ArgsItemID)
		if ts.Started {
			if e := s.emitInputJSONDelta(sink, ts.ContentIndex, ev.ArgsDelta); e != nil {
				return false, "", e
			}
			ts.accumulated += ev.ArgsDelta
		} else {
			ts.PendingArgs = append(ts.PendingArgs, ev.ArgsDelta)
			if ts.Name != "" {
				if e := s.startToolBlock(sink, ts); e != nil {
					return false, "", e
				}
			}
		}

	case "response.function_call_arguments.done":
		ts := s.toolStateForItem(ev.ArgsItemID)
		if !ts.Started && ts.Name != "" {
			if e := s.startToolBlock(sink, ts); e != nil {
				return false, "", e
			}
		}
		if ev.ArgsSet && ts.Started {
			// Emit only the tail beyond what's already been flushed, to
			// avoid double-sending (§4.3 responses-path spec).
			if tail, ok := strings.CutPrefix(ev.ArgsDone, ts.accumulated); ok && tail != "" {
				if e := s.emitInputJSONDelta(sink, ts.ContentIndex, tail); e != nil {
					return false, "", e
				}
				ts.accumulated += tail
			}
		}

	case "response.completed", "response.incomplete", "response.failed":
		if ev.Usage != nil {
			s.Usage = ev.Usage
		}
		reason := "end_turn"
		if HasAnyTool(s) {
			reason = "tool_use"
		}
		if ev.IncompleteReason == "max_tokens" || ev.IncompleteReason == "max_output_tokens" {
			reason = "max_tokens"
		}
		return true, reason, nil
	}

	return false, "", nil
}

// HasAnyTool reports whether the state has accumulated any tool call data
// (name, id, or argument fragments), regardless of whether the block has
// been started yet. Used to decide stop_reason == "tool_use" for both
// upstream flavors, mirroring mapper.HasToolUseBlock for already-translated
// content.
func HasAnyTool(s *State) bool {
	for _, ts := range s.ToolStates {
		if ts.Started || ts.Name != "" || len(ts.PendingArgs) > 0 {
			return true
		}
	}
	return false
}
