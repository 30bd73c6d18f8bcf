package stream

// ChatChunk is the subset of an OpenAI Chat Completions streaming chunk this
// translator needs. internal/upstream decodes the upstream SSE payload (via
// openai-go's typed openai.ChatCompletionChunk) and adapts it into this
// neutral shape, keeping the state machine free of any SDK dependency.
type ChatChunk struct {
	ID           string
	Model        string
	Delta        ChatDelta
	FinishReason string
	Usage        *Usage
}

// ChatDelta is one choice's delta payload.
type ChatDelta struct {
	Content   string
	ToolCalls []ChatToolCallDelta
}

// ChatToolCallDelta is one fragment of an in-progress tool call, keyed by the
// upstream's own ordinal (the "index" field on the wire).
type ChatToolCallDelta struct {
	Index     int
	ID        string
	Name      string
	Arguments string
}

// ApplyChatChunk advances State by one Chat-Completions-flavored chunk, per
// §4.3 "Chat-Completions path".
func ApplyChatChunk(s *State, sink Sink, chunk ChatChunk) error {
	if !s.Started {
		if chunk.ID != "" {
			s.MessageID = chunk.ID
		}
		if chunk.Model != "" {
			s.Model = chunk.Model
		}
		if err := s.ensureStarted(sink); err != nil {
			return err
		}
	}

	if chunk.Delta.Content != "" {
		idx, err := s.openTextBlock(sink)
		if err != nil {
			return err
		}
		if err := s.emitTextDelta(sink, idx, chunk.Delta.Content); err != nil {
			return err
		}
	}

	for _, tc := range chunk.Delta.ToolCalls {
		if err := s.applyChatToolCallDelta(sink, tc); err != nil {
			return err
		}
	}

	if chunk.FinishReason != "" {
		s.FinishReason = chunk.FinishReason
	}
	if chunk.Usage != nil {
		s.Usage = chunk.Usage
	}

	return nil
}

func (s *State) applyChatToolCallDelta(sink Sink, tc ChatToolCallDelta) error {
	ts, ok := s.ToolStates[tc.Index]
	if !ok {
		ts = &ToolState{}
		s.ToolStates[tc.Index] = ts
	}

	if tc.ID != "" {
		ts.ID = tc.ID
	}
	if tc.Name != "" {
		ts.Name = tc.Name
	}

	wasStarted := ts.Started
	if !ts.Started && ts.Name != "" {
		// Name just became known: start the block, which flushes any
		// fragments already buffered in PendingArgs including this one's
		// Arguments if non-empty (appended below before the start call).
		if tc.Arguments != "" {
			ts.PendingArgs = append(ts.PendingArgs, tc.Arguments)
		}
		if err := s.startToolBlock(sink, ts); err != nil {
			return err
		}
		return nil
	}

	if tc.Arguments == "" {
		return nil
	}

	if ts.Started {
		if err := s.emitInputJSONDelta(sink, ts.ContentIndex, tc.Arguments); err != nil {
			return err
		}
		ts.accumulated += tc.Arguments
		return nil
	}

	// Not yet started (name still unknown): buffer for later flush.
	if !wasStarted {
		ts.PendingArgs = append(ts.PendingArgs, tc.Arguments)
	}
	return nil
}
