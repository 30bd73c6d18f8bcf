// Package stream implements the Stream Translator: the state machine that
// converts an upstream OpenAI SSE stream (Chat Completions or Responses
// flavor) into a well-formed Anthropic SSE stream, per SPEC_FULL.md §4.3.
package stream

// Usage holds the upstream prompt/completion token counts; Finalize reports
// them as the Anthropic input_tokens/output_tokens.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// ToolState tracks one in-flight tool call as its name/id/arguments arrive
// piecemeal across stream events, per §3's ToolState entity.
type ToolState struct {
	ID           string
	Name         string
	ContentIndex int // valid once Started
	Started      bool
	PendingArgs  []string

	// accumulated is the running concatenation of all argument fragments
	// flushed so far; used by the Responses path's function_call_arguments.done
	// handling to emit only the unflushed tail (§10.7 resolution, mirrored
	// from the identical output_text.done handling).
	accumulated string
}

// State is the per-streaming-response state machine described in §3. It is
// never shared across requests and carries no I/O.
type State struct {
	Started      bool
	MessageID    string
	Model        string
	NextIndex    int
	TextIndex    *int
	StartedBlocks []int
	ToolStates   map[int]*ToolState
	FinishReason string
	Usage        *Usage

	// textAccumulated tracks the cumulative text emitted via
	// response.output_text.delta so the Responses path's
	// response.output_text.done handler can emit only the unflushed tail.
	textAccumulated string

	// itemOrdinals maps a Responses API item id to the synthetic ordinal
	// used as the ToolStates key, so both upstream flavors share one
	// ToolState bookkeeping scheme.
	itemOrdinals map[string]int

	requestedModel string
}

// toolStateForItem returns (allocating if necessary) the ToolState for a
// Responses API item id.
func (s *State) toolStateForItem(itemID string) *ToolState {
	if s.itemOrdinals == nil {
		s.itemOrdinals = make(map[string]int)
	}
	ord, ok := s.itemOrdinals[itemID]
	if !ok {
		ord = len(s.itemOrdinals)
		s.itemOrdinals[itemID] = ord
	}
	ts, ok := s.ToolStates[ord]
	if !ok {
		ts = &ToolState{}
		s.ToolStates[ord] = ts
	}
	return ts
}

// New creates a fresh State. requestedModel seeds the model field reported
// in message_start before an upstream id/model pair is known, so a client
// that never receives an upstream model override still sees a coherent one.
func New(requestedModel string) *State {
	return &State{
		ToolStates:     make(map[int]*ToolState),
		requestedModel: requestedModel,
	}
}

// allocateIndex returns the next monotonic content-block index.
func (s *State) allocateIndex() int {
	idx := s.NextIndex
	s.NextIndex++
	return idx
}

// markStarted records that a content block at idx is open and awaiting a
// content_block_stop.
func (s *State) markStarted(idx int) {
	s.StartedBlocks = append(s.StartedBlocks, idx)
}
