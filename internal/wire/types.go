// Package wire defines the Go types for the Anthropic-shaped Messages API this
// proxy exposes on its front door. These are hand-rolled rather than imported
// from an SDK: the proxy emits this wire format, it does not consume it from
// an upstream, so there is no client library whose types would fit here.
package wire

import "encoding/json"

// Role is the speaker of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// StopReason is the terminal reason a response stopped producing content.
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
)

// Request is an inbound Anthropic Messages API request.
type Request struct {
	Model         string          `json:"model"`
	MaxTokens     int             `json:"max_tokens"`
	Temperature   *float64        `json:"temperature,omitempty"`
	TopP          *float64        `json:"top_p,omitempty"`
	StopSequences []string        `json:"stop_sequences,omitempty"`
	System        *SystemField    `json:"system,omitempty"`
	Messages      []Message       `json:"messages"`
	Tools         []Tool          `json:"tools,omitempty"`
	ToolChoice    *ToolChoice     `json:"tool_choice,omitempty"`
	Stream        bool            `json:"stream,omitempty"`
}

// SystemField is either a plain string or a sequence of content blocks;
// Anthropic allows both shapes for the top-level "system" field.
type SystemField struct {
	Text   string
	Blocks []ContentBlock
}

func (s *SystemField) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		s.Text = asString
		return nil
	}
	var asBlocks []ContentBlock
	if err := json.Unmarshal(data, &asBlocks); err != nil {
		return err
	}
	s.Blocks = asBlocks
	return nil
}

func (s SystemField) MarshalJSON() ([]byte, error) {
	if s.Blocks != nil {
		return json.Marshal(s.Blocks)
	}
	return json.Marshal(s.Text)
}

// Message is one turn of conversation; content is either a bare string or a
// sequence of tagged content blocks.
type Message struct {
	Role    Role            `json:"role"`
	Content MessageContent  `json:"content"`
}

// MessageContent mirrors SystemField's string-or-blocks duality for message bodies.
type MessageContent struct {
	Text   string
	Blocks []ContentBlock
	IsText bool
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		c.Text = asString
		c.IsText = true
		return nil
	}
	var asBlocks []ContentBlock
	if err := json.Unmarshal(data, &asBlocks); err != nil {
		return err
	}
	c.Blocks = asBlocks
	return nil
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.IsText {
		return json.Marshal(c.Text)
	}
	return json.Marshal(c.Blocks)
}

// ContentBlockType tags the variant of a ContentBlock.
type ContentBlockType string

const (
	ContentBlockText       ContentBlockType = "text"
	ContentBlockImage      ContentBlockType = "image"
	ContentBlockToolUse    ContentBlockType = "tool_use"
	ContentBlockToolResult ContentBlockType = "tool_result"
)

// ContentBlock is a tagged union over Anthropic's content block variants.
// Only Type and the variant fields declared below are decoded; any other
// field of a block is dropped.
type ContentBlock struct {
	Type ContentBlockType `json:"type"`

	// text
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string           `json:"tool_use_id,omitempty"`
	Content   *ToolResultBody  `json:"content,omitempty"`
	IsError   bool             `json:"is_error,omitempty"`
}

// ToolResultBody is tool_result's content field, which Anthropic allows as
// either a plain string or a sequence of nested content blocks.
type ToolResultBody struct {
	Text   string
	Blocks []ContentBlock
	IsText bool
}

func (b *ToolResultBody) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		b.Text = asString
		b.IsText = true
		return nil
	}
	var asBlocks []ContentBlock
	if err := json.Unmarshal(data, &asBlocks); err != nil {
		return err
	}
	b.Blocks = asBlocks
	return nil
}

func (b ToolResultBody) MarshalJSON() ([]byte, error) {
	if b.IsText {
		return json.Marshal(b.Text)
	}
	return json.Marshal(b.Blocks)
}

// Tool describes a function the model may invoke.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
	Strict      *bool           `json:"strict,omitempty"`
}

// ToolChoiceMode is the bare-string form of ToolChoice.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
)

// ToolChoice is either a bare mode string or {"type":"tool","name":...}.
type ToolChoice struct {
	Mode ToolChoiceMode
	Name string
	IsNamed bool
}

func (t *ToolChoice) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		t.Mode = ToolChoiceMode(asString)
		return nil
	}
	var asObject struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return err
	}
	t.IsNamed = asObject.Type == "tool"
	t.Name = asObject.Name
	return nil
}

func (t ToolChoice) MarshalJSON() ([]byte, error) {
	if t.IsNamed {
		return json.Marshal(struct {
			Type string `json:"type"`
			Name string `json:"name"`
		}{Type: "tool", Name: t.Name})
	}
	return json.Marshal(string(t.Mode))
}

// Usage reports Anthropic-shaped token counts.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is a non-streaming Anthropic Messages API response.
type Response struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         Role           `json:"role"`
	Model        string         `json:"model"`
	Content      []ContentBlock `json:"content"`
	StopReason   StopReason     `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}

// NewResponse builds a Response with the fixed type/role fields every
// Anthropic Messages API reply carries.
func NewResponse(id, model string, content []ContentBlock, stopReason StopReason, usage Usage) Response {
	return Response{
		ID:           id,
		Type:         "message",
		Role:         RoleAssistant,
		Model:        model,
		Content:      content,
		StopReason:   stopReason,
		StopSequence: nil,
		Usage:        usage,
	}
}

// ErrorBody is the {"error":{...}} envelope used by every error response this
// proxy returns on its Anthropic-facing surface.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the taxonomy tag from SPEC_FULL.md §7/§10.3.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HealthResponse is the GET /health payload used by the capability handshake.
type HealthResponse struct {
	Status       string       `json:"status"`
	Proxy        string       `json:"proxy"`
	Version      string       `json:"version"`
	Capabilities Capabilities `json:"capabilities"`
}

// Capabilities is the handshake bag the Supervisor inspects to decide whether
// a running proxy is usable. Compatibility is negotiated only through this
// bag, never through version-string comparison.
type Capabilities struct {
	SupportsResponses    bool `json:"supports_responses"`
	RetryOnNotChatModel  bool `json:"retry_on_not_chat_model"`
}
