package wire

import "encoding/json"

// ChatCompletionRequest is the upstream request body for OpenAI's Chat
// Completions API. Hand-rolled against OpenAI's published JSON shape rather
// than an SDK param type: the proxy builds and serializes this body itself,
// the same way it owns the Anthropic-facing Request/Response shapes.
type ChatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []ChatMessage           `json:"messages"`
	MaxTokens   *int                    `json:"max_tokens,omitempty"`
	Temperature *float64                `json:"temperature,omitempty"`
	TopP        *float64                `json:"top_p,omitempty"`
	Stop        []string                `json:"stop,omitempty"`
	Tools       []ChatTool              `json:"tools,omitempty"`
	ToolChoice  json.RawMessage         `json:"tool_choice,omitempty"`
	Stream      bool                    `json:"stream,omitempty"`
}

// ChatMessage is one OpenAI Chat Completions message.
type ChatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []ChatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// ChatToolCall is a function call requested by the assistant.
type ChatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ChatToolCallFunc `json:"function"`
}

// ChatToolCallFunc is the function payload of a ChatToolCall.
type ChatToolCallFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatTool describes a callable function in the Chat Completions shape.
type ChatTool struct {
	Type     string       `json:"type"`
	Function ChatFunction `json:"function"`
}

// ChatFunction is the function definition nested inside a ChatTool.
type ChatFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      *bool           `json:"strict,omitempty"`
}

// ChatCompletionResponse is a non-streaming Chat Completions reply.
type ChatCompletionResponse struct {
	ID      string             `json:"id"`
	Choices []ChatChoice       `json:"choices"`
	Usage   ChatUsage          `json:"usage"`
}

// ChatChoice is one entry of ChatCompletionResponse.Choices.
type ChatChoice struct {
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage is OpenAI's token accounting shape.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// ResponsesRequest is the upstream request body for OpenAI's Responses API.
type ResponsesRequest struct {
	Model           string          `json:"model"`
	Input           []ResponseItem  `json:"input"`
	Instructions    string          `json:"instructions,omitempty"`
	MaxOutputTokens *int            `json:"max_output_tokens,omitempty"`
	Temperature     *float64        `json:"temperature,omitempty"`
	TopP            *float64        `json:"top_p,omitempty"`
	Tools           []ResponseTool  `json:"tools,omitempty"`
	ToolChoice      json.RawMessage `json:"tool_choice,omitempty"`
	Store           bool            `json:"store"`
	Stream          bool            `json:"stream,omitempty"`
}

// ResponseItem is one entry of ResponsesRequest.Input: a tagged union over
// message / function_call / function_call_output items.
type ResponseItem struct {
	Type string `json:"type,omitempty"`

	// message (Type == "")
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	// function_call
	ID       string `json:"id,omitempty"`
	CallID   string `json:"call_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// function_call_output
	Output string `json:"output,omitempty"`
}

// ResponseTool describes a callable function in the Responses API shape.
type ResponseTool struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      *bool           `json:"strict,omitempty"`
}

// ResponsesResponse is a non-streaming Responses API reply.
type ResponsesResponse struct {
	ID                string             `json:"id"`
	Output            []ResponseOutput   `json:"output"`
	Usage             *ResponsesUsage    `json:"usage,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
}

// ResponseOutput is one entry of ResponsesResponse.Output.
type ResponseOutput struct {
	Type    string               `json:"type"`
	Role    string               `json:"role,omitempty"`
	Content []ResponseOutputPart `json:"content,omitempty"`

	// function_call
	ID        string `json:"id,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ResponseOutputPart is a part of a "message" output item's content array.
type ResponseOutputPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ResponsesUsage is the Responses API's token accounting shape.
type ResponsesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// IncompleteDetails explains why a Responses reply was cut short.
type IncompleteDetails struct {
	Reason string `json:"reason"`
}

// UpstreamErrorBody is the shape OpenAI-compatible upstreams use for non-2xx
// JSON error bodies; both a nested "error" object and a bare "message" are
// observed in the wild, so both are captured.
type UpstreamErrorBody struct {
	Error   *UpstreamErrorDetail `json:"error,omitempty"`
	Message string               `json:"message,omitempty"`
}

// UpstreamErrorDetail is the nested form of UpstreamErrorBody.Error.
type UpstreamErrorDetail struct {
	Message string `json:"message"`
}

// CombinedMessage returns whichever of the two message fields is set,
// preferring the nested error object per §4.4 of the dispatch contract.
func (b UpstreamErrorBody) CombinedMessage() string {
	if b.Error != nil && b.Error.Message != "" {
		return b.Error.Message
	}
	return b.Message
}
