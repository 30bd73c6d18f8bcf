package mapper

import (
	"strings"

	"github.com/google/uuid"
)

// opaqueToken returns a hex token of at least 16 characters, suitable for
// fabricating an id when upstream omits one (§3 invariant).
func opaqueToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewMessageID fabricates an Anthropic-shaped message id.
func NewMessageID() string {
	return "msg_" + opaqueToken()
}

// NewToolUseID fabricates a tool_use id.
func NewToolUseID() string {
	return "tool_" + opaqueToken()
}

// NewFunctionCallID fabricates a Responses API function_call item id.
func NewFunctionCallID() string {
	return "fc_" + opaqueToken()
}
