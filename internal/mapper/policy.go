// Package mapper implements the pure, deterministic translation between the
// Anthropic-shaped wire format this proxy exposes and the two OpenAI-shaped
// upstream wire formats (Chat Completions and Responses). No function here
// performs I/O; every translation is a plain value-to-value conversion so it
// can be exercised directly from table-driven tests.
package mapper

import "strings"

// ShouldUseResponses decides which upstream path a given model name should
// try first. overrideTruthy captures the process-wide force-responses flag
// already resolved to a boolean by the caller (see internal/config for the
// truthy-token parsing of MODEL_ROUTER_FORCE_RESPONSES).
func ShouldUseResponses(model string, overrideTruthy bool) bool {
	if overrideTruthy {
		return true
	}
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "gpt-5"):
		return true
	case strings.HasPrefix(m, "o"):
		return true
	case strings.Contains(m, "codex"):
		return true
	default:
		return false
	}
}

// IsForceResponsesTruthy parses the MODEL_ROUTER_FORCE_RESPONSES override
// token per §4.1's truthy-token rule.
func IsForceResponsesTruthy(token string) bool {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
