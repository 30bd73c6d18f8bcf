// Package upstream is the Upstream Client: URL construction, credential
// resolution, and HTTP dispatch against an OpenAI-flavored backend, per
// SPEC_FULL.md §4.2.
package upstream

import "strings"

// Endpoint identifies which upstream path a request targets.
type Endpoint string

const (
	EndpointChatCompletions Endpoint = "v1/chat/completions"
	EndpointResponses       Endpoint = "v1/responses"
)

// BuildURL joins a base URL and an endpoint so the result contains exactly
// one "/v1/" segment between host and endpoint tail, regardless of whether
// base already carries a trailing "/v1".
func BuildURL(base string, endpoint Endpoint) string {
	base = strings.TrimRight(base, "/")
	e := string(endpoint)

	if strings.HasSuffix(base, "/v1") {
		e = strings.TrimPrefix(e, "v1/")
		return base + "/" + e
	}

	if !strings.HasPrefix(e, "v1/") {
		e = "v1/" + e
	}
	return base + "/" + e
}
