package upstream

import (
	"net/http"
	"strings"
)

// ResolveCredential implements the precedence order from §4.2: inbound
// x-api-key header, then inbound Authorization: Bearer, then the
// process-wide OPENAI_API_KEY env value, then a process-wide fallback
// credential (e.g. one provisioned via the credential store). Returns ""
// if none apply.
func ResolveCredential(r *http.Request, envAPIKey, fallback string) string {
	if key := r.Header.Get("x-api-key"); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); auth != "" {
		if bearer, ok := strings.CutPrefix(auth, "Bearer "); ok && bearer != "" {
			return bearer
		}
	}
	if envAPIKey != "" {
		return envAPIKey
	}
	return fallback
}
