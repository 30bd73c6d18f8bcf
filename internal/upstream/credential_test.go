package upstream

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveCredential_Precedence(t *testing.T) {
	cases := []struct {
		name       string
		xAPIKey    string
		authHeader string
		envKey     string
		fallback   string
		want       string
	}{
		{"x-api-key wins over everything, including Authorization", "from-header", "Bearer from-auth", "from-env", "from-fallback", "from-header"},
		{"Authorization Bearer used when no x-api-key", "", "Bearer from-auth", "from-env", "from-fallback", "from-auth"},
		{"env used when neither header present", "", "", "from-env", "from-fallback", "from-env"},
		{"fallback used when nothing else present", "", "", "", "from-fallback", "from-fallback"},
		{"malformed Authorization (no Bearer prefix) falls through to env", "", "Basic abc123", "from-env", "from-fallback", "from-env"},
		{"empty Bearer token falls through to env", "", "Bearer ", "from-env", "from-fallback", "from-env"},
		{"nothing at all resolves to empty", "", "", "", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/messages", nil)
			if tc.xAPIKey != "" {
				req.Header.Set("x-api-key", tc.xAPIKey)
			}
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			got := ResolveCredential(req, tc.envKey, tc.fallback)
			if got != tc.want {
				t.Errorf("ResolveCredential() = %q, want %q", got, tc.want)
			}
		})
	}
}
