package mapper

import "testing"

func TestShouldUseResponses(t *testing.T) {
	cases := []struct {
		name     string
		model    string
		override bool
		want     bool
	}{
		{"gpt-5 uses responses", "gpt-5", false, true},
		{"gpt-5-mini uses responses", "gpt-5-mini", false, true},
		{"o-series uses responses", "o3-mini", false, true},
		{"codex uses responses", "gpt-4-codex", false, true},
		{"gpt-4o stays on chat", "gpt-4o", false, false},
		{"override forces responses regardless of model", "gpt-4o", true, true},
		{"case and whitespace insensitive", "  GPT-5-Turbo  ", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldUseResponses(tc.model, tc.override)
			if got != tc.want {
				t.Errorf("ShouldUseResponses(%q, %v) = %v, want %v", tc.model, tc.override, got, tc.want)
			}
		})
	}
}

func TestIsForceResponsesTruthy(t *testing.T) {
	truthy := []string{"1", "true", "TRUE", "yes", "on", " yes "}
	for _, tok := range truthy {
		if !IsForceResponsesTruthy(tok) {
			t.Errorf("IsForceResponsesTruthy(%q) = false, want true", tok)
		}
	}
	falsy := []string{"", "0", "false", "no", "off", "maybe"}
	for _, tok := range falsy {
		if IsForceResponsesTruthy(tok) {
			t.Errorf("IsForceResponsesTruthy(%q) = true, want false", tok)
		}
	}
}
