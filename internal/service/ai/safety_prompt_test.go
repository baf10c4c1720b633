package ai

import (
	"strings"
	"testing"
)

func TestComposeSystemPromptIdentityWithoutRisk(t *testing.T) {
	bases := []string{"", "너는 상담 챗봇이다.", "multi\nline\nprompt"}
	for _, base := range bases {
		if got := ComposeSystemPrompt(base, false); got != base {
			t.Errorf("ComposeSystemPrompt(%q, false) = %q, want unchanged", base, got)
		}
	}
}

func TestComposeSystemPromptAppendsDirective(t *testing.T) {
	base := "너는 상담 챗봇이다."
	got := ComposeSystemPrompt(base, true)

	if !strings.HasPrefix(got, base) {
		t.Fatalf("composed prompt does not start with base: %q", got)
	}
	if !strings.Contains(got, "[안전모드]") {
		t.Fatalf("composed prompt missing safety marker: %q", got)
	}
	if got == base {
		t.Fatal("composed prompt unchanged despite risk")
	}
}
