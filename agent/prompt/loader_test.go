package prompt

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	for _, name := range []contractx.AgentName{
		contractx.AgentTranscription,
		contractx.AgentDocumentation,
		contractx.AgentVerification,
	} {
		p, err := set.For(name)
		if err != nil {
			t.Fatalf("For(%s) error = %v", name, err)
		}
		if p != strings.TrimSpace(p) {
			t.Fatalf("prompt for %s must be trimmed", name)
		}
	}

	if !strings.Contains(set.Verification, "Documentation complete.") {
		t.Fatal("verification prompt must carry the completion phrase")
	}
	if !strings.Contains(set.Documentation, "save_soap_note") {
		t.Fatal("documentation prompt must name save_soap_note")
	}
}

func TestForMissingPrompt(t *testing.T) {
	t.Parallel()

	_, err := PromptSet{}.For(contractx.AgentVerification)
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}
