package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

func TestOpenRouterForOverrides(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:                   " key ",
		Model:                    "openai/gpt-4o-mini",
		Temperature:              0.2,
		MaxCompletionToken:       1500,
		DocumentationModel:       "openai/gpt-4o",
		DocumentationTemperature: 0.1,
		TranscriptionTemperature: -1,
		VerificationTemperature:  -1,
	}

	doc := cfg.OpenRouterFor(contractx.AgentDocumentation)
	if doc.Model != "openai/gpt-4o" || doc.Temperature != 0.1 {
		t.Fatalf("unexpected documentation config: %+v", doc)
	}
	if doc.APIKey != "key" {
		t.Fatalf("api key must be trimmed, got %q", doc.APIKey)
	}
	if doc.MaxCompletionToken == nil || *doc.MaxCompletionToken != 1500 {
		t.Fatalf("unexpected max tokens: %v", doc.MaxCompletionToken)
	}

	ver := cfg.OpenRouterFor(contractx.AgentVerification)
	if ver.Model != "openai/gpt-4o-mini" || ver.Temperature != 0.2 {
		t.Fatalf("verification must use defaults: %+v", ver)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "m"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing key, got %v", err)
	}
	if err := (Config{APIKey: "k"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing model, got %v", err)
	}
	if err := (Config{APIKey: "k", Model: "m"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := (Config{}).ToolRounds(); got != defaultMaxToolRounds {
		t.Fatalf("ToolRounds() = %d", got)
	}
}
