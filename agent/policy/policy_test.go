package policy

import (
	"testing"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

func testDefinitions() []contractx.AgentDefinition {
	return []contractx.AgentDefinition{
		{Name: contractx.AgentTranscription},
		{Name: contractx.AgentDocumentation},
		{Name: contractx.AgentVerification},
	}
}

func turn(author, content string) contractx.Turn {
	return contractx.Turn{Author: author, Content: content}
}

func TestSelectNextUnknownAuthorStartsTranscription(t *testing.T) {
	t.Parallel()

	cases := map[string][]contractx.Turn{
		"empty":   nil,
		"system":  {turn(contractx.AuthorSystem, "Process documentation for visit ID 42.")},
		"user":    {turn("user", "hello")},
		"tool":    {turn(string(contractx.AgentVerification), "x"), turn("transcribe_file", "text")},
		"blank":   {turn("", "")},
		"unknown": {turn("BillingAgent", "invoice")},
	}

	for name, history := range cases {
		got, ok := SelectNext(testDefinitions(), history)
		if !ok {
			t.Fatalf("%s: expected a selection", name)
		}
		if got.Name != contractx.AgentTranscription {
			t.Fatalf("%s: SelectNext() = %s, want %s", name, got.Name, contractx.AgentTranscription)
		}
	}
}

func TestSelectNextCycle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		last contractx.AgentName
		want contractx.AgentName
	}{
		{contractx.AgentTranscription, contractx.AgentDocumentation},
		{contractx.AgentDocumentation, contractx.AgentVerification},
		{contractx.AgentVerification, contractx.AgentDocumentation},
	}

	for _, tc := range cases {
		history := []contractx.Turn{
			turn(contractx.AuthorSystem, "seed"),
			turn(string(tc.last), "whatever the content says"),
		}
		got, ok := SelectNext(testDefinitions(), history)
		if !ok {
			t.Fatalf("after %s: expected a selection", tc.last)
		}
		if got.Name != tc.want {
			t.Fatalf("after %s: SelectNext() = %s, want %s", tc.last, got.Name, tc.want)
		}
	}
}

func TestSelectNextIgnoresContent(t *testing.T) {
	t.Parallel()

	history := []contractx.Turn{turn(string(contractx.AgentVerification), "Documentation complete.")}
	got, _ := SelectNext(testDefinitions(), history)
	if got.Name != contractx.AgentDocumentation {
		t.Fatalf("SelectNext() = %s, want %s", got.Name, contractx.AgentDocumentation)
	}
}

func TestSelectNextMissingDefinitionReturnsNone(t *testing.T) {
	t.Parallel()

	defs := []contractx.AgentDefinition{{Name: contractx.AgentDocumentation}}
	if _, ok := SelectNext(defs, nil); ok {
		t.Fatal("expected no selection when TranscriptionAgent is not registered")
	}
	if _, ok := SelectNext(nil, nil); ok {
		t.Fatal("expected no selection with no definitions")
	}
}

func TestShouldTerminate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		history []contractx.Turn
		want    bool
	}{
		{"empty", nil, false},
		{"clean", []contractx.Turn{turn(string(contractx.AgentVerification), "Documentation complete.")}, true},
		{"fixed", []contractx.Turn{turn(string(contractx.AgentVerification), "Plan lacked dosage; added. complete.")}, true},
		{"upper", []contractx.Turn{turn(string(contractx.AgentVerification), "COMPLETE")}, true},
		{"no marker", []contractx.Turn{turn(string(contractx.AgentVerification), "Missing vitals.")}, false},
		{"documentation author", []contractx.Turn{turn(string(contractx.AgentDocumentation), "Documentation complete.")}, false},
		{"transcription author", []contractx.Turn{turn(string(contractx.AgentTranscription), "Documentation complete.")}, false},
		{"system author", []contractx.Turn{turn(contractx.AuthorSystem, "complete")}, false},
		{
			"earlier verifier only",
			[]contractx.Turn{
				turn(string(contractx.AgentVerification), "Documentation complete."),
				turn(string(contractx.AgentDocumentation), "revised"),
			},
			false,
		},
	}

	for _, tc := range cases {
		if got := ShouldTerminate(tc.history); got != tc.want {
			t.Fatalf("%s: ShouldTerminate() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCycleTerminatesAfterThreeTurns(t *testing.T) {
	t.Parallel()

	replies := map[contractx.AgentName]string{
		contractx.AgentTranscription: "Transcript received.",
		contractx.AgentDocumentation: "**Subjective:** cough",
		contractx.AgentVerification:  "Documentation complete.",
	}

	history := []contractx.Turn{turn(contractx.AuthorSystem, "seed")}
	agentTurns := 0
	for i := 0; i < 10 && !ShouldTerminate(history); i++ {
		next, ok := SelectNext(testDefinitions(), history)
		if !ok {
			t.Fatal("expected a selection")
		}
		history = append(history, turn(string(next.Name), replies[next.Name]))
		agentTurns++
	}

	if !ShouldTerminate(history) {
		t.Fatal("expected the cycle to terminate")
	}
	if agentTurns != 3 {
		t.Fatalf("expected 3 agent turns, got %d", agentTurns)
	}
	want := []contractx.AgentName{contractx.AgentTranscription, contractx.AgentDocumentation, contractx.AgentVerification}
	for i, name := range want {
		if history[i+1].Author != string(name) {
			t.Fatalf("turn %d author = %s, want %s", i+1, history[i+1].Author, name)
		}
	}
}
