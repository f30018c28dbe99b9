package policy

import (
	"strings"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

const completionMarker = "complete"

// ShouldTerminate reports whether the verifier has signed off. Both
// "Documentation complete." and "<issues>... complete." count.
func ShouldTerminate(history []contractx.Turn) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	if contractx.AgentName(last.Author) != contractx.AgentVerification {
		return false
	}
	return strings.Contains(strings.ToLower(last.Content), completionMarker)
}
