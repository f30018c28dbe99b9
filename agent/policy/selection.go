// Package policy holds the pure turn-taking rules of the documentation
// pipeline. Both functions look only at the history they are given.
package policy

import (
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

// SelectNext returns the agent that should act after history.
//
//	empty / unknown author -> TranscriptionAgent
//	TranscriptionAgent     -> DocumentationAgent
//	DocumentationAgent     -> VerificationAgent
//	anything else          -> DocumentationAgent
//
// The second return value is false when the chosen role is not among defs.
func SelectNext(defs []contractx.AgentDefinition, history []contractx.Turn) (contractx.AgentDefinition, bool) {
	return find(defs, nextName(defs, history))
}

func nextName(defs []contractx.AgentDefinition, history []contractx.Turn) contractx.AgentName {
	if len(history) == 0 {
		return contractx.AgentTranscription
	}

	last := history[len(history)-1].Author
	if _, ok := find(defs, contractx.AgentName(last)); !ok {
		return contractx.AgentTranscription
	}

	switch contractx.AgentName(last) {
	case contractx.AgentTranscription:
		return contractx.AgentDocumentation
	case contractx.AgentDocumentation:
		return contractx.AgentVerification
	default:
		return contractx.AgentDocumentation
	}
}

func find(defs []contractx.AgentDefinition, name contractx.AgentName) (contractx.AgentDefinition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return contractx.AgentDefinition{}, false
}
