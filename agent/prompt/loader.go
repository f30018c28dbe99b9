package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

var (
	//go:embed template/transcription.txt
	transcriptionRaw string

	//go:embed template/documentation.txt
	documentationRaw string

	//go:embed template/verification.txt
	verificationRaw string
)

// PromptSet holds the static instructions of each agent role.
type PromptSet struct {
	Transcription string
	Documentation string
	Verification  string
}

func LoadPromptSet() PromptSet {
	return PromptSet{
		Transcription: strings.TrimSpace(transcriptionRaw),
		Documentation: strings.TrimSpace(documentationRaw),
		Verification:  strings.TrimSpace(verificationRaw),
	}
}

func (p PromptSet) For(agent contractx.AgentName) (string, error) {
	var out string
	switch agent {
	case contractx.AgentTranscription:
		out = p.Transcription
	case contractx.AgentDocumentation:
		out = p.Documentation
	case contractx.AgentVerification:
		out = p.Verification
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, agent)
	}
	return out, nil
}
