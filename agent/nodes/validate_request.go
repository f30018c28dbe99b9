package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

type GraphInput struct {
	ThreadID   string
	VisitID    int64
	AudioPath  string
	Transcript string
}

type GraphOutput struct {
	Session contractx.Session
	Turns   []contractx.Turn
}

type GraphState struct {
	ThreadID   string
	VisitID    int64
	AudioPath  string
	Transcript string
	Now        time.Time

	Session contractx.Session
	Seed    string
	Turns   []contractx.Turn
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if in.VisitID <= 0 {
		return nil, fmt.Errorf("%w: visit_id must be positive", contractx.ErrValidation)
	}

	audioPath := strings.TrimSpace(in.AudioPath)
	transcript := strings.TrimSpace(in.Transcript)
	if audioPath == "" && transcript == "" {
		return nil, fmt.Errorf("%w: either an audio file or a transcript is required", contractx.ErrValidation)
	}

	return &GraphState{
		ThreadID:   strings.TrimSpace(in.ThreadID),
		VisitID:    in.VisitID,
		AudioPath:  audioPath,
		Transcript: transcript,
		Now:        nowFn().UTC(),
	}, nil
}
