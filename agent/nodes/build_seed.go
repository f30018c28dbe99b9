package orchestratornode

import (
	"fmt"
	"strconv"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

func BuildSeed(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Seed = SeedMessage(in.VisitID, in.AudioPath, in.Transcript)
	return in, nil
}

// SeedMessage is the opening instruction of a conversation. An audio file
// takes precedence over a transcript.
func SeedMessage(visitID int64, audioPath string, transcript string) string {
	msg := "Process documentation for visit ID " + strconv.FormatInt(visitID, 10) + "."
	switch {
	case audioPath != "":
		msg += " Record and transcribe the audio file: " + audioPath
	case transcript != "":
		msg += " Use the provided transcript: " + transcript
	}
	return msg
}
