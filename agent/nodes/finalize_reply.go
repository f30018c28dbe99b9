package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	turns := in.Turns
	if turns == nil {
		turns = []contractx.Turn{}
	}
	return GraphOutput{Session: in.Session, Turns: turns}, nil
}
