package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

type SessionResolver interface {
	Resolve(ctx context.Context, visitID int64, threadID string) (contractx.Session, error)
}

func ResolveSession(ctx context.Context, in *GraphState, sessions SessionResolver) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := sessions.Resolve(ctx, in.VisitID, in.ThreadID)
	if err != nil {
		return nil, err
	}
	in.Session = sess
	return in, nil
}
