package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	retryx "github.com/tanpawarit/clinical-scribe/agent/retry"
)

type Conversation interface {
	Run(ctx context.Context, sess contractx.Session, seed string) ([]contractx.Turn, error)
}

type Retrier interface {
	Execute(ctx context.Context, fn retryx.AttemptFunc) []contractx.Turn
}

// Converse runs the conversation under the retry controller. It never fails
// on provider errors; a degraded run leaves fewer (or no) turns.
func Converse(ctx context.Context, in *GraphState, conv Conversation, retrier Retrier) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	logger := zerolog.Ctx(ctx).With().
		Int64("visit_id", in.Session.VisitID).
		Str("thread_id", in.Session.ThreadID).
		Logger()
	ctx = logger.WithContext(ctx)

	in.Turns = retrier.Execute(ctx, func(ctx context.Context, attempt int) ([]contractx.Turn, error) {
		return conv.Run(ctx, in.Session, in.Seed)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info().Int("turns", len(in.Turns)).Msg("conversation finished")
	return in, nil
}
