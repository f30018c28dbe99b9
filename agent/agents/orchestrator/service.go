package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	nodex "github.com/tanpawarit/clinical-scribe/agent/nodes"
)

// SessionRegistry is the part of the session registry the service needs.
type SessionRegistry interface {
	nodex.SessionResolver
	Create(ctx context.Context, visitID int64) (contractx.Session, error)
}

type ProcessRequest struct {
	ThreadID   string
	VisitID    int64
	AudioPath  string
	Transcript string
}

// Service is the exposed surface of the documentation pipeline.
type Service struct {
	sessions     SessionRegistry
	conversation nodex.Conversation
	retrier      nodex.Retrier

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	sessions SessionRegistry,
	conversation nodex.Conversation,
	retrier nodex.Retrier,
) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session registry is required")
	}
	if conversation == nil {
		return nil, errors.New("conversation orchestrator is required")
	}
	if retrier == nil {
		return nil, errors.New("retry controller is required")
	}

	s := &Service{
		sessions:     sessions,
		conversation: conversation,
		retrier:      retrier,
		now:          time.Now,
	}

	graphRunner, err := s.compileProcessTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// CreateSession opens a new documentation thread for a visit.
func (s *Service) CreateSession(ctx context.Context, visitID int64) (string, error) {
	sess, err := s.sessions.Create(ctx, visitID)
	if err != nil {
		return "", err
	}
	return sess.ThreadID, nil
}

// ProcessTurn runs the agents for one visit and returns their turns in order.
// Provider failures degrade the result instead of failing the call.
func (s *Service) ProcessTurn(ctx context.Context, req ProcessRequest) ([]contractx.Turn, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		ThreadID:   req.ThreadID,
		VisitID:    req.VisitID,
		AudioPath:  req.AudioPath,
		Transcript: req.Transcript,
	})
	if err != nil {
		return nil, err
	}
	return out.Turns, nil
}
