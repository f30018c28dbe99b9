package state

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

var (
	ErrStateNotFound  = errors.New("session state not found")
	ErrInvalidSession = errors.New("session is invalid")
)

// SessionState is the stored form of a visit's conversation thread.
type SessionState struct {
	VisitID   int64     `json:"visit_id"`
	ThreadID  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromSession(s contractx.Session) SessionState {
	return SessionState{
		VisitID:   s.VisitID,
		ThreadID:  s.ThreadID,
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func (s SessionState) Session() contractx.Session {
	return contractx.Session{
		VisitID:   s.VisitID,
		ThreadID:  s.ThreadID,
		CreatedAt: s.CreatedAt,
	}
}

func (s SessionState) Validate() error {
	if s.VisitID <= 0 {
		return fmt.Errorf("%w: visit_id must be positive", ErrInvalidSession)
	}
	if strings.TrimSpace(s.ThreadID) == "" {
		return fmt.Errorf("%w: thread_id is empty", ErrInvalidSession)
	}
	return nil
}

func visitKey(visitID int64) string {
	return strconv.FormatInt(visitID, 10)
}
