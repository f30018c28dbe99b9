// Package session maps visits to their conversation threads.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	statex "github.com/tanpawarit/clinical-scribe/agent/state"
)

// UUIDThreads issues time-ordered thread ids.
type UUIDThreads struct{}

func (UUIDThreads) CreateThread(ctx context.Context) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate thread id: %w", err)
	}
	return id.String(), nil
}

type Option func(*Registry)

// WithStore writes sessions through to a persistent store and falls back to
// it on local misses.
func WithStore(store statex.Store) Option {
	return func(r *Registry) {
		r.store = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// Registry is safe for concurrent use. Two concurrent Create calls for the
// same visit both succeed; the later write wins.
type Registry struct {
	threads  contractx.ThreadProvider
	sessions *xsync.MapOf[int64, contractx.Session]
	store    statex.Store
	now      func() time.Time
}

func NewRegistry(threads contractx.ThreadProvider, opts ...Option) (*Registry, error) {
	if threads == nil {
		return nil, errors.New("thread provider is required")
	}
	r := &Registry{
		threads:  threads,
		sessions: xsync.NewMapOf[int64, contractx.Session](),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Create opens a new thread for visitID and makes it the visit's current
// session, replacing any earlier one.
func (r *Registry) Create(ctx context.Context, visitID int64) (contractx.Session, error) {
	if visitID <= 0 {
		return contractx.Session{}, fmt.Errorf("%w: visit_id must be positive", contractx.ErrValidation)
	}

	threadID, err := r.threads.CreateThread(ctx)
	if err != nil {
		return contractx.Session{}, fmt.Errorf("create thread for visit_id=%d: %w", visitID, err)
	}

	sess := contractx.Session{
		VisitID:   visitID,
		ThreadID:  threadID,
		CreatedAt: r.now().UTC(),
	}
	r.sessions.Store(visitID, sess)
	r.persist(ctx, sess)

	zerolog.Ctx(ctx).Info().
		Int64("visit_id", visitID).
		Str("thread_id", threadID).
		Msg("session created")
	return sess, nil
}

// Resolve returns the session a request should run in. A caller-supplied
// threadID is adopted as is; otherwise the visit's known session is reused,
// and a new one is created when there is none.
func (r *Registry) Resolve(ctx context.Context, visitID int64, threadID string) (contractx.Session, error) {
	if visitID <= 0 {
		return contractx.Session{}, fmt.Errorf("%w: visit_id must be positive", contractx.ErrValidation)
	}

	threadID = strings.TrimSpace(threadID)
	if threadID != "" {
		if sess, ok := r.sessions.Load(visitID); ok && sess.ThreadID == threadID {
			return sess, nil
		}
		sess := contractx.Session{
			VisitID:   visitID,
			ThreadID:  threadID,
			CreatedAt: r.now().UTC(),
		}
		r.sessions.Store(visitID, sess)
		r.persist(ctx, sess)
		return sess, nil
	}

	if sess, ok := r.Lookup(ctx, visitID); ok {
		return sess, nil
	}
	return r.Create(ctx, visitID)
}

// Lookup finds the visit's session in memory, then in the store.
func (r *Registry) Lookup(ctx context.Context, visitID int64) (contractx.Session, bool) {
	if sess, ok := r.sessions.Load(visitID); ok {
		return sess, true
	}
	if r.store == nil {
		return contractx.Session{}, false
	}

	st, err := r.store.Load(ctx, visitID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Int64("visit_id", visitID).Msg("session store lookup failed")
		}
		return contractx.Session{}, false
	}

	sess := st.Session()
	actual, _ := r.sessions.LoadOrStore(visitID, sess)
	return actual, true
}

// Len reports the number of sessions held in memory.
func (r *Registry) Len() int {
	return r.sessions.Size()
}

func (r *Registry) persist(ctx context.Context, sess contractx.Session) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, statex.FromSession(sess)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("visit_id", sess.VisitID).Msg("session write-through failed")
	}
}
