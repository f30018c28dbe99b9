package record

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	goretry "github.com/sethvargo/go-retry"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
	"github.com/uptrace/bun"
)

const (
	opSaveTranscript = "save_transcript"
	opSaveSoapNote   = "save_soap_note"
)

type Config struct {
	Timeout    time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
	MaxTries   int           `envconfig:"MAX_TRIES" split_words:"true" default:"3"`
	RetryDelay time.Duration `envconfig:"RETRY_DELAY" split_words:"true" default:"1s"`
}

// Store persists transcripts and SOAP notes. Writes are keyed by content so
// a conversation replayed after a failure does not create duplicate rows.
type Store struct {
	db  bun.IDB
	cfg Config
	now func() time.Time
}

var _ contractx.RecordStore = (*Store)(nil)

func NewStore(db bun.IDB, cfg Config) (*Store, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	return &Store{db: db, cfg: cfg, now: time.Now}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, m := range []any{(*Transcript)(nil), (*SoapNote)(nil)} {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}

func (s *Store) SaveTranscript(ctx context.Context, visitID int64, text string) (int64, error) {
	row := &Transcript{
		VisitID:        visitID,
		Text:           text,
		IdempotencyKey: IdempotencyKey(opSaveTranscript, visitID, text),
		CreatedAt:      s.now().UTC(),
	}
	return s.insert(ctx, row, &row.ID, row.IdempotencyKey)
}

func (s *Store) SaveSoapNote(ctx context.Context, visitID int64, note contractx.SoapNote) (int64, error) {
	row := &SoapNote{
		VisitID:       visitID,
		Subjective:    note.Subjective,
		Objective:     note.Objective,
		Assessment:    note.Assessment,
		TreatmentPlan: note.TreatmentPlan,
		IdempotencyKey: IdempotencyKey(opSaveSoapNote, visitID,
			note.Subjective, note.Objective, note.Assessment, note.TreatmentPlan),
		CreatedAt: s.now().UTC(),
	}
	return s.insert(ctx, row, &row.ID, row.IdempotencyKey)
}

func (s *Store) insert(ctx context.Context, model any, id *int64, key string) (int64, error) {
	err := s.withTimeoutRetry(ctx, func(ctx context.Context) error {
		_, err := s.db.NewInsert().
			Model(model).
			On("CONFLICT (idempotency_key) DO NOTHING").
			Returning("id").
			Exec(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: insert %T: %w", contractx.ErrPersistence, model, err)
	}
	if *id != 0 {
		return *id, nil
	}

	// Conflict: the same write already landed in an earlier attempt.
	err = s.withTimeoutRetry(ctx, func(ctx context.Context) error {
		return s.db.NewSelect().
			Model(model).
			Column("id").
			Where("idempotency_key = ?", key).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: lookup existing %T: %w", contractx.ErrPersistence, model, err)
	}
	zerolog.Ctx(ctx).Info().Int64("id", *id).Msgf("reused existing %T", model)
	return *id, nil
}

// withTimeoutRetry bounds every call with the configured timeout and retries
// only when that timeout fired.
func (s *Store) withTimeoutRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := goretry.WithMaxRetries(uint64(s.cfg.MaxTries-1), goretry.NewConstant(s.cfg.RetryDelay))
	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		err := fn(callCtx)
		if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return goretry.RetryableError(err)
		}
		return err
	})
}

// IdempotencyKey derives a stable key from the operation, the visit and the
// written payload.
func IdempotencyKey(operation string, visitID int64, payload ...string) string {
	h := sha256.New()
	h.Write([]byte(operation))
	h.Write([]byte{0x1f})
	h.Write([]byte(strconv.FormatInt(visitID, 10)))
	for _, p := range payload {
		h.Write([]byte{0x1f})
		h.Write([]byte(strings.TrimSpace(p)))
	}
	return hex.EncodeToString(h.Sum(nil))
}
