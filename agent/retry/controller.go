// Package retry wraps one orchestration attempt and replays it from scratch
// on provider failures.
package retry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	goretry "github.com/sethvargo/go-retry"
	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

const (
	DefaultMaxAttempts   = 3
	DefaultRateLimitWait = 3 * time.Second
	DefaultRateLimitPad  = 5 * time.Second
	DefaultBackoffUnit   = time.Second
)

type Config struct {
	MaxAttempts   int           `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"3"`
	RateLimitWait time.Duration `envconfig:"RATE_LIMIT_WAIT" split_words:"true" default:"3s"`
	RateLimitPad  time.Duration `envconfig:"RATE_LIMIT_PAD" split_words:"true" default:"5s"`
	BackoffUnit   time.Duration `envconfig:"BACKOFF_UNIT" split_words:"true" default:"1s"`
}

// AttemptFunc runs one full select/act/append/terminate loop. attempt is
// 1-based. On failure it returns whatever turns it produced before the error.
type AttemptFunc func(ctx context.Context, attempt int) ([]contractx.Turn, error)

type Controller struct {
	cfg Config

	// sleep returns how long the backoff pauses for a computed delay.
	sleep func(time.Duration) time.Duration
}

func New(cfg Config) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RateLimitWait <= 0 {
		cfg.RateLimitWait = DefaultRateLimitWait
	}
	if cfg.RateLimitPad <= 0 {
		cfg.RateLimitPad = DefaultRateLimitPad
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = DefaultBackoffUnit
	}
	return &Controller{
		cfg:   cfg,
		sleep: func(d time.Duration) time.Duration { return d },
	}
}

// Delay is the pause before the next attempt after failures attempts have
// failed with err.
func (c *Controller) Delay(failures int, err error) time.Duration {
	cls := Classify(err)
	if cls.Kind == KindRateLimit {
		wait := cls.SuggestedWait
		if wait <= 0 {
			wait = c.cfg.RateLimitWait
		}
		return wait + c.cfg.RateLimitPad
	}
	if failures < 0 {
		failures = 0
	}
	return c.cfg.BackoffUnit * time.Duration(uint64(1)<<uint(failures))
}

// Execute never returns an error: after the last failed attempt it hands back
// the partial turns of that attempt, possibly empty.
func (c *Controller) Execute(ctx context.Context, fn AttemptFunc) []contractx.Turn {
	logger := zerolog.Ctx(ctx)

	var (
		turns   []contractx.Turn
		lastErr error
		attempt int
	)

	backoff := goretry.WithMaxRetries(uint64(c.cfg.MaxAttempts-1), goretry.BackoffFunc(func() (time.Duration, bool) {
		delay := c.Delay(attempt, lastErr)
		logger.Warn().
			Int("attempt", attempt).
			Str("kind", Classify(lastErr).Kind.String()).
			Dur("delay", delay).
			Msg("retrying conversation")
		return c.sleep(delay), false
	}))

	err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		logger.Debug().Int("attempt", attempt).Msg("starting conversation attempt")

		out, err := fn(ctx, attempt)
		turns = out
		if err == nil {
			return nil
		}
		lastErr = err

		logger.Error().Err(err).Int("attempt", attempt).Int("turns", len(out)).Msg("conversation attempt failed")
		if ctx.Err() != nil || Classify(err).Kind == KindCanceled {
			return err
		}
		return goretry.RetryableError(err)
	})
	if err != nil {
		logger.Error().Err(err).Int("attempts", attempt).Int("turns", len(turns)).Msg("giving up on conversation")
	}
	return turns
}
