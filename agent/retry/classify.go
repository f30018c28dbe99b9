package retry

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/clinical-scribe/agent/contract"
)

type Kind int

const (
	KindTransient Kind = iota
	KindRateLimit
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindCanceled:
		return "canceled"
	default:
		return "transient"
	}
}

// Classification is the controller's view of one failed attempt. SuggestedWait
// is zero when the provider gave no hint.
type Classification struct {
	Kind          Kind
	SuggestedWait time.Duration
}

var (
	rateLimitPatterns = []string{
		"rate limit", "rate-limit", "ratelimit", "too many requests", "quota exceeded",
	}
	statusTooManyPattern = regexp.MustCompile(`(?:status(?: code)?|error code|http)[:=\s]+429\b|\b429\s+too many requests`)
	// Provider messages look like "Rate limit is exceeded. Try again in 10 seconds."
	retryAfterPattern = regexp.MustCompile(`(?i)(?:try again in|retry after)\s+(\d+)\s*(?:seconds?|secs?|s)\b`)
)

// Classify decides how a failed attempt should be retried. A structured
// *contract.RateLimitError wins over message matching.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindTransient}
	}
	if errors.Is(err, context.Canceled) {
		return Classification{Kind: KindCanceled}
	}

	var rl *contractx.RateLimitError
	if errors.As(err, &rl) {
		return Classification{Kind: KindRateLimit, SuggestedWait: rl.RetryAfter}
	}

	msg := strings.ToLower(err.Error())
	if !errors.Is(err, contractx.ErrRateLimited) && !isRateLimitMessage(msg) {
		return Classification{Kind: KindTransient}
	}
	return Classification{Kind: KindRateLimit, SuggestedWait: parseSuggestedWait(msg)}
}

func isRateLimitMessage(msg string) bool {
	for _, p := range rateLimitPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return statusTooManyPattern.MatchString(msg)
}

func parseSuggestedWait(msg string) time.Duration {
	m := retryAfterPattern.FindStringSubmatch(msg)
	if len(m) < 2 {
		return 0
	}
	seconds, err := strconv.Atoi(m[1])
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
