package chat

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/sherlock/pkg/conversation"
)

// ErrModelUnavailable is returned once every retry attempt has failed.
// It is the only transport error the run loop ever sees.
var ErrModelUnavailable = errors.New("model unavailable after retries")

// RetryConfig controls the exponential backoff between completion
// attempts.
type RetryConfig struct {
	MaxRetries int
	BaseSleep  time.Duration
	MaxSleep   time.Duration
}

// DefaultRetryConfig mirrors the backoff used for flaky LLM endpoints:
// up to three attempts, one second base, one minute ceiling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseSleep:  1 * time.Second,
		MaxSleep:   60 * time.Second,
	}
}

// Retry wraps a Client with bounded retries and jittered exponential
// backoff. Any transport error and any empty response are retryable;
// the wrapper has no state shared across concurrent runs.
type Retry struct {
	inner Client
	cfg   RetryConfig
}

func NewRetry(inner Client, cfg RetryConfig) *Retry {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	return &Retry{inner: inner, cfg: cfg}
}

// Complete attempts the completion up to MaxRetries times, sleeping
// min(base*2^attempt + jitter, max) between failures. On exhaustion it
// returns ErrModelUnavailable wrapping the last failure.
func (r *Retry) Complete(ctx context.Context, conv conversation.Conversation) (string, error) {
	var lastErr error

	for attempt := 0; attempt < r.cfg.MaxRetries; attempt++ {
		text, err := r.inner.Complete(ctx, conv)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = ErrEmptyResponse
		}
		lastErr = err

		log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_retries", r.cfg.MaxRetries).
			Msg("chat: completion attempt failed")

		if attempt < r.cfg.MaxRetries-1 {
			if sleepErr := sleepContext(ctx, r.backoff(attempt)); sleepErr != nil {
				return "", errors.Wrap(ErrModelUnavailable, sleepErr.Error())
			}
		}
	}

	return "", errors.Wrap(ErrModelUnavailable, lastErr.Error())
}

// backoff computes base*2^attempt plus up to one base of jitter, capped
// at MaxSleep.
func (r *Retry) backoff(attempt int) time.Duration {
	d := r.cfg.BaseSleep << uint(attempt)
	if d <= 0 || d > r.cfg.MaxSleep {
		d = r.cfg.MaxSleep
	}
	jitter := time.Duration(rand.Int63n(int64(r.cfg.BaseSleep) + 1))
	if d+jitter > r.cfg.MaxSleep {
		return r.cfg.MaxSleep
	}
	return d + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
