// Package retry implements the exponential-backoff retry policy from
// spec §4.9.
package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/davincible/llm-router-go/internal/llmerrors"
)

// Policy is an immutable, shared configuration value. Call Strategy() to
// get a fresh per-request attempt counter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Jitter:      true,
	}
}

func (p Policy) Strategy() *Strategy {
	return &Strategy{policy: p}
}

// Strategy tracks attempt count for a single in-flight request.
type Strategy struct {
	policy  Policy
	attempt int
}

// NextDelay returns the delay before the next attempt, or false if the
// error should not be retried (attempts exhausted, or the error itself is
// not retryable).
func (s *Strategy) NextDelay(err error) (time.Duration, bool) {
	if s.attempt >= s.policy.MaxAttempts {
		return 0, false
	}

	e, ok := llmerrors.As(err)
	if !ok || !e.Retryable() {
		return 0, false
	}

	backoff := s.backoffFor(s.attempt)
	s.attempt++

	delay := backoff
	if e.HasRetryAfter {
		floor := time.Duration(e.RetryAfterS) * time.Second
		if floor > delay {
			delay = floor
		}
	}

	if delay > s.policy.MaxDelay {
		delay = s.policy.MaxDelay
	}

	return delay, true
}

func (s *Strategy) backoffFor(attempt int) time.Duration {
	mult := math.Pow(2, float64(attempt))
	d := time.Duration(float64(s.policy.BaseDelay) * mult)

	if s.policy.Jitter {
		jitter := time.Duration(rand.Int63n(int64(s.policy.BaseDelay) + 1))
		d += jitter
	}

	return d
}
