// Package retry wraps rate-limited remote calls (the language model, mainly)
// with a bounded, linearly growing backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tripsearch/internal/adapters/observability"
)

var ErrRateLimited = errors.New("rate limited")

const (
	DefaultMaxAttempts = 3
	stepFactor         = 5
)

var rateLimitMarkers = []string{"rate limit", "tpm", "rate_limit", "ratelimit", "rate_limit_exceeded"}

// IsRateLimit reports whether err's text carries a rate-limit indicator.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	for _, m := range rateLimitMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Invoker retries a call only while it fails with a rate-limit error.
// Before attempt n+1 it waits 5*n units.
type Invoker struct {
	MaxAttempts int
	Unit        time.Duration
	// Sleep waits for d; false means ctx ended first. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) bool
}

func New(maxAttempts int) *Invoker {
	return &Invoker{MaxAttempts: maxAttempts, Unit: time.Second}
}

func (r *Invoker) Do(ctx context.Context, call func(context.Context) error) error {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	unit := r.Unit
	if unit <= 0 {
		unit = time.Second
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		last = call(ctx)
		if last == nil {
			return nil
		}
		if !IsRateLimit(last) {
			return last
		}
		if attempt == attempts {
			break
		}
		wait := time.Duration(stepFactor*attempt) * unit
		log.Warn().
			Err(last).
			Dur("wait", wait).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("rate limit detected, backing off")
		observability.ObserveBackoff()
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, attempts, last)
}

// Call is Do for calls that produce a value.
func Call[T any](ctx context.Context, r *Invoker, call func(context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := call(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
