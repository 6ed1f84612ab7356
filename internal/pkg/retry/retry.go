// Package retry drives bounded exponential backoff against upstream APIs.
// The schedule, classifier, and sleep are all explicit so tests can exercise
// the policy without touching the network or the wall clock.
package retry

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/tastewire/tastewire/internal/gateway/upstream"
)

// SleepFunc pauses between attempts. The default honors ctx cancellation;
// tests inject a recorder.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy is a reusable retry configuration.
type Policy struct {
	// MaxAttempts counts the initial try. Zero or negative means one attempt.
	MaxAttempts int
	// BaseDelay is the first backoff interval; each retryable failure doubles
	// it (base, 2*base, 4*base, ...).
	BaseDelay time.Duration
	Sleep     SleepFunc
	Log       *zap.Logger
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p Policy) logger() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}

// Do runs op until it succeeds, fails with a non-retryable error, or exhausts
// the attempt budget. Classification follows the upstream taxonomy: transient
// (5xx/network) and rate-limited (429) outcomes back off and retry; every
// other error aborts immediately. A backoff sleep is taken after each failed
// retryable attempt, including the last, before the final error is returned.
func Do[T any](ctx context.Context, p Policy, name string, op func(context.Context) (T, error)) (T, error) {
	var zero T

	sched := backoff.NewExponentialBackOff()
	sched.InitialInterval = p.BaseDelay
	sched.RandomizationFactor = 0
	sched.Multiplier = 2
	sched.MaxInterval = p.BaseDelay << 10
	sched.MaxElapsedTime = 0
	sched.Reset()

	log := p.logger()
	var lastErr error

	for attempt := 1; attempt <= p.attempts(); attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var ue *upstream.Error
		if !errors.As(err, &ue) || !ue.Kind.Retryable() {
			log.Warn("upstream call failed, not retrying",
				zap.String("op", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return zero, err
		}

		delay := sched.NextBackOff()
		log.Warn("upstream call failed",
			zap.String("op", name),
			zap.String("kind", ue.Kind.String()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.attempts()),
			zap.Duration("backoff", delay),
			zap.Error(err))

		if err := p.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}
