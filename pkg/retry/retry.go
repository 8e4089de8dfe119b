package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Policy describes a bounded retry schedule with exponential backoff.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Delay returns the backoff before the given retry. The first attempt is
// attempt 1 and carries no delay; each retry doubles the previous wait.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := p.BaseDelay
	for i := 2; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// Do runs fn up to p.Attempts times, sleeping the policy delay between
// attempts. It returns the last error when all attempts fail, and stops
// early when the context is cancelled.
func Do(ctx context.Context, p Policy, logger *zap.Logger, label string, fn func(context.Context) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if p.Attempts <= 0 {
		p.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if delay := p.Delay(attempt); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}

		logger.Warn("attempt failed",
			zap.String("operation", label),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.Attempts),
			zap.Error(lastErr),
		)
	}

	return lastErr
}
