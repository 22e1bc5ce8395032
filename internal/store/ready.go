package store

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultWaitAttempts bounds how many liveness probes run before the
	// wait is declared failed.
	DefaultWaitAttempts = 30
	// DefaultWaitInterval is the fixed delay between liveness probes.
	DefaultWaitInterval = 2 * time.Second
)

// WaitReady blocks until probe succeeds, the attempt budget runs out, or ctx
// ends. Each probe call must release its own resources; nothing is held
// between attempts.
func WaitReady(ctx context.Context, probe func(context.Context) error, attempts int, interval time.Duration, logf func(string, ...any)) error {
	if probe == nil {
		return fmt.Errorf("probe function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if attempts <= 0 {
		attempts = DefaultWaitAttempts
	}
	if interval <= 0 {
		interval = DefaultWaitInterval
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("wait for database: %w", err)
		}

		lastErr = probe(ctx)
		if lastErr == nil {
			return nil
		}
		logf("database not ready (attempt %d/%d): %v", attempt, attempts, lastErr)

		if attempt == attempts {
			break
		}
		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("wait for database: %w", ctx.Err())
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", attempts, lastErr)
}
