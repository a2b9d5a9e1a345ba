package utils

import (
	"fmt"
	"time"
)

// RetryConfig describes how long to keep trying an operation against an
// infrastructure dependency (database startup). Catalog requests never retry.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Logger      *Logger
}

// Do executes fn with exponential back-off, capped at MaxDelay when set.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == r.MaxAttempts {
			break
		}

		r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
			operationName, attempt, r.MaxAttempts, lastErr, delay)
		time.Sleep(delay)
		delay *= 2
		if r.MaxDelay > 0 && delay > r.MaxDelay {
			delay = r.MaxDelay
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
