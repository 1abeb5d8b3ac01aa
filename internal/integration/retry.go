// Package integration contains pomo's adapters to external
// collaborators: the external query engine, the rendered-preview
// scraper, and the vault file watcher.
package integration

import (
	"context"
	"time"

	"github.com/focusvault/pomo/pkg/models"
)

// RetryOutcome is the typed result of a bounded retry loop.
type RetryOutcome string

const (
	// RetrySuccess means an attempt returned at least one record.
	RetrySuccess RetryOutcome = "success"
	// RetryEmpty means every attempt succeeded but returned nothing;
	// the external index may simply have no matches.
	RetryEmpty RetryOutcome = "empty"
	// RetryExhausted means the attempt budget ran out on errors.
	RetryExhausted RetryOutcome = "exhausted"
)

// RetryPolicy is a bounded exponential backoff: MaxAttempts tries, with
// BaseDelay doubling between attempts. Used while awaiting eventual
// consistency of an external index; it always terminates and degrades
// to "no records" rather than blocking.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy matches the configuration defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond}
}

// Fetch runs attempt up to MaxAttempts times. An attempt that errors or
// returns no records is retried after the current delay; the delay
// doubles each round. Returns the first non-empty result, or a typed
// empty/exhausted outcome with the last error (nil for RetryEmpty).
func (p RetryPolicy) Fetch(ctx context.Context, attempt func(ctx context.Context) ([]models.TaskRecord, error)) ([]models.TaskRecord, RetryOutcome, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var lastErr error
	sawSuccess := false

	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, RetryExhausted, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		records, err := attempt(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		sawSuccess = true
		if len(records) > 0 {
			return records, RetrySuccess, nil
		}
	}

	if sawSuccess {
		return nil, RetryEmpty, nil
	}
	return nil, RetryExhausted, lastErr
}
