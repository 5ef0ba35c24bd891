// Package poll implements cancellable condition polling for hardware status counters.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidInterval is returned when the polling interval is not positive.
var ErrInvalidInterval = errors.New("poll interval must be positive")

// Condition reports whether the awaited state has been reached.
// A non-nil error stops polling and is returned to the caller.
type Condition func(ctx context.Context) (bool, error)

// Until evaluates cond immediately and then once per interval until it reports true,
// returns an error, or ctx is done. The context error is returned on cancellation or deadline.
func Until(ctx context.Context, interval time.Duration, cond Condition) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	for {
		done, err := cond(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		timer := getTimer(interval)
		select {
		case <-ctx.Done():
			putTimer(timer)
			return ctx.Err()
		case <-timer.C:
			putTimer(timer)
		}
	}
}
