package peer

import (
	"context"
	"errors"
	"time"
)

var errPollTimeout = errors.New("poll timed out")

// pollUntil evaluates cond now and then once per interval until it returns
// true. It returns ctx.Err() on cancellation and errPollTimeout once timeout
// (if non-zero) has elapsed.
func pollUntil(ctx context.Context, interval, timeout time.Duration, cond func() bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cond() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return errPollTimeout
		case <-ticker.C:
			if cond() {
				return nil
			}
		}
	}
}

// sleep waits for d or until ctx is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
