package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultPollInterval paces WaitResult when the caller passes no
// interval.
const DefaultPollInterval = 500 * time.Millisecond

// WaitResult polls a backend until the handle's circuit reaches a
// terminal status and returns its result. A backend that cannot report
// status (ErrJobStatusUnavailable) is probed by fetching the result
// directly each round. interval <= 0 selects DefaultPollInterval.
func WaitResult(ctx context.Context, b Backend, handle ResultHandle, interval time.Duration) (*Result, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := b.CircuitStatus(ctx, handle)
		switch {
		case errors.Is(err, ErrJobStatusUnavailable):
			if res, rerr := b.Result(ctx, handle); rerr == nil {
				return res, nil
			}
		case err != nil:
			return nil, err
		default:
			switch st.Status {
			case StatusCompleted:
				return b.Result(ctx, handle)
			case StatusErrored:
				return nil, fmt.Errorf("circuit errored: %s", st.Message)
			case StatusCancelled:
				return nil, errors.New("circuit was cancelled")
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
