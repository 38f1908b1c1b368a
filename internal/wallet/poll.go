package wallet

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout is returned by WaitFor when the policy deadline passes.
var ErrPollTimeout = errors.New("poll timeout")

// Inclusion polling defaults.
const (
	DefaultPollTimeout  = 60 * time.Second
	DefaultPollDelay    = 200 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
)

// PollPolicy bounds inclusion polling: wait Delay, then check every
// Interval until Timeout has elapsed since the start.
type PollPolicy struct {
	Timeout  time.Duration
	Delay    time.Duration
	Interval time.Duration
}

// DefaultPollPolicy returns the standard inclusion polling policy.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Timeout:  DefaultPollTimeout,
		Delay:    DefaultPollDelay,
		Interval: DefaultPollInterval,
	}
}

// WaitFor calls check until it reports done. check errors are not fatal:
// a node that has not indexed a transaction yet reports it as missing.
// Cancelling ctx aborts with ctx.Err(); running out of time returns
// ErrPollTimeout.
func WaitFor[T any](ctx context.Context, p PollPolicy, check func(context.Context) (T, bool)) (T, error) {
	var zero T
	pollCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-pollCtx.Done():
		return zero, pollErr(ctx)
	}

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if v, ok := check(pollCtx); ok {
			return v, nil
		}
		select {
		case <-ticker.C:
		case <-pollCtx.Done():
			return zero, pollErr(ctx)
		}
	}
}

func pollErr(parent context.Context) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return ErrPollTimeout
}
