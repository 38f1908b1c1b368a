package wallet

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(timeout time.Duration) PollPolicy {
	return PollPolicy{Timeout: timeout, Delay: time.Millisecond, Interval: 5 * time.Millisecond}
}

func TestWaitFor_Succeeds(t *testing.T) {
	calls := 0
	got, err := WaitFor(context.Background(), fastPolicy(time.Second), func(context.Context) (string, bool) {
		calls++
		return "digest", calls == 3
	})
	if err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
	if got != "digest" || calls != 3 {
		t.Errorf("WaitFor() = %q after %d calls, want digest after 3", got, calls)
	}
}

func TestWaitFor_Timeout(t *testing.T) {
	start := time.Now()
	_, err := WaitFor(context.Background(), fastPolicy(30*time.Millisecond), func(context.Context) (int, bool) {
		return 0, false
	})
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("WaitFor() error = %v, want ErrPollTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("WaitFor took %s, timeout not honoured", elapsed)
	}
}

func TestWaitFor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := PollPolicy{Timeout: time.Second, Delay: 100 * time.Millisecond, Interval: time.Millisecond}
	_, err := WaitFor(ctx, p, func(context.Context) (int, bool) {
		t.Error("check called after cancel")
		return 0, true
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WaitFor() error = %v, want context.Canceled", err)
	}
}

func TestDefaultPollPolicy(t *testing.T) {
	p := DefaultPollPolicy()
	if p.Timeout != 60*time.Second || p.Delay != 200*time.Millisecond || p.Interval != 2*time.Second {
		t.Errorf("DefaultPollPolicy() = %+v", p)
	}
}
