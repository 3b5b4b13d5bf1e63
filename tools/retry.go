package tools

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type ActionFunc = func() error
type LogFunc = func(error)

// ErrRetriesExhausted is wrapped together with the last action error once a
// RetryPolicy gives up.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy implements an exponential backoff retry mechanism where:
// `InitialWait` is the wait after the first failed execution
// `Multiplier` grows the wait after every failure (values <= 1 keep it constant)
// `MaxWait` caps the wait (0 = no cap)
// `MaxAttempts` is the maximum number of executions (0 = unlimited)
// `Deadline` bounds the total time spent (0 = no deadline)
type RetryPolicy struct {
	InitialWait time.Duration `json:"initial-wait" mapstructure:"initial-wait"`
	Multiplier  float64       `json:"multiplier" mapstructure:"multiplier"`
	MaxWait     time.Duration `json:"max-wait" mapstructure:"max-wait"`
	MaxAttempts int           `json:"max-attempts" mapstructure:"max-attempts"`
	Deadline    time.Duration `json:"deadline" mapstructure:"deadline"`
}

// Exponential returns the classic doubling policy: wait `initial`, then twice
// as long, and so on, for at most `attempts` executions.
func Exponential(initial time.Duration, attempts int) RetryPolicy {
	return RetryPolicy{InitialWait: initial, Multiplier: 2, MaxAttempts: attempts}
}

// Constant retries every `interval` for at most `attempts` executions.
func Constant(interval time.Duration, attempts int) RetryPolicy {
	return RetryPolicy{InitialWait: interval, Multiplier: 1, MaxAttempts: attempts}
}

// Unbounded reports whether the policy never gives up on its own.
func (p RetryPolicy) Unbounded() bool {
	return p.MaxAttempts <= 0 && p.Deadline <= 0
}

func (p RetryPolicy) Validate() error {
	if p.InitialWait < 0 {
		return fmt.Errorf("negative initial wait %v", p.InitialWait)
	}
	if p.MaxAttempts < 0 {
		return fmt.Errorf("negative max attempts %d", p.MaxAttempts)
	}
	if p.Deadline < 0 {
		return fmt.Errorf("negative deadline %v", p.Deadline)
	}
	if p.Unbounded() && p.InitialWait == 0 {
		return errors.New("unbounded policy needs a non-zero initial wait")
	}
	return nil
}

// Do executes `action` until it succeeds, the policy is exhausted or ctx is
// done. `log` is called with the error of every failed execution.
func (p RetryPolicy) Do(ctx context.Context, action ActionFunc, log LogFunc) error {
	return p.DoIf(ctx, nil, action, log)
}

// DoIf is like Do but stops immediately on errors for which `retryable`
// returns false. A nil `retryable` retries every error.
func (p RetryPolicy) DoIf(ctx context.Context, retryable func(error) bool, action ActionFunc, log LogFunc) error {
	if err := p.Validate(); err != nil {
		return err
	}

	var deadline time.Time
	if p.Deadline > 0 {
		deadline = time.Now().Add(p.Deadline)
	}

	wait := p.InitialWait
	var err error
	for attempt := 1; ; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}

		err = action()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if log != nil {
			log(err)
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
		}
		if !deadline.IsZero() && time.Now().Add(wait).After(deadline) {
			return fmt.Errorf("%w after %d attempts (deadline %v): %w", ErrRetriesExhausted, attempt, p.Deadline, err)
		}

		if err := sleep(ctx, wait); err != nil {
			return err
		}
		wait = p.next(wait)
	}
}

func (p RetryPolicy) next(wait time.Duration) time.Duration {
	if p.Multiplier > 1 {
		wait = time.Duration(float64(wait) * p.Multiplier)
	}
	if p.MaxWait > 0 && wait > p.MaxWait {
		wait = p.MaxWait
	}
	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
