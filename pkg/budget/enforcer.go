package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Enforcer is the Budget/Timer ledger's entry point: install caps, meter
// usage, read status. It never denies a call — over-budget is reported
// back to the caller as Decision.OverBudget, nothing more.
type Enforcer struct {
	storage Storage
	retry   backoff.BackOff
}

// NewEnforcer builds an Enforcer over the given storage, retrying
// transient storage failures with the same exponential backoff shape the
// kernel already depends on (but, before this package, never called).
func NewEnforcer(s Storage) *Enforcer {
	return &Enforcer{
		storage: s,
		retry:   backoff.NewExponentialBackOff(),
	}
}

func (e *Enforcer) withRetry(ctx context.Context, fn func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	}, backoff.WithBackOff(e.retry), backoff.WithMaxTries(3))
	return err
}

// SetBudget installs per-task caps. A cap of 0 means uncapped.
func (e *Enforcer) SetBudget(ctx context.Context, task string, tokenCap, timeCapMillis, requestCap int64) error {
	l, err := e.storage.Get(ctx, task)
	if err != nil {
		return fmt.Errorf("budget: set_budget: %w", err)
	}
	if l == nil {
		l = &Ledger{TaskID: task}
	}
	l.TokenCap = tokenCap
	l.TimeCapMillis = timeCapMillis
	l.RequestCap = requestCap
	l.LastUpdated = time.Now().UTC()

	return e.withRetry(ctx, func() error { return e.storage.Set(ctx, l) })
}

// Meter increments usage counters by the given deltas and reports whether
// the task is now over any installed cap. Storage errors are returned;
// over-budget never is.
func (e *Enforcer) Meter(ctx context.Context, task string, d Delta) (*Decision, error) {
	var l *Ledger
	err := e.withRetry(ctx, func() error {
		var getErr error
		l, getErr = e.storage.Get(ctx, task)
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("budget: meter: %w", err)
	}
	if l == nil {
		l = &Ledger{TaskID: task}
	}

	l.TokensUsed += d.Tokens
	l.TimeUsedMillis += d.Millis
	l.RequestsUsed += d.Requests
	l.LastUpdated = time.Now().UTC()

	if err := e.withRetry(ctx, func() error { return e.storage.Set(ctx, l) }); err != nil {
		return nil, fmt.Errorf("budget: meter persist: %w", err)
	}

	over := l.OverBudget()
	reason := ""
	if over {
		reason = overBudgetReason(l)
		slog.Warn("budget: task over budget", "task", task, "reason", reason)
	}
	return &Decision{Task: task, OverBudget: over, Reason: reason, Ledger: l}, nil
}

// GetLedger returns the task's current ledger, or a zero-value ledger if
// none has been created yet.
func (e *Enforcer) GetLedger(ctx context.Context, task string) (*Ledger, error) {
	l, err := e.storage.Get(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("budget: get_ledger: %w", err)
	}
	if l == nil {
		return &Ledger{TaskID: task}, nil
	}
	return l, nil
}

func overBudgetReason(l *Ledger) string {
	switch {
	case l.TokenCap > 0 && l.TokensUsed > l.TokenCap:
		return fmt.Sprintf("tokens_used %d exceeds token_cap %d", l.TokensUsed, l.TokenCap)
	case l.TimeCapMillis > 0 && l.TimeUsedMillis > l.TimeCapMillis:
		return fmt.Sprintf("time_used_millis %d exceeds time_cap_millis %d", l.TimeUsedMillis, l.TimeCapMillis)
	case l.RequestCap > 0 && l.RequestsUsed > l.RequestCap:
		return fmt.Sprintf("requests_used %d exceeds request_cap %d", l.RequestsUsed, l.RequestCap)
	default:
		return ""
	}
}
