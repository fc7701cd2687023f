// Package operation polls backend long-running operations until they finish.
package operation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-docstore-be/pkg/apperror"
)

const (
	DefaultInterval    = 3 * time.Second
	DefaultMaxAttempts = 20
)

// ErrTimeout is matched by every TimeoutError.
var ErrTimeout = errors.New("operation timed out")

// StatusError is the backend error payload of a finished operation.
type StatusError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Status is one observation of an operation.
type Status struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Error    *StatusError    `json:"error,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// CheckFunc fetches the current status of the operation identified by handle.
type CheckFunc func(ctx context.Context, handle string) (*Status, error)

// Waiter blocks until an operation completes. Poller is the polling
// implementation; a push-based notifier can satisfy the same contract.
type Waiter interface {
	Await(ctx context.Context, handle string, check CheckFunc) (json.RawMessage, error)
}

// FailedError is returned when the operation finished with an error payload.
type FailedError struct {
	Handle  string
	Payload *StatusError
}

func (e *FailedError) Error() string {
	if e.Payload == nil {
		return fmt.Sprintf("operation %s failed", e.Handle)
	}
	return fmt.Sprintf("operation %s failed: %s (code %d)", e.Handle, e.Payload.Message, e.Payload.Code)
}

func (e *FailedError) Kind() apperror.Kind { return apperror.KindOperationFailed }

// TimeoutError is returned when the attempts ran out before the operation was done.
type TimeoutError struct {
	Handle   string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s not done after %d attempts", e.Handle, e.Attempts)
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

func (e *TimeoutError) Kind() apperror.Kind { return apperror.KindOperationTimeout }

// Poller checks an operation at a fixed interval, one check at a time.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int

	// OnAttempt, when set, is called after every check with the 1-based attempt number.
	OnAttempt func(attempt int, status *Status)

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller returns a poller, substituting defaults for non-positive values.
func NewPoller(interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{Interval: interval, MaxAttempts: maxAttempts}
}

// Await runs check until the operation is done, fails, the attempts are
// exhausted, or ctx is cancelled. A transport error from check aborts immediately.
func (p *Poller) Await(ctx context.Context, handle string, check CheckFunc) (json.RawMessage, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		status, err := check(ctx, handle)
		if err != nil {
			return nil, err
		}
		if p.OnAttempt != nil {
			p.OnAttempt(attempt, status)
		}
		if status != nil && status.Done {
			if status.Error != nil {
				return nil, &FailedError{Handle: handle, Payload: status.Error}
			}
			return status.Response, nil
		}
		if attempt == maxAttempts {
			break
		}
		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}
	}
	return nil, &TimeoutError{Handle: handle, Attempts: maxAttempts}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
