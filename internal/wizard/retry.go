package wizard

import (
	"context"
	"errors"
	"fmt"
)

// ErrAttemptsExhausted is returned by Until when MaxAttempts answers were rejected.
var ErrAttemptsExhausted = errors.New("no acceptable answer")

// Retry describes one ask-validate loop.
type Retry[T any] struct {
	// Ask produces the next candidate. attempt starts at 1.
	// An error aborts the loop (input closed, interrupt).
	Ask func(ctx context.Context, attempt int) (T, error)
	// Check returns nil when the candidate is acceptable.
	Check func(T) error
	// OnReject is called with the Check error before the next attempt.
	OnReject func(attempt int, err error)
	// MaxAttempts caps the loop; 0 means no cap.
	MaxAttempts int
}

// Until asks until a candidate passes Check and returns it.
func Until[T any](ctx context.Context, r Retry[T]) (T, error) {
	var zero T
	if r.Ask == nil {
		return zero, fmt.Errorf("retry: Ask is required")
	}
	for attempt := 1; r.MaxAttempts == 0 || attempt <= r.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := r.Ask(ctx, attempt)
		if err != nil {
			return zero, err
		}
		if r.Check == nil {
			return v, nil
		}
		checkErr := r.Check(v)
		if checkErr == nil {
			return v, nil
		}
		if r.OnReject != nil {
			r.OnReject(attempt, checkErr)
		}
	}
	return zero, fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, r.MaxAttempts)
}
