package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"gunit/internal/domain"
)

// ErrCancelled is returned by code that observed a cancellation request
var ErrCancelled = errors.New("test cancelled")

// TimeoutError reports a test that ran past its time limit
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Test exceeded Timeout value of %s", e.Timeout)
}

// RunInSafeZone runs fn and records any failure on the invocation result.
// Panics become errors and cancellation moves the result to Cancelled.
// It reports whether fn completed without failure.
func RunInSafeZone(c *Context, site domain.Site, fn func() error) bool {
	err := protect(fn)
	if err == nil {
		return true
	}

	switch {
	case isCancellation(err):
		c.Result.RecordCancellation(cancelReason(err))
	case errors.Is(err, context.DeadlineExceeded) && c.limit > 0:
		c.Result.RecordExceptionAt(errors.WithStack(&TimeoutError{Timeout: c.limit}), site)
	default:
		c.Result.RecordExceptionAt(err, site)
	}
	return false
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return fn()
}

// recovered converts a panic value into an error. FailNow panics keep
// their sentinel so they only stop the test.
func recovered(r any) error {
	if err, ok := r.(error); ok && errors.Is(err, domain.ErrFailNow) {
		return domain.ErrFailNow
	}
	return domain.NewPanicError(r)
}

func isCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

func cancelReason(err error) string {
	if errors.Is(err, ErrCancelled) {
		return err.Error()
	}
	return "Test cancelled by user"
}
