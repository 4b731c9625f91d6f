package execution

import (
	"context"
	"time"

	"gunit/internal/domain"
)

// Executor executes tests and returns results
type Executor interface {
	Execute(ctx context.Context, tests []*domain.TestCase) ([]*domain.Result, time.Duration, error)
}

// Progress receives updates while tests complete
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}
