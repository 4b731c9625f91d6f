package execution

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// Context is the state of one test invocation. It is never shared between
// invocations.
type Context struct {
	ctx   context.Context
	limit time.Duration

	// Test is the test case being run
	Test *domain.TestCase
	// Fixture is the fixture suite owning the test
	Fixture *domain.Suite
	// TestObject is the fixture instance, nil for static fixtures
	TestObject any
	// Result receives the outcome
	Result *domain.Result
	// WorkerID identifies the worker running the invocation
	WorkerID int
	// Logger is scoped to the test
	Logger *zap.Logger

	t         *T
	lifecycle []*LifecycleItem
	aborted   bool
}

type contextKey struct{}

func init() {
	metadata.RegisterInjectable(reflect.TypeFor[*T](), func(ctx context.Context) (any, bool) {
		c, ok := ctx.Value(contextKey{}).(*Context)
		if !ok {
			return nil, false
		}
		return c.t, true
	})
	metadata.RegisterInjectable(reflect.TypeFor[*Context](), func(ctx context.Context) (any, bool) {
		c, ok := ctx.Value(contextKey{}).(*Context)
		return c, ok
	})
}

// NewContext creates the context of one invocation of test
func NewContext(ctx context.Context, test *domain.TestCase, workerID int, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Context{
		Test:     test,
		Fixture:  domain.FixtureOf(test),
		Result:   domain.NewResult(test),
		WorkerID: workerID,
		Logger:   logger.With(zap.String("test", test.FullName()), zap.Int("worker", workerID)),
	}
	c.t = &T{c: c}
	c.ctx = context.WithValue(ctx, contextKey{}, c)
	return c
}

// Ctx returns the context passed to test methods
func (c *Context) Ctx() context.Context {
	return c.ctx
}

// T returns the assertion handle of the invocation
func (c *Context) T() *T {
	return c.t
}

// withTimeout bounds the invocation context until the returned restore
// function is called
func (c *Context) withTimeout(limit time.Duration) (ctx context.Context, restore func()) {
	previous, previousLimit := c.ctx, c.limit
	ctx, cancel := context.WithTimeout(previous, limit)
	c.ctx = ctx
	c.limit = limit
	return ctx, func() {
		cancel()
		c.ctx, c.limit = previous, previousLimit
	}
}

// Abort stops the invocation before the test body runs
func (c *Context) Abort() {
	c.aborted = true
}

// Aborted reports whether a hook stopped the invocation
func (c *Context) Aborted() bool {
	return c.aborted
}

// T records assertions for the running test. It satisfies the testing
// interfaces of testify's assert and require packages.
type T struct {
	c *Context
}

// Name returns the full name of the running test
func (t *T) Name() string {
	return t.c.Test.FullName()
}

// Context returns the invocation context
func (t *T) Context() context.Context {
	return t.c.Ctx()
}

// Helper is a no-op kept for testing.TB compatibility
func (t *T) Helper() {}

// Errorf records a failed assertion and lets the test continue
func (t *T) Errorf(format string, args ...any) {
	t.record(domain.AssertionFailed, fmt.Sprintf(format, args...))
}

// Error records a failed assertion and lets the test continue
func (t *T) Error(args ...any) {
	t.record(domain.AssertionFailed, fmt.Sprint(args...))
}

// Warnf records a warning
func (t *T) Warnf(format string, args ...any) {
	t.record(domain.AssertionWarning, fmt.Sprintf(format, args...))
}

// Pass records a passed assertion
func (t *T) Pass(message string) {
	t.c.Result.RecordAssertion(domain.AssertionPassed, message, "")
}

// FailNow stops the test. The failure must already be recorded.
func (t *T) FailNow() {
	panic(domain.ErrFailNow)
}

// Fatalf records a failed assertion and stops the test
func (t *T) Fatalf(format string, args ...any) {
	t.Errorf(format, args...)
	t.FailNow()
}

// Fatal records a failed assertion and stops the test
func (t *T) Fatal(args ...any) {
	t.Error(args...)
	t.FailNow()
}

// Logf writes a line to the test output
func (t *T) Logf(format string, args ...any) {
	t.c.Result.Logf(format, args...)
	t.c.Logger.Debug("test output", zap.String("line", fmt.Sprintf(format, args...)))
}

// Failed reports whether a failure was recorded
func (t *T) Failed() bool {
	for _, a := range t.c.Result.Assertions() {
		if a.Status == domain.AssertionFailed || a.Status == domain.AssertionError {
			return true
		}
	}
	return false
}

func (t *T) record(status domain.AssertionStatus, message string) {
	t.c.Result.RecordAssertion(status, message, domain.StackOf(errors.New(message)))
}
