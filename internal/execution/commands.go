package execution

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"gunit/internal/domain"
)

// TestMethodCommand invokes the test body
type TestMethodCommand struct {
	test *domain.TestCase
}

// NewTestMethodCommand creates a new TestMethodCommand
func NewTestMethodCommand(test *domain.TestCase) *TestMethodCommand {
	return &TestMethodCommand{test: test}
}

func (cmd *TestMethodCommand) Test() *domain.TestCase { return cmd.test }
func (cmd *TestMethodCommand) OnBeforeTest(*Context) {}
func (cmd *TestMethodCommand) OnAfterTest(*Context) {}

// Execute runs the body and derives the status from its assertions
func (cmd *TestMethodCommand) Execute(c *Context) {
	ok := RunInSafeZone(c, domain.SiteTest, func() error {
		return invoke(c.Ctx(), c, cmd.test.Method, cmd.test.Arguments)
	})
	if ok {
		c.Result.RecordTestCompletion()
	}
}

// SetUpTearDownCommand runs the fixture lifecycle around the inner command
type SetUpTearDownCommand struct {
	DelegatingCommand
}

// NewSetUpTearDownCommand creates a new SetUpTearDownCommand
func NewSetUpTearDownCommand(inner Command) *SetUpTearDownCommand {
	return &SetUpTearDownCommand{DelegatingCommand{Inner: inner}}
}

// Execute runs setups base first and stops at the first failing level. The
// body runs only when every setup succeeded. Teardowns run derived first for
// every level whose setup was attempted.
func (cmd *SetUpTearDownCommand) Execute(c *Context) {
	c.lifecycle = BuildLifecycle(c.Fixture)

	setUpOK := true
	for i := len(c.lifecycle) - 1; i >= 0; i-- {
		item := c.lifecycle[i]
		if !RunInSafeZone(c, domain.SiteSetUp, func() error { return item.RunSetUp(c) }) {
			setUpOK = false
			break
		}
	}

	if setUpOK {
		cmd.Inner.Execute(c)
	}

	for _, item := range c.lifecycle {
		item.RunTearDown(c)
	}
}

// ConstructFixtureCommand creates the fixture instance before the test and
// closes it afterwards
type ConstructFixtureCommand struct {
	DelegatingCommand
}

// NewConstructFixtureCommand creates a new ConstructFixtureCommand
func NewConstructFixtureCommand(inner Command) *ConstructFixtureCommand {
	return &ConstructFixtureCommand{DelegatingCommand{
		Inner:  inner,
		before: constructFixture,
		after:  disposeFixture,
	}}
}

func constructFixture(c *Context) error {
	if c.TestObject != nil || c.Fixture == nil || c.Fixture.Type == nil {
		return nil
	}
	t := c.Fixture.Type
	if t.Abstract && t.Sealed {
		return nil
	}
	obj, err := t.CreateInstance(c.Fixture.Arguments)
	if err != nil {
		return fmt.Errorf("unable to construct fixture %s: %w", c.Fixture.FullName(), err)
	}
	c.TestObject = obj
	return nil
}

func disposeFixture(c *Context) error {
	closer, ok := c.TestObject.(io.Closer)
	if !ok {
		return nil
	}
	return closer.Close()
}

// TimeoutCommand bounds the invocation context of the inner command
type TimeoutCommand struct {
	DelegatingCommand
	timeout time.Duration
}

// NewTimeoutCommand creates a new TimeoutCommand
func NewTimeoutCommand(inner Command, timeout time.Duration) *TimeoutCommand {
	return &TimeoutCommand{DelegatingCommand: DelegatingCommand{Inner: inner}, timeout: timeout}
}

// Execute runs the inner command with a deadline. A test that returns after
// the deadline without reporting it fails with a timeout.
func (cmd *TimeoutCommand) Execute(c *Context) {
	ctx, restore := c.withTimeout(cmd.timeout)
	defer restore()

	cmd.Inner.Execute(c)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !timedOut(c.Result) {
		c.Result.RecordException(errors.WithStack(&TimeoutError{Timeout: cmd.timeout}))
	}
}

func timedOut(r *domain.Result) bool {
	for _, err := range r.Errors() {
		var timeoutErr *TimeoutError
		if errors.As(err, &timeoutErr) {
			return true
		}
	}
	return false
}
