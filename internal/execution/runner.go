package execution

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gunit/internal/config"
	"gunit/internal/domain"
	"gunit/internal/metrics"
)

// Runner executes a single test case
type Runner struct {
	defaultTimeout time.Duration
	logger         *zap.Logger
	metrics        *metrics.Collector
}

// NewRunner creates a new Runner. logger and collector may be nil.
func NewRunner(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{logger: logger, metrics: collector}
	if cfg != nil {
		r.defaultTimeout = cfg.DefaultTimeout
	}
	return r
}

// MakeTestCommand builds the command chain for test, outermost first:
// timeout, fixture construction, setup/teardown, test method
func (r *Runner) MakeTestCommand(test *domain.TestCase) Command {
	var cmd Command = NewTestMethodCommand(test)
	cmd = NewSetUpTearDownCommand(cmd)
	cmd = NewConstructFixtureCommand(cmd)
	if timeout := r.timeoutFor(test); timeout > 0 {
		cmd = NewTimeoutCommand(cmd, timeout)
	}
	return cmd
}

// Run executes test and returns its result. Invalid and ignored tests are
// reported without running anything.
func (r *Runner) Run(ctx context.Context, test *domain.TestCase, workerID int) *domain.Result {
	c := NewContext(ctx, test, workerID, r.logger)
	result := c.Result

	switch state, reason := domain.EffectiveRunState(test); state {
	case domain.RunStateNotRunnable:
		site := domain.SiteTest
		if test.RunState() != domain.RunStateNotRunnable {
			site = domain.SiteParent
		}
		result.MarkNotRunnable(reason, site)
		r.observe(c)
		return result
	case domain.RunStateIgnored:
		result.Skip(reason)
		r.observe(c)
		return result
	}

	result.Start()
	if ctx.Err() != nil {
		result.RecordCancellation("Test cancelled before it started")
		result.Finish()
		r.observe(c)
		return result
	}

	c.Logger.Debug("running test")
	cmd := r.MakeTestCommand(test)
	cmd.OnBeforeTest(c)
	if !c.Aborted() {
		cmd.Execute(c)
	}
	cmd.OnAfterTest(c)
	result.Finish()

	r.observe(c)
	return result
}

func (r *Runner) timeoutFor(test *domain.TestCase) time.Duration {
	if v := domain.EffectiveProperty(test, domain.PropertyTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		r.logger.Warn("ignoring malformed timeout", zap.String("test", test.FullName()), zap.String("timeout", v))
	}
	return r.defaultTimeout
}

func (r *Runner) observe(c *Context) {
	result := c.Result
	status := result.Status()
	if status.IsFailure() {
		c.Logger.Info("test failed",
			zap.String("status", string(status)),
			zap.String("site", string(result.Site())),
			zap.String("message", result.Message()),
		)
	} else {
		c.Logger.Debug("test finished", zap.String("status", string(status)), zap.Duration("duration", result.Duration()))
	}

	if r.metrics == nil {
		return
	}
	fixture := ""
	if c.Fixture != nil {
		fixture = c.Fixture.FullName()
	}
	r.metrics.ObserveTest(fixture, string(status), result.Duration(), result.AssertionCount())
}
