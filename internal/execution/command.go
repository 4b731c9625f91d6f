package execution

import "gunit/internal/domain"

// Command is one layer of the pipeline that runs a test case
type Command interface {
	Test() *domain.TestCase
	OnBeforeTest(c *Context)
	OnAfterTest(c *Context)
	Execute(c *Context)
}

// DelegatingCommand wraps an inner command. Before hooks run outer first,
// after hooks run inner first. A failing before hook aborts the invocation.
type DelegatingCommand struct {
	Inner  Command
	before func(c *Context) error
	after  func(c *Context) error
}

func (d *DelegatingCommand) Test() *domain.TestCase { return d.Inner.Test() }

// OnBeforeTest runs the own hook then the inner hooks
func (d *DelegatingCommand) OnBeforeTest(c *Context) {
	if d.before != nil && !RunInSafeZone(c, domain.SiteSetUp, func() error { return d.before(c) }) {
		c.Abort()
		return
	}
	d.Inner.OnBeforeTest(c)
}

// OnAfterTest runs the inner hooks then the own hook
func (d *DelegatingCommand) OnAfterTest(c *Context) {
	d.Inner.OnAfterTest(c)
	if d.after != nil {
		RunInSafeZone(c, domain.SiteTearDown, func() error { return d.after(c) })
	}
}

// Execute delegates to the inner command
func (d *DelegatingCommand) Execute(c *Context) {
	d.Inner.Execute(c)
}

// HookCommand adds before and after hooks around an inner command
type HookCommand struct {
	DelegatingCommand
}

// NewHookCommand creates a new HookCommand. Either hook may be nil.
func NewHookCommand(inner Command, before, after func(c *Context) error) *HookCommand {
	return &HookCommand{DelegatingCommand{Inner: inner, before: before, after: after}}
}
