package execution

import (
	"context"

	"gunit/internal/domain"
)

// LifecycleItem runs the setup and teardown methods of one inheritance
// level. Teardown only runs when setup was attempted.
type LifecycleItem struct {
	level       domain.LifecycleLevel
	setUpCalled bool
}

// NewLifecycleItem creates a new LifecycleItem for level
func NewLifecycleItem(level domain.LifecycleLevel) *LifecycleItem {
	return &LifecycleItem{level: level}
}

// BuildLifecycle creates one item per level of the fixture, derived first
func BuildLifecycle(fixture *domain.Suite) []*LifecycleItem {
	if fixture == nil {
		return nil
	}
	items := make([]*LifecycleItem, 0, len(fixture.Lifecycle))
	for _, level := range fixture.Lifecycle {
		items = append(items, NewLifecycleItem(level))
	}
	return items
}

// Level returns the level the item runs
func (li *LifecycleItem) Level() domain.LifecycleLevel {
	return li.level
}

// SetUpCalled reports whether RunSetUp was attempted
func (li *LifecycleItem) SetUpCalled() bool {
	return li.setUpCalled
}

// RunSetUp runs the setup methods in declaration order and returns the
// first error
func (li *LifecycleItem) RunSetUp(c *Context) error {
	li.setUpCalled = true
	for _, m := range li.level.SetUps {
		if err := invoke(c.Ctx(), c, m, nil); err != nil {
			return err
		}
	}
	return nil
}

// RunTearDown runs the teardown methods in reverse order. A failure is
// recorded on the result and skips the remaining methods of this level.
func (li *LifecycleItem) RunTearDown(c *Context) {
	if !li.setUpCalled {
		return
	}
	li.setUpCalled = false

	// teardown still runs after cancellation or timeout
	ctx := context.WithoutCancel(c.Ctx())
	before := c.Result.AssertionCount()
	for i := len(li.level.TearDowns) - 1; i >= 0; i-- {
		m := li.level.TearDowns[i]
		if err := protect(func() error { return invoke(ctx, c, m, nil) }); err != nil {
			c.Result.RecordTearDownException(err)
			break
		}
	}
	if c.Result.AssertionCount() > before {
		c.Result.RecordTestCompletion()
	}
}
