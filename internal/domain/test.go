package domain

import "gunit/internal/metadata"

// TestCase is a leaf of the test tree: one method bound to one argument set
type TestCase struct {
	id       string
	name     string
	parent   *Suite
	runState RunState
	reason   string
	props    *Properties

	// Method is the test body
	Method *metadata.MethodInfo
	// Arguments are the values bound to the method's data parameters
	Arguments []any
}

// NewTestCase creates a new runnable test case
func NewTestCase(m *metadata.MethodInfo, name string, args []any) *TestCase {
	return &TestCase{
		id:        NewID(),
		name:      name,
		props:     NewProperties(),
		Method:    m,
		Arguments: args,
	}
}

func (t *TestCase) ID() string { return t.id }
func (t *TestCase) Name() string { return t.name }
func (t *TestCase) Parent() *Suite { return t.parent }
func (t *TestCase) IsSuite() bool { return false }
func (t *TestCase) RunState() RunState { return t.runState }
func (t *TestCase) Reason() string { return t.reason }
func (t *TestCase) Properties() *Properties { return t.props }
func (t *TestCase) TestCaseCount() int { return 1 }
func (t *TestCase) setParent(parent *Suite) { t.parent = parent }

// FullName returns the fixture qualified test name
func (t *TestCase) FullName() string {
	if fixture := FixtureOf(t); fixture != nil {
		return fixture.FullName() + "." + t.name
	}
	if t.Method != nil && t.Method.Owner != nil {
		return t.Method.Owner.FullName() + "." + t.name
	}
	return t.name
}

// MakeInvalid marks the test case not runnable
func (t *TestCase) MakeInvalid(reason string) {
	t.runState = RunStateNotRunnable
	t.reason = reason
	t.props.Set(PropertySkipReason, reason)
}

// Ignore marks a runnable test case as ignored
func (t *TestCase) Ignore(reason string) {
	if t.runState == RunStateNotRunnable {
		return
	}
	t.runState = RunStateIgnored
	t.reason = reason
	t.props.Set(PropertySkipReason, reason)
}

// EffectiveRunState returns the run state of n taking its ancestors into account
func EffectiveRunState(n Node) (RunState, string) {
	state, reason := n.RunState(), n.Reason()
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.RunState() {
		case RunStateNotRunnable:
			return RunStateNotRunnable, p.Reason()
		case RunStateIgnored:
			if state == RunStateRunnable {
				state, reason = RunStateIgnored, p.Reason()
			}
		}
	}
	return state, reason
}

// EffectiveProperty returns the nearest value of key on n or an ancestor
func EffectiveProperty(n Node, key string) string {
	if v := n.Properties().Get(key); v != "" {
		return v
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if v := p.Properties().Get(key); v != "" {
			return v
		}
	}
	return ""
}
