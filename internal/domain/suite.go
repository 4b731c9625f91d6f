package domain

import (
	"fmt"

	"gunit/internal/metadata"
)

// SuiteKind classifies suites in the tree
type SuiteKind int

const (
	// KindAssembly is the root of a discovery run
	KindAssembly SuiteKind = iota
	// KindNamespace groups fixtures by package
	KindNamespace
	// KindFixture is one constructible fixture instance
	KindFixture
	// KindParameterizedFixture groups several instances of one fixture type
	KindParameterizedFixture
	// KindParameterizedMethod groups the test cases generated from one method
	KindParameterizedMethod
)

func (k SuiteKind) String() string {
	switch k {
	case KindAssembly:
		return "Assembly"
	case KindNamespace:
		return "Namespace"
	case KindFixture:
		return "TestFixture"
	case KindParameterizedFixture:
		return "ParameterizedFixture"
	case KindParameterizedMethod:
		return "ParameterizedMethod"
	}
	return fmt.Sprintf("SuiteKind(%d)", int(k))
}

// LifecycleLevel holds the setup and teardown methods declared on one
// inheritance level of a fixture
type LifecycleLevel struct {
	Type      *metadata.TypeInfo
	SetUps    []*metadata.MethodInfo
	TearDowns []*metadata.MethodInfo
}

// HasMethods reports whether the level declares any lifecycle method
func (l LifecycleLevel) HasMethods() bool {
	return len(l.SetUps) > 0 || len(l.TearDowns) > 0
}

// Suite is a non-leaf node of the test tree
type Suite struct {
	id       string
	name     string
	fullName string
	kind     SuiteKind
	parent   *Suite
	children []Node
	runState RunState
	reason   string
	props    *Properties

	// Type is the fixture type for fixture and parameterized-fixture suites
	Type *metadata.TypeInfo
	// Method is the originating method of a parameterized-method suite
	Method *metadata.MethodInfo
	// Arguments are the fixture constructor arguments
	Arguments []any
	// Lifecycle lists inheritance levels, derived first
	Lifecycle []LifecycleLevel
}

// NewSuite creates a new runnable suite
func NewSuite(kind SuiteKind, name, fullName string) *Suite {
	return &Suite{
		id:       NewID(),
		name:     name,
		fullName: fullName,
		kind:     kind,
		props:    NewProperties(),
	}
}

// NewFixtureSuite creates a suite for one fixture instance
func NewFixtureSuite(t *metadata.TypeInfo, args []any) *Suite {
	name := t.DisplayName()
	fullName := t.FullName()
	if len(args) > 0 {
		name += FormatArguments(args)
		fullName += FormatArguments(args)
	}
	s := NewSuite(KindFixture, name, fullName)
	s.Type = t
	s.Arguments = args
	return s
}

// NewParameterizedFixtureSuite creates the wrapper for several fixture instances
func NewParameterizedFixtureSuite(t *metadata.TypeInfo) *Suite {
	s := NewSuite(KindParameterizedFixture, t.DisplayName(), t.FullName())
	s.Type = t
	return s
}

// NewParameterizedMethodSuite creates the wrapper for the cases of one method
func NewParameterizedMethodSuite(m *metadata.MethodInfo) *Suite {
	s := NewSuite(KindParameterizedMethod, m.Name, "")
	s.Method = m
	return s
}

func (s *Suite) ID() string { return s.id }
func (s *Suite) Name() string { return s.name }
func (s *Suite) Kind() SuiteKind { return s.kind }
func (s *Suite) Parent() *Suite { return s.parent }
func (s *Suite) IsSuite() bool { return true }
func (s *Suite) RunState() RunState { return s.runState }
func (s *Suite) Reason() string { return s.reason }
func (s *Suite) Properties() *Properties { return s.props }
func (s *Suite) Children() []Node { return s.children }
func (s *Suite) setParent(parent *Suite) { s.parent = parent }

// FullName returns the dotted name. Method suites derive it from their fixture.
func (s *Suite) FullName() string {
	if s.fullName != "" {
		return s.fullName
	}
	if fixture := FixtureOf(s); fixture != nil {
		return fixture.FullName() + "." + s.name
	}
	if s.Method != nil {
		return s.Method.FullName()
	}
	return s.name
}

// Valid reports whether the suite may execute its children
func (s *Suite) Valid() bool {
	return s.runState != RunStateNotRunnable
}

// Add appends a child and sets its parent
func (s *Suite) Add(child Node) {
	child.setParent(s)
	s.children = append(s.children, child)
}

// MakeInvalid marks the suite not runnable. Invalid is terminal.
func (s *Suite) MakeInvalid(reason string) {
	s.runState = RunStateNotRunnable
	s.reason = reason
	s.props.Set(PropertySkipReason, reason)
}

// Ignore marks a runnable suite as ignored
func (s *Suite) Ignore(reason string) {
	if s.runState == RunStateNotRunnable {
		return
	}
	s.runState = RunStateIgnored
	s.reason = reason
	s.props.Set(PropertySkipReason, reason)
}

// TestCaseCount returns the number of test cases below the suite
func (s *Suite) TestCaseCount() int {
	count := 0
	for _, child := range s.children {
		count += child.TestCaseCount()
	}
	return count
}

// FixtureOf returns the nearest fixture suite at or above n
func FixtureOf(n Node) *Suite {
	if s, ok := n.(*Suite); ok && s.kind == KindFixture {
		return s
	}
	for p := n.Parent(); p != nil; p = p.parent {
		if p.kind == KindFixture {
			return p
		}
	}
	return nil
}
