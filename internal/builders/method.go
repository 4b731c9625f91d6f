package builders

import (
	"fmt"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// MethodBuilder turns a test method into a single test case or a
// parameterized method suite
type MethodBuilder struct{}

// NewMethodBuilder creates a new MethodBuilder
func NewMethodBuilder() *MethodBuilder {
	return &MethodBuilder{}
}

// CanBuildFrom reports whether m carries a test or simple test builder marker
func (b *MethodBuilder) CanBuildFrom(m *metadata.MethodInfo) bool {
	return m.IsDefined(metadata.RoleTestBuilder) || m.IsDefined(metadata.RoleSimpleTestBuilder)
}

// BuildFrom builds the node for m under parent
func (b *MethodBuilder) BuildFrom(m *metadata.MethodInfo, parent *domain.Suite) (node domain.Node) {
	defer func() {
		if r := recover(); r != nil {
			node = invalidMethodSuite(m, fmt.Errorf("%v", r))
		}
	}()

	sources, err := testSources(m)
	if err != nil {
		return invalidMethodSuite(m, err)
	}
	if m.HasDataSourceParams() && !m.IsDefined(metadata.RoleCombiningStrategy) {
		sources = append(sources, Combinatorial{})
	}

	var tests []*domain.TestCase
	for _, source := range sources {
		built, err := source.BuildTests(m, parent)
		if err != nil {
			return invalidMethodSuite(m, err)
		}
		tests = append(tests, built...)
	}

	if (len(sources) > 0 && len(m.Params) > 0) || len(tests) > 0 {
		return b.buildParameterizedMethodSuite(m, tests)
	}
	return b.buildSingleTestMethod(m, parent)
}

func (b *MethodBuilder) buildParameterizedMethodSuite(m *metadata.MethodInfo, tests []*domain.TestCase) *domain.Suite {
	suite := domain.NewParameterizedMethodSuite(m)
	applyModifiers(m.MarkersWithRole(metadata.RoleApplyToTest), suite)
	for _, tc := range tests {
		suite.Add(tc)
	}
	return suite
}

func (b *MethodBuilder) buildSingleTestMethod(m *metadata.MethodInfo, parent *domain.Suite) *domain.TestCase {
	for _, marker := range m.MarkersWithRole(metadata.RoleSimpleTestBuilder) {
		if source, ok := marker.(SimpleTestSource); ok {
			return source.BuildTest(m, parent)
		}
	}
	return BuildTestMethod(m, parent, nil)
}

func testSources(m *metadata.MethodInfo) ([]TestSource, error) {
	var sources []TestSource
	for _, marker := range m.MarkersWithRole(metadata.RoleTestBuilder) {
		source, ok := marker.(TestSource)
		if !ok {
			return nil, wrongCapability(marker, metadata.RoleTestBuilder)
		}
		sources = append(sources, source)
	}
	return sources, nil
}

func invalidMethodSuite(m *metadata.MethodInfo, err error) *domain.Suite {
	suite := domain.NewParameterizedMethodSuite(m)
	suite.MakeInvalid(fmt.Sprintf("An exception was thrown while building the test cases: %v", err))
	return suite
}
