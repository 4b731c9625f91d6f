// Package builders turns type and method metadata into suites and test cases.
package builders

import (
	"fmt"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// PreFilter narrows which types and methods are built. m is nil when only
// the type is being considered.
type PreFilter interface {
	IsMatch(t *metadata.TypeInfo, m *metadata.MethodInfo) bool
}

type emptyPreFilter struct{}

func (emptyPreFilter) IsMatch(*metadata.TypeInfo, *metadata.MethodInfo) bool { return true }

// EmptyPreFilter matches everything
var EmptyPreFilter PreFilter = emptyPreFilter{}

// FixtureSource is implemented by FixtureBuilder role markers
type FixtureSource interface {
	metadata.Marker
	BuildFixtures(t *metadata.TypeInfo) ([]*domain.Suite, error)
}

// FilteredFixtureSource is a FixtureSource that also consults the pre-filter
type FilteredFixtureSource interface {
	metadata.Marker
	BuildFixturesFiltered(t *metadata.TypeInfo, filter PreFilter) ([]*domain.Suite, error)
}

// ArgumentCarrier is implemented by fixture markers that may or may not
// carry fixture arguments. Markers without it count as carrying arguments.
type ArgumentCarrier interface {
	HasArguments() bool
}

// TestSource is implemented by TestBuilder role markers
type TestSource interface {
	metadata.Marker
	BuildTests(m *metadata.MethodInfo, parent *domain.Suite) ([]*domain.TestCase, error)
}

// SimpleTestSource is implemented by SimpleTestBuilder role markers
type SimpleTestSource interface {
	metadata.Marker
	BuildTest(m *metadata.MethodInfo, parent *domain.Suite) *domain.TestCase
}

// DataSource is implemented by ParameterDataSource role markers
type DataSource interface {
	metadata.Marker
	Data(p *metadata.ParamInfo) ([]any, error)
}

// TestModifier is implemented by ApplyToTest role markers
type TestModifier interface {
	metadata.Marker
	ApplyToTest(n domain.Node)
}

func hasArguments(m metadata.Marker) bool {
	if carrier, ok := m.(ArgumentCarrier); ok {
		return carrier.HasArguments()
	}
	return true
}

func wrongCapability(m metadata.Marker, role metadata.Role) error {
	return fmt.Errorf("marker %s is registered as %s but %T does not implement it", m.Kind(), role, m)
}

// applyModifiers applies every ApplyToTest marker in order
func applyModifiers(markers []metadata.Marker, n domain.Node) {
	for _, m := range markers {
		if modifier, ok := m.(TestModifier); ok {
			modifier.ApplyToTest(n)
		}
	}
}
