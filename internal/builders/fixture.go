package builders

import (
	"fmt"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// LoadErrorPrefix starts the reason of a fixture that failed to build
const LoadErrorPrefix = "An exception was thrown while loading the test.\n"

// FixtureBuilder decides which types are fixtures and builds their suites
type FixtureBuilder struct{}

// NewFixtureBuilder creates a new FixtureBuilder
func NewFixtureBuilder() *FixtureBuilder {
	return &FixtureBuilder{}
}

// CanBuildFrom reports whether t should become a fixture
func (b *FixtureBuilder) CanBuildFrom(t *metadata.TypeInfo) bool {
	if t.Abstract && !t.Sealed {
		return false
	}
	markers, err := fixtureSources(t)
	if err != nil || len(markers) > 0 {
		// a misconfigured marker still yields a fixture that reports the problem
		return true
	}
	if t.GenericDefinition {
		return false
	}
	return t.HasMethodWithRole(metadata.RoleImplyFixture)
}

// BuildFrom builds the fixture suite of t. Any failure while materializing
// fixtures yields a single invalid suite.
func (b *FixtureBuilder) BuildFrom(t *metadata.TypeInfo, filter PreFilter) (suite *domain.Suite) {
	defer func() {
		if r := recover(); r != nil {
			suite = invalidFixture(t, fmt.Errorf("%v", r))
		}
	}()
	if filter == nil {
		filter = EmptyPreFilter
	}

	markers, err := fixtureSources(t)
	if err != nil {
		return invalidFixture(t, err)
	}

	var fixtures []*domain.Suite
	for _, marker := range markers {
		var built []*domain.Suite
		if filtered, ok := marker.(FilteredFixtureSource); ok {
			built, err = filtered.BuildFixturesFiltered(t, filter)
		} else {
			built, err = marker.(FixtureSource).BuildFixtures(t)
		}
		if err != nil {
			return invalidFixture(t, err)
		}
		fixtures = append(fixtures, built...)
	}

	switch len(fixtures) {
	case 0:
		return BuildFixture(t, nil)
	case 1:
		return fixtures[0]
	}
	return buildMultipleFixtures(t, fixtures)
}

func buildMultipleFixtures(t *metadata.TypeInfo, fixtures []*domain.Suite) *domain.Suite {
	suite := domain.NewParameterizedFixtureSuite(t)
	for _, fixture := range fixtures {
		suite.Add(fixture)
	}
	return suite
}

func invalidFixture(t *metadata.TypeInfo, err error) *domain.Suite {
	suite := domain.NewFixtureSuite(t, nil)
	suite.MakeInvalid(LoadErrorPrefix + err.Error())
	return suite
}

// fixtureSources resolves the fixture builder markers of t. Levels are
// searched from the derived type upwards and the first declaring level wins.
// A generic definition keeps only the markers of that level that carry
// arguments, so a level declaring none of them yields nothing.
func fixtureSources(t *metadata.TypeInfo) ([]metadata.Marker, error) {
	for _, level := range t.Levels() {
		markers := level.MarkersWithRole(metadata.RoleFixtureBuilder)
		if len(markers) == 0 {
			continue
		}
		if t.GenericDefinition {
			if markers = withArguments(markers); len(markers) == 0 {
				return nil, nil
			}
		}
		for _, m := range markers {
			_, plain := m.(FixtureSource)
			_, filtered := m.(FilteredFixtureSource)
			if !plain && !filtered {
				return nil, wrongCapability(m, metadata.RoleFixtureBuilder)
			}
		}
		return tieBreak(markers), nil
	}
	return nil, nil
}

// tieBreak keeps a lone marker, drops argument-less markers when some carry
// arguments, and otherwise keeps all of them
func tieBreak(markers []metadata.Marker) []metadata.Marker {
	if len(markers) <= 1 {
		return markers
	}
	withArgs := withArguments(markers)
	if len(withArgs) == 0 || len(withArgs) == len(markers) {
		return markers
	}
	return withArgs
}

func withArguments(markers []metadata.Marker) []metadata.Marker {
	var kept []metadata.Marker
	for _, m := range markers {
		if hasArguments(m) {
			kept = append(kept, m)
		}
	}
	return kept
}
