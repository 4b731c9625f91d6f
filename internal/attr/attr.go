// Package attr provides the markers attached to fixture types, methods and
// parameters.
package attr

import (
	"gunit/internal/builders"
	"gunit/internal/metadata"
)

// Marker kinds
const (
	KindFixture       metadata.Kind = "Fixture"
	KindFixtureSource metadata.Kind = "FixtureSource"
	KindTest          metadata.Kind = "Test"
	KindCase          metadata.Kind = "Case"
	KindValues        metadata.Kind = "Values"
	KindRange         metadata.Kind = "Range"
	KindSetUp         metadata.Kind = "SetUp"
	KindTearDown      metadata.Kind = "TearDown"
	KindCategory      metadata.Kind = "Category"
	KindDescription   metadata.Kind = "Description"
	KindIgnore        metadata.Kind = "Ignore"
	KindTimeout       metadata.Kind = "Timeout"

	KindCombinatorial = builders.KindCombinatorial
	KindSequential    = builders.KindSequential
)

func init() {
	metadata.Register(KindFixture, metadata.RoleFixtureBuilder)
	metadata.Register(KindFixtureSource, metadata.RoleFixtureBuilder)
	metadata.Register(KindTest, metadata.RoleSimpleTestBuilder|metadata.RoleImplyFixture)
	metadata.Register(KindCase, metadata.RoleTestBuilder|metadata.RoleImplyFixture)
	metadata.Register(KindValues, metadata.RoleParameterDataSource)
	metadata.Register(KindRange, metadata.RoleParameterDataSource)
	metadata.Register(KindSetUp, metadata.RoleSetUp)
	metadata.Register(KindTearDown, metadata.RoleTearDown)
	metadata.Register(KindCategory, metadata.RoleApplyToTest)
	metadata.Register(KindDescription, metadata.RoleApplyToTest)
	metadata.Register(KindIgnore, metadata.RoleApplyToTest)
	metadata.Register(KindTimeout, metadata.RoleApplyToTest)
}

// Combinatorial generates every combination of parameter values
func Combinatorial() builders.Combinatorial {
	return builders.Combinatorial{}
}

// Sequential pairs parameter values by position
func Sequential() builders.Sequential {
	return builders.Sequential{}
}

// SetUpMarker flags a method run before every test of the fixture
type SetUpMarker struct{}

func (SetUpMarker) Kind() metadata.Kind { return KindSetUp }

// SetUp flags a setup method
func SetUp() SetUpMarker {
	return SetUpMarker{}
}

// TearDownMarker flags a method run after every test of the fixture
type TearDownMarker struct{}

func (TearDownMarker) Kind() metadata.Kind { return KindTearDown }

// TearDown flags a teardown method
func TearDown() TearDownMarker {
	return TearDownMarker{}
}
