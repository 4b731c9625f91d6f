package attr

import (
	"fmt"
	"reflect"

	"gunit/internal/builders"
	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// FixtureOption configures a fixture marker
type FixtureOption func(*builders.FixtureParameters)

// Args sets the constructor arguments of the fixture
func Args(args ...any) FixtureOption {
	return func(p *builders.FixtureParameters) { p.Arguments = args }
}

// TypeArgs closes a generic fixture over the given types
func TypeArgs(types ...reflect.Type) FixtureOption {
	return func(p *builders.FixtureParameters) { p.TypeArgs = types }
}

// TypeArgsOf is TypeArgs for a single type argument
func TypeArgsOf[T any]() FixtureOption {
	return TypeArgs(reflect.TypeFor[T]())
}

// FixtureName overrides the display name of the fixture
func FixtureName(name string) FixtureOption {
	return func(p *builders.FixtureParameters) { p.Name = name }
}

// FixtureCategory adds a category to the fixture
func FixtureCategory(category string) FixtureOption {
	return func(p *builders.FixtureParameters) { p.Categories = append(p.Categories, category) }
}

// IgnoreFixture marks the fixture instance as ignored
func IgnoreFixture(reason string) FixtureOption {
	return func(p *builders.FixtureParameters) { p.IgnoreWith = reason }
}

// FixtureMarker declares a fixture instance, optionally with arguments
type FixtureMarker struct {
	parms builders.FixtureParameters
}

// Fixture declares a fixture
func Fixture(opts ...FixtureOption) *FixtureMarker {
	m := &FixtureMarker{}
	for _, opt := range opts {
		opt(&m.parms)
	}
	return m
}

func (f *FixtureMarker) Kind() metadata.Kind { return KindFixture }

// HasArguments reports whether constructor or type arguments were given
func (f *FixtureMarker) HasArguments() bool {
	return f.parms.HasArguments()
}

// BuildFixtures builds one fixture suite
func (f *FixtureMarker) BuildFixtures(t *metadata.TypeInfo) ([]*domain.Suite, error) {
	parms := f.parms
	return []*domain.Suite{builders.BuildFixture(t, &parms)}, nil
}

// FixtureSourceMarker declares several fixture instances
type FixtureSourceMarker struct {
	variants []*FixtureMarker
	source   func() ([]*FixtureMarker, error)
}

// FixtureSource declares one fixture instance per variant
func FixtureSource(variants ...*FixtureMarker) *FixtureSourceMarker {
	return &FixtureSourceMarker{variants: variants}
}

// FixtureSourceFunc declares fixture instances computed at discovery time
func FixtureSourceFunc(source func() ([]*FixtureMarker, error)) *FixtureSourceMarker {
	return &FixtureSourceMarker{source: source}
}

func (f *FixtureSourceMarker) Kind() metadata.Kind { return KindFixtureSource }

// HasArguments is always true: a source exists to supply arguments
func (f *FixtureSourceMarker) HasArguments() bool {
	return true
}

// BuildFixtures builds one fixture suite per variant
func (f *FixtureSourceMarker) BuildFixtures(t *metadata.TypeInfo) ([]*domain.Suite, error) {
	variants := f.variants
	if f.source != nil {
		computed, err := f.source()
		if err != nil {
			return nil, fmt.Errorf("fixture source for %s: %w", t.Name, err)
		}
		variants = append(append([]*FixtureMarker(nil), variants...), computed...)
	}

	suites := make([]*domain.Suite, 0, len(variants))
	for _, variant := range variants {
		built, err := variant.BuildFixtures(t)
		if err != nil {
			return nil, err
		}
		suites = append(suites, built...)
	}
	return suites, nil
}
