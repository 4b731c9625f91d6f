package builders

import (
	"fmt"
	"reflect"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// FixtureParameters carries the arguments of one fixture instance
type FixtureParameters struct {
	Arguments  []any
	TypeArgs   []reflect.Type
	Name       string
	Categories []string
	IgnoreWith string
}

// HasArguments reports whether constructor or type arguments are present
func (p *FixtureParameters) HasArguments() bool {
	return p != nil && (len(p.Arguments) > 0 || len(p.TypeArgs) > 0)
}

// BuildFixture creates the fixture suite for t with optional parameters.
// Problems with the type produce an invalid suite.
func BuildFixture(t *metadata.TypeInfo, parms *FixtureParameters) *domain.Suite {
	var args []any
	if parms != nil {
		args = parms.Arguments
		if len(parms.TypeArgs) > 0 {
			if !t.GenericDefinition {
				suite := domain.NewFixtureSuite(t, args)
				suite.MakeInvalid(fmt.Sprintf("Type arguments were provided for non-generic fixture %s", t.FullName()))
				return suite
			}
			instantiated, err := t.Instantiate(parms.TypeArgs)
			if err != nil {
				suite := domain.NewFixtureSuite(t.WithTypeArgs(parms.TypeArgs), args)
				suite.MakeInvalid(fmt.Sprintf("Unable to instantiate generic fixture: %v", err))
				return suite
			}
			t = instantiated
		}
	}

	suite := domain.NewFixtureSuite(t, args)
	if parms != nil && parms.Name != "" {
		suite = domain.NewSuite(domain.KindFixture, parms.Name, qualify(t, parms.Name))
		suite.Type = t
		suite.Arguments = args
	}

	if reason := checkFixtureType(t); reason != "" {
		suite.MakeInvalid(reason)
		return suite
	}

	levels := t.Levels()
	for i := len(levels) - 1; i >= 0; i-- {
		applyModifiers(levels[i].MarkersWithRole(metadata.RoleApplyToTest), suite)
	}

	lifecycle, err := resolveLifecycle(t)
	if err != nil {
		suite.MakeInvalid(err.Error())
		return suite
	}
	suite.Lifecycle = lifecycle

	if parms != nil {
		for _, category := range parms.Categories {
			suite.Properties().Add(domain.PropertyCategory, category)
		}
		if parms.IgnoreWith != "" {
			suite.Ignore(parms.IgnoreWith)
		}
	}
	return suite
}

func checkFixtureType(t *metadata.TypeInfo) string {
	switch {
	case t.GenericDefinition:
		return "Fixture type contains generic parameters. You must provide type arguments."
	case t.Abstract && !t.Sealed:
		return "Fixture is an abstract type"
	case !t.Abstract && !t.Constructible():
		return "No suitable constructor was found"
	}
	return ""
}

// resolveLifecycle collects setup and teardown methods per level, derived first
func resolveLifecycle(t *metadata.TypeInfo) ([]domain.LifecycleLevel, error) {
	var levels []domain.LifecycleLevel
	for _, level := range t.Levels() {
		lifecycle := domain.LifecycleLevel{Type: level}
		for _, m := range level.Methods {
			isSetUp := m.IsDefined(metadata.RoleSetUp)
			isTearDown := m.IsDefined(metadata.RoleTearDown)
			if (isSetUp || isTearDown) && len(m.Params) > 0 {
				return nil, fmt.Errorf("lifecycle method %s must not have parameters", m.FullName())
			}
			if isSetUp {
				lifecycle.SetUps = append(lifecycle.SetUps, m)
			}
			if isTearDown {
				lifecycle.TearDowns = append(lifecycle.TearDowns, m)
			}
		}
		if lifecycle.HasMethods() {
			levels = append(levels, lifecycle)
		}
	}
	return levels, nil
}

func qualify(t *metadata.TypeInfo, name string) string {
	if t.Package == "" {
		return name
	}
	return t.Package + "." + name
}
