package discovery

import (
	"go.uber.org/zap"

	"gunit/internal/builders"
	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// Assembler composes fixture and method builder output into the test tree
type Assembler struct {
	fixtures *builders.FixtureBuilder
	methods  *builders.MethodBuilder
	logger   *zap.Logger
}

// NewAssembler creates a new Assembler
func NewAssembler(logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		fixtures: builders.NewFixtureBuilder(),
		methods:  builders.NewMethodBuilder(),
		logger:   logger,
	}
}

// Assemble builds the tree rooted at an assembly suite with one namespace
// suite per package, in type registration order
func (a *Assembler) Assemble(name string, types []*metadata.TypeInfo, filter PreFilter) *domain.Suite {
	if filter == nil {
		filter = builders.EmptyPreFilter
	}
	root := domain.NewSuite(domain.KindAssembly, name, name)
	namespaces := make(map[string]*domain.Suite)

	for _, t := range types {
		if !a.fixtures.CanBuildFrom(t) || !filter.IsMatch(t, nil) {
			continue
		}
		fixture, filtered := a.buildFixture(t, filter)
		if filtered && fixture.Valid() && fixture.TestCaseCount() == 0 {
			continue
		}
		a.logInvalid(fixture)

		if t.Package == "" {
			root.Add(fixture)
			continue
		}
		ns, ok := namespaces[t.Package]
		if !ok {
			ns = domain.NewSuite(domain.KindNamespace, t.Package, t.Package)
			namespaces[t.Package] = ns
			root.Add(ns)
		}
		ns.Add(fixture)
	}

	a.logger.Debug("assembled test tree",
		zap.String("root", name),
		zap.Int("fixtures", len(types)),
		zap.Int("test_cases", root.TestCaseCount()),
	)
	return root
}

// BuildFixture builds the fixture suite of t including its test methods
func (a *Assembler) BuildFixture(t *metadata.TypeInfo, filter PreFilter) *domain.Suite {
	if filter == nil {
		filter = builders.EmptyPreFilter
	}
	fixture, _ := a.buildFixture(t, filter)
	return fixture
}

func (a *Assembler) buildFixture(t *metadata.TypeInfo, filter PreFilter) (*domain.Suite, bool) {
	fixture := a.fixtures.BuildFrom(t, filter)
	return fixture, a.Populate(fixture, filter)
}

// Populate adds the test methods of every valid fixture at or below suite.
// It reports whether the filter excluded any method.
func (a *Assembler) Populate(suite *domain.Suite, filter PreFilter) bool {
	filtered := false
	switch suite.Kind() {
	case domain.KindParameterizedFixture:
		for _, child := range suite.Children() {
			if fixture, ok := child.(*domain.Suite); ok {
				if a.Populate(fixture, filter) {
					filtered = true
				}
			}
		}
	case domain.KindFixture:
		if !suite.Valid() || suite.Type == nil {
			return false
		}
		for _, m := range suite.Type.AllMethods() {
			if !a.methods.CanBuildFrom(m) {
				continue
			}
			if !filter.IsMatch(suite.Type, m) {
				filtered = true
				continue
			}
			suite.Add(a.methods.BuildFrom(m, suite))
		}
	}
	return filtered
}

func (a *Assembler) logInvalid(root domain.Node) {
	domain.Walk(root, func(n domain.Node) bool {
		if n.RunState() != domain.RunStateNotRunnable {
			return true
		}
		a.logger.Warn("invalid test node",
			zap.String("id", n.ID()),
			zap.String("name", n.FullName()),
			zap.String("reason", n.Reason()),
		)
		return false
	})
}
