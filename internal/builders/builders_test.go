package builders_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gunit/internal/attr"
	"gunit/internal/builders"
	"gunit/internal/domain"
	"gunit/internal/metadata"
)

type Calc struct {
	offset int
}

func NewCalc(offset int) *Calc { return &Calc{offset: offset} }

func (c *Calc) Add(x, y int) error {
	if x+y+c.offset < 0 {
		return errors.New("negative")
	}
	return nil
}

func (c *Calc) Ratio(x float64) {}
func (c *Calc) Plain()          {}
func (c *Calc) Flag(on bool)    {}

type Base struct{}

func (b *Base) Prepare()  {}
func (b *Base) Cleanup()  {}
func (b *Base) BaseTest() {}

type Derived struct {
	Base
}

func (d *Derived) Init()        {}
func (d *Derived) DerivedTest() {}

type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) Push() {}

// shape renders the names below n, one line per node, indented by depth
func shape(n domain.Node) []string {
	var lines []string
	var visit func(n domain.Node, depth int)
	visit = func(n domain.Node, depth int) {
		line := strings.Repeat("  ", depth) + n.Name()
		if n.RunState() == domain.RunStateNotRunnable {
			line += " !"
		}
		lines = append(lines, line)
		if s, ok := n.(*domain.Suite); ok {
			for _, child := range s.Children() {
				visit(child, depth+1)
			}
		}
	}
	visit(n, 0)
	return lines
}

func describeCalc(t *testing.T, opts ...metadata.Option) *metadata.TypeInfo {
	t.Helper()
	info, err := metadata.For[Calc](append([]metadata.Option{metadata.Constructor(NewCalc)}, opts...)...)
	require.NoError(t, err)
	return info
}

func TestFixtureBuilder_CanBuildFrom(t *testing.T) {
	b := builders.NewFixtureBuilder()

	noMarkers := describeCalc(t, metadata.Method("Plain"))
	assert.False(t, b.CanBuildFrom(noMarkers), "no marker anywhere")

	implied := describeCalc(t, metadata.Method("Plain", attr.Test()))
	assert.True(t, b.CanBuildFrom(implied), "a test method implies a fixture")

	explicit := describeCalc(t, metadata.Markers(attr.Fixture(attr.Args(1))))
	assert.True(t, b.CanBuildFrom(explicit))

	abstract, err := metadata.For[Base](metadata.Abstract(), metadata.Markers(attr.Fixture()), metadata.Method("BaseTest", attr.Test()))
	require.NoError(t, err)
	assert.False(t, b.CanBuildFrom(abstract), "abstract types are never fixtures")

	static, err := metadata.For[Base](metadata.Abstract(), metadata.Sealed(), metadata.Method("BaseTest", attr.Test()))
	require.NoError(t, err)
	assert.True(t, b.CanBuildFrom(static), "abstract sealed types hold static tests")
}

func TestFixtureBuilder_GenericDefinitions(t *testing.T) {
	b := builders.NewFixtureBuilder()
	instantiate := func(args []reflect.Type) (*metadata.TypeInfo, error) {
		switch args[0] {
		case reflect.TypeFor[int]():
			return metadata.For[Stack[int]](metadata.Named("Stack"), metadata.Method("Push", attr.Test()))
		case reflect.TypeFor[string]():
			return metadata.For[Stack[string]](metadata.Named("Stack"), metadata.Method("Push", attr.Test()))
		}
		return nil, errors.New("unsupported type argument")
	}

	bare := metadata.Generic("Stack", instantiate, metadata.InPackage("samples"))
	assert.False(t, b.CanBuildFrom(bare), "generic definition without markers")

	argless := metadata.Generic("Stack", instantiate, metadata.InPackage("samples"), metadata.Markers(attr.Fixture()))
	assert.False(t, b.CanBuildFrom(argless), "argument-less markers cannot close a generic definition")

	closed := metadata.Generic("Stack", instantiate, metadata.InPackage("samples"), metadata.Markers(
		attr.Fixture(),
		attr.Fixture(attr.TypeArgsOf[int]()),
		attr.Fixture(attr.TypeArgsOf[string]()),
	))
	require.True(t, b.CanBuildFrom(closed))

	suite := b.BuildFrom(closed, nil)
	assert.Equal(t, domain.KindParameterizedFixture, suite.Kind())
	want := []string{
		"Stack",
		"  Stack[int]",
		"  Stack[string]",
	}
	if diff := cmp.Diff(want, shape(suite)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	single := metadata.Generic("Stack", instantiate, metadata.InPackage("samples"),
		metadata.Markers(attr.Fixture(attr.TypeArgsOf[int]())))
	collapsed := b.BuildFrom(single, nil)
	assert.Equal(t, domain.KindFixture, collapsed.Kind(), "one fixture is not wrapped")
	assert.Equal(t, "Stack[int]", collapsed.Name())

	unsupported := metadata.Generic("Stack", instantiate, metadata.InPackage("samples"),
		metadata.Markers(attr.Fixture(attr.TypeArgsOf[float64]())))
	invalid := b.BuildFrom(unsupported, nil)
	assert.Equal(t, domain.RunStateNotRunnable, invalid.RunState())
	assert.Contains(t, invalid.Reason(), "unsupported type argument")
}

func TestFixtureBuilder_GenericStopsAtFirstDeclaringLevel(t *testing.T) {
	b := builders.NewFixtureBuilder()
	instantiate := func(args []reflect.Type) (*metadata.TypeInfo, error) {
		return metadata.For[Stack[int]](metadata.Named("Stack"), metadata.Method("Push", attr.Test()))
	}
	base, err := metadata.For[Base](metadata.Markers(attr.Fixture(attr.TypeArgsOf[int]())))
	require.NoError(t, err)

	inherits := metadata.Generic("Stack", instantiate, metadata.InPackage("samples"), metadata.Embeds(base))
	assert.True(t, b.CanBuildFrom(inherits), "base markers apply when the definition declares none")

	hides := metadata.Generic("Stack", instantiate, metadata.InPackage("samples"),
		metadata.Embeds(base), metadata.Markers(attr.Fixture()))
	assert.False(t, b.CanBuildFrom(hides), "argument-less markers on the definition hide base markers")
}

func TestFixtureBuilder_TieBreak(t *testing.T) {
	b := builders.NewFixtureBuilder()
	tests := []struct {
		name    string
		markers []metadata.Marker
		want    []string
	}{
		{
			name:    "mixed drops argument-less markers",
			markers: []metadata.Marker{attr.Fixture(), attr.Fixture(attr.Args(1))},
			want:    []string{"Calc(1)"},
		},
		{
			name:    "all with arguments keeps all",
			markers: []metadata.Marker{attr.Fixture(attr.Args(1)), attr.Fixture(attr.Args(2))},
			want:    []string{"Calc", "  Calc(1)", "  Calc(2)"},
		},
		{
			name:    "single marker is used as is",
			markers: []metadata.Marker{attr.Fixture(attr.Args(5))},
			want:    []string{"Calc(5)"},
		},
		{
			name: "source with several variants",
			markers: []metadata.Marker{attr.FixtureSource(
				attr.Fixture(attr.Args(1)),
				attr.Fixture(attr.Args(2), attr.FixtureName("Two")),
			)},
			want: []string{"Calc", "  Calc(1)", "  Two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := describeCalc(t, metadata.Markers(tt.markers...))
			if diff := cmp.Diff(tt.want, shape(b.BuildFrom(info, nil))); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFixtureBuilder_NoArgumentMarkersKeepAll(t *testing.T) {
	info, err := metadata.For[Base](metadata.Markers(attr.Fixture(), attr.Fixture()))
	require.NoError(t, err)

	suite := builders.NewFixtureBuilder().BuildFrom(info, nil)
	assert.Equal(t, domain.KindParameterizedFixture, suite.Kind())
	assert.Len(t, suite.Children(), 2)
}

func TestFixtureBuilder_FirstDeclaringLevelWins(t *testing.T) {
	base, err := metadata.For[Base](
		metadata.Markers(attr.Fixture(attr.Args(1)), attr.Fixture(attr.Args(2))),
		metadata.Method("Prepare", attr.SetUp()),
		metadata.Method("Cleanup", attr.TearDown()),
		metadata.Method("BaseTest", attr.Test()),
	)
	require.NoError(t, err)

	inherits, err := metadata.For[Derived](metadata.Embeds(base), metadata.Constructor(func(n int) *Derived { return &Derived{} }))
	require.NoError(t, err)
	suite := builders.NewFixtureBuilder().BuildFrom(inherits, nil)
	assert.Equal(t, []string{"Derived", "  Derived(1)", "  Derived(2)"}, shape(suite), "base markers apply when the derived level declares none")

	overrides, err := metadata.For[Derived](
		metadata.Embeds(base),
		metadata.Markers(attr.Fixture()),
		metadata.Method("Init", attr.SetUp()),
		metadata.Method("DerivedTest", attr.Test()),
	)
	require.NoError(t, err)
	suite = builders.NewFixtureBuilder().BuildFrom(overrides, nil)
	assert.Equal(t, []string{"Derived"}, shape(suite), "derived markers hide base markers")

	require.Len(t, suite.Lifecycle, 2)
	assert.Equal(t, "Derived", suite.Lifecycle[0].Type.Name)
	assert.Equal(t, "Init", suite.Lifecycle[0].SetUps[0].Name)
	assert.Equal(t, "Base", suite.Lifecycle[1].Type.Name)
	assert.Equal(t, "Cleanup", suite.Lifecycle[1].TearDowns[0].Name)
}

type brokenMarker struct{}

func (brokenMarker) Kind() metadata.Kind { return "Broken" }

func init() {
	metadata.Register("Broken", metadata.RoleFixtureBuilder)
}

func TestFixtureBuilder_ConstructionFailures(t *testing.T) {
	b := builders.NewFixtureBuilder()
	tests := []struct {
		name       string
		marker     metadata.Marker
		wantReason string
	}{
		{
			name: "source returns an error",
			marker: attr.FixtureSourceFunc(func() ([]*attr.FixtureMarker, error) {
				return nil, errors.New("database unavailable")
			}),
			wantReason: "database unavailable",
		},
		{
			name: "source panics",
			marker: attr.FixtureSourceFunc(func() ([]*attr.FixtureMarker, error) {
				panic("source exploded")
			}),
			wantReason: "source exploded",
		},
		{
			name:       "registered role without capability",
			marker:     brokenMarker{},
			wantReason: "does not implement",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := describeCalc(t,
				metadata.Markers(attr.Fixture(attr.Args(1)), tt.marker),
				metadata.Method("Plain", attr.Test()),
			)
			require.True(t, b.CanBuildFrom(info))

			suite := b.BuildFrom(info, nil)
			assert.Equal(t, domain.KindFixture, suite.Kind())
			assert.Equal(t, domain.RunStateNotRunnable, suite.RunState())
			assert.True(t, strings.HasPrefix(suite.Reason(), builders.LoadErrorPrefix))
			assert.Contains(t, suite.Reason(), tt.wantReason)
			assert.Empty(t, suite.Children())
		})
	}
}

func TestFixtureBuilder_InvalidTypes(t *testing.T) {
	b := builders.NewFixtureBuilder()

	// constructor arguments are checked when the fixture is instantiated
	needsArgs := describeCalc(t, metadata.Markers(attr.Fixture()))
	assert.Equal(t, domain.RunStateRunnable, b.BuildFrom(needsArgs, nil).RunState())

	wrongArgs, err := metadata.For[Base](metadata.Markers(attr.Fixture(attr.TypeArgsOf[int]())))
	require.NoError(t, err)
	suite := b.BuildFrom(wrongArgs, nil)
	assert.Equal(t, domain.RunStateNotRunnable, suite.RunState())
	assert.Contains(t, suite.Reason(), "non-generic")

	badSetUp, err := metadata.For[Calc](metadata.Markers(attr.Fixture()), metadata.Method("Ratio", attr.SetUp()))
	require.NoError(t, err)
	suite = b.BuildFrom(badSetUp, nil)
	assert.Equal(t, domain.RunStateNotRunnable, suite.RunState())
	assert.Contains(t, suite.Reason(), "must not have parameters")
}

func TestFixtureBuilder_Modifiers(t *testing.T) {
	info := describeCalc(t, metadata.Markers(
		attr.Fixture(attr.Args(1), attr.FixtureCategory("math")),
		attr.Category("fast"),
		attr.Timeout(time.Second),
		attr.Ignore("flaky"),
	))
	suite := builders.NewFixtureBuilder().BuildFrom(info, nil)

	assert.Equal(t, []string{"fast", "math"}, suite.Properties().Values(domain.PropertyCategory))
	assert.Equal(t, "1s", suite.Properties().Get(domain.PropertyTimeout))
	assert.Equal(t, domain.RunStateIgnored, suite.RunState())
	assert.Equal(t, "flaky", suite.Reason())
}

func methodOf(t *testing.T, info *metadata.TypeInfo, name string) *metadata.MethodInfo {
	t.Helper()
	for _, m := range info.Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %s not described", name)
	return nil
}

func TestMethodBuilder_CanBuildFrom(t *testing.T) {
	info := describeCalc(t,
		metadata.Method("Plain"),
		metadata.Method("Ratio", attr.Case(1.5)),
		metadata.Method("Flag", attr.Test()),
	)
	b := builders.NewMethodBuilder()
	assert.False(t, b.CanBuildFrom(methodOf(t, info, "Plain")))
	assert.True(t, b.CanBuildFrom(methodOf(t, info, "Ratio")))
	assert.True(t, b.CanBuildFrom(methodOf(t, info, "Flag")))
}

func TestMethodBuilder_Combinatorial(t *testing.T) {
	info := describeCalc(t,
		metadata.Method("Add").WithParams(
			metadata.Param("x", attr.Values(1, 2)),
			metadata.Param("y", attr.Values(3, 4)),
		),
	)
	node := builders.NewMethodBuilder().BuildFrom(methodOf(t, info, "Add"), nil)

	want := []string{
		"Add",
		"  Add(1,3)",
		"  Add(1,4)",
		"  Add(2,3)",
		"  Add(2,4)",
	}
	if diff := cmp.Diff(want, shape(node)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	suite := node.(*domain.Suite)
	assert.Equal(t, domain.KindParameterizedMethod, suite.Kind())
	assert.Equal(t, []any{2, 3}, suite.Children()[2].(*domain.TestCase).Arguments)
}

func TestMethodBuilder_Sequential(t *testing.T) {
	info := describeCalc(t,
		metadata.Method("Add", attr.Sequential()).WithParams(
			metadata.Param("x", attr.Values(1, 2, 3)),
			metadata.Param("y", attr.Values(10, 20)),
		),
	)
	node := builders.NewMethodBuilder().BuildFrom(methodOf(t, info, "Add"), nil)

	want := []string{
		"Add",
		"  Add(1,10)",
		"  Add(2,20)",
		"  Add(3,null) !",
	}
	if diff := cmp.Diff(want, shape(node)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestMethodBuilder_Cases(t *testing.T) {
	info := describeCalc(t,
		metadata.Method("Add",
			attr.Case(1, 2),
			attr.Case(int64(3), uint8(4)).Named("Small"),
			attr.Case(1),
			attr.Case("a", 2),
			attr.Case(5, 6).Ignored("later"),
		),
		metadata.Method("Plain", attr.Case(1)),
		metadata.Method("Flag", attr.Test()),
	)
	b := builders.NewMethodBuilder()

	add := b.BuildFrom(methodOf(t, info, "Add"), nil).(*domain.Suite)
	children := add.Children()
	require.Len(t, children, 5)
	assert.Equal(t, "Add(1,2)", children[0].Name())
	assert.Equal(t, domain.RunStateRunnable, children[0].RunState())
	assert.Equal(t, "Small", children[1].Name())
	assert.Equal(t, []any{3, 4}, children[1].(*domain.TestCase).Arguments, "arguments convert to the parameter types")
	assert.Contains(t, children[2].Reason(), "Wrong number of arguments")
	assert.Contains(t, children[3].Reason(), "cannot convert")
	assert.Equal(t, domain.RunStateIgnored, children[4].RunState())

	plain := b.BuildFrom(methodOf(t, info, "Plain"), nil)
	require.True(t, plain.IsSuite(), "stray arguments still produce a method suite")
	assert.Equal(t, "Arguments provided for method with no parameters", plain.(*domain.Suite).Children()[0].Reason())

	flag := b.BuildFrom(methodOf(t, info, "Flag"), nil)
	require.False(t, flag.IsSuite())
	assert.Equal(t, "No arguments were provided", flag.Reason())
}

func TestMethodBuilder_SingleTest(t *testing.T) {
	info := describeCalc(t,
		metadata.Method("Plain", attr.Test().Describe("does nothing"), attr.Category("smoke")),
	)
	node := builders.NewMethodBuilder().BuildFrom(methodOf(t, info, "Plain"), nil)

	tc, ok := node.(*domain.TestCase)
	require.True(t, ok)
	assert.Equal(t, "Plain", tc.Name())
	assert.Empty(t, tc.Arguments)
	assert.Equal(t, domain.RunStateRunnable, tc.RunState())
	assert.Equal(t, "does nothing", tc.Properties().Get(domain.PropertyDescription))
	assert.Equal(t, "smoke", tc.Properties().Get(domain.PropertyCategory))
}

func TestMethodBuilder_EmptyCombinations(t *testing.T) {
	info := describeCalc(t,
		metadata.Method("Add", attr.Combinatorial()).WithParams(
			metadata.Param("x", attr.Values()),
			metadata.Param("y"),
		),
	)
	node := builders.NewMethodBuilder().BuildFrom(methodOf(t, info, "Add"), nil)
	suite, ok := node.(*domain.Suite)
	require.True(t, ok, "a builder on a method with parameters yields a suite even when empty")
	assert.Empty(t, suite.Children())
}

func TestMethodBuilder_BoolValuesAndRanges(t *testing.T) {
	info := describeCalc(t,
		metadata.Method("Flag").WithParams(metadata.Param("on", attr.Values())),
		metadata.Method("Ratio").WithParams(metadata.Param("x", attr.FloatRange(0.5, 1.0, 0.25))),
		metadata.Method("Add").WithParams(
			metadata.Param("x", attr.RangeStep(1, 5, 0)),
			metadata.Param("y", attr.Values(1)),
		),
	)
	b := builders.NewMethodBuilder()

	flag := b.BuildFrom(methodOf(t, info, "Flag"), nil)
	assert.Equal(t, []string{"Flag", "  Flag(true)", "  Flag(false)"}, shape(flag))

	ratio := b.BuildFrom(methodOf(t, info, "Ratio"), nil)
	assert.Equal(t, []string{"Ratio", "  Ratio(0.5)", "  Ratio(0.75)", "  Ratio(1)"}, shape(ratio))

	add := b.BuildFrom(methodOf(t, info, "Add"), nil)
	assert.Equal(t, domain.RunStateNotRunnable, add.RunState())
	assert.Contains(t, add.Reason(), "step must be nonzero")
}
