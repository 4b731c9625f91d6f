package discovery_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gunit/internal/attr"
	"gunit/internal/discovery"
	"gunit/internal/domain"
	"gunit/internal/metadata"
)

type Calc struct{}

func (c *Calc) Add(x, y int) {}
func (c *Calc) Plain()       {}
func (c *Calc) Helper()      {}

type Base struct{}

func (b *Base) Shared()   {}
func (b *Base) BaseOnly() {}

type Derived struct {
	Base
}

func (d *Derived) Own()    {}
func (d *Derived) Shared() {}

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

func sampleTypes(t *testing.T) []*metadata.TypeInfo {
	t.Helper()
	calc, err := metadata.For[Calc](
		metadata.InPackage("samples"),
		metadata.Method("Add", attr.Test()).WithParams(
			metadata.Param("x", attr.Values(1, 2)),
			metadata.Param("y", attr.Values(3)),
		),
		metadata.Method("Plain", attr.Test()),
		metadata.Method("Helper"),
	)
	require.NoError(t, err)

	base, err := metadata.For[Base](
		metadata.InPackage("samples"),
		metadata.Method("Shared", attr.Test()),
		metadata.Method("BaseOnly", attr.Test()),
	)
	require.NoError(t, err)

	derived, err := metadata.For[Derived](
		metadata.InPackage("samples"),
		metadata.Embeds(base),
		metadata.Method("Own", attr.Test()),
		metadata.Method("Shared", attr.Test()),
	)
	require.NoError(t, err)

	other, err := metadata.For[Calc](
		metadata.Named("Other"),
		metadata.InPackage("extra"),
		metadata.Method("Plain", attr.Test()),
	)
	require.NoError(t, err)

	helpers, err := metadata.For[Calc](
		metadata.Named("Helpers"),
		metadata.InPackage("samples"),
		metadata.Method("Helper"),
	)
	require.NoError(t, err)

	return []*metadata.TypeInfo{calc, helpers, derived, other}
}

func TestAssembler_Assemble(t *testing.T) {
	root := discovery.NewAssembler(zap.NewNop()).Assemble("run", sampleTypes(t), nil)

	want := []string{
		"run",
		"  samples",
		"    Calc",
		"      Add",
		"        Add(1,3)",
		"        Add(2,3)",
		"      Plain",
		"    Derived",
		"      Own",
		"      Shared",
		"      BaseOnly",
		"  extra",
		"    Other",
		"      Plain",
	}
	if diff := cmp.Diff(want, shape(root)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, domain.KindAssembly, root.Kind())
	assert.Equal(t, 7, root.TestCaseCount())

	own := root.Children()[0].(*domain.Suite).Children()[1].(*domain.Suite).Children()[0]
	assert.Equal(t, "samples.Derived.Own", own.FullName())
}

func TestAssembler_PreFilter(t *testing.T) {
	root := discovery.NewAssembler(nil).Assemble("run", sampleTypes(t), discovery.NewNameFilter("Plain"))

	want := []string{
		"run",
		"  samples",
		"    Calc",
		"      Plain",
		"  extra",
		"    Other",
		"      Plain",
	}
	if diff := cmp.Diff(want, shape(root)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembler_ParameterizedFixtures(t *testing.T) {
	info, err := metadata.For[Calc](
		metadata.InPackage("samples"),
		metadata.Markers(
			attr.Fixture(attr.FixtureName("Fast")),
			attr.Fixture(attr.FixtureName("Slow")),
		),
		metadata.Method("Plain", attr.Test()),
	)
	require.NoError(t, err)

	fixture := discovery.NewAssembler(nil).BuildFixture(info, nil)
	assert.Equal(t, []string{"Calc", "  Fast", "    Plain", "  Slow", "    Plain"}, shape(fixture))
	assert.Equal(t, "samples.Slow.Plain", fixture.Children()[1].(*domain.Suite).Children()[0].FullName())
}

func TestAssembler_LogsInvalidFixtures(t *testing.T) {
	broken, err := metadata.For[Calc](
		metadata.Named("Broken"),
		metadata.InPackage("samples"),
		metadata.Markers(attr.Fixture()),
		metadata.Method("Add", attr.SetUp()),
		metadata.Method("Plain", attr.Test()),
	)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	root := discovery.NewAssembler(zap.New(core)).Assemble("run", []*metadata.TypeInfo{broken}, nil)

	assert.Equal(t, []string{"run", "  samples", "    Broken !"}, shape(root), "invalid fixtures get no methods")
	entries := logs.FilterMessage("invalid test node").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "samples.Broken", entries[0].ContextMap()["name"])
	assert.Contains(t, entries[0].ContextMap()["reason"], "must not have parameters")
}
