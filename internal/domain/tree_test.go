package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gunit/internal/metadata"
)

func buildTree() (*Suite, *Suite, *TestCase, *TestCase) {
	fixtureType := &metadata.TypeInfo{Name: "Calc", Package: "samples"}
	method := &metadata.MethodInfo{Name: "Add", Owner: fixtureType}

	root := NewSuite(KindAssembly, "gunit", "gunit")
	ns := NewSuite(KindNamespace, "samples", "samples")
	fixture := NewFixtureSuite(fixtureType, []any{1, "x"})
	methodSuite := NewParameterizedMethodSuite(method)
	first := NewTestCase(method, "Add(1,2)", []any{1, 2})
	second := NewTestCase(method, "Add(3,4)", []any{3, 4})

	root.Add(ns)
	ns.Add(fixture)
	fixture.Add(methodSuite)
	methodSuite.Add(first)
	methodSuite.Add(second)
	return root, methodSuite, first, second
}

func TestTree_Names(t *testing.T) {
	root, methodSuite, first, _ := buildTree()

	assert.Equal(t, `samples.Calc(1,"x")`, FixtureOf(first).FullName())
	assert.Equal(t, `samples.Calc(1,"x").Add`, methodSuite.FullName())
	assert.Equal(t, `samples.Calc(1,"x").Add(1,2)`, first.FullName())
	assert.Equal(t, 2, root.TestCaseCount())
	assert.Same(t, methodSuite, first.Parent())
}

func TestTree_Walk(t *testing.T) {
	root, methodSuite, first, second := buildTree()

	assert.Equal(t, []*TestCase{first, second}, Leaves(root))
	assert.Same(t, first, Find(root, first.ID()))
	assert.Nil(t, Find(root, "missing"))
	assert.Len(t, Ancestors(first), 4)

	var visited []string
	Walk(root, func(n Node) bool {
		visited = append(visited, n.Name())
		return n != Node(methodSuite)
	})
	assert.Equal(t, []string{"gunit", "samples", `Calc(1,"x")`, "Add"}, visited)
}

func TestTree_RunState(t *testing.T) {
	root, methodSuite, first, second := buildTree()

	methodSuite.Ignore("not today")
	state, reason := EffectiveRunState(first)
	assert.Equal(t, RunStateIgnored, state)
	assert.Equal(t, "not today", reason)

	second.MakeInvalid("bad arguments")
	second.Ignore("ignored")
	assert.Equal(t, RunStateNotRunnable, second.RunState(), "invalid is terminal")

	root.MakeInvalid("broken")
	state, reason = EffectiveRunState(first)
	assert.Equal(t, RunStateNotRunnable, state)
	assert.Equal(t, "broken", reason)
}

func TestProperties(t *testing.T) {
	p := NewProperties()
	p.Add(PropertyCategory, "fast")
	p.Add(PropertyCategory, "db")
	p.Set(PropertyTimeout, "1s")

	assert.Equal(t, []string{PropertyCategory, PropertyTimeout}, p.Keys())
	assert.Equal(t, []string{"fast", "db"}, p.Values(PropertyCategory))
	assert.Equal(t, "fast", p.Get(PropertyCategory))
	assert.True(t, p.Has(PropertyTimeout))
	assert.Equal(t, "", p.Get("missing"))
}

func TestAggregate(t *testing.T) {
	root, _, first, second := buildTree()

	passed := NewResult(first)
	passed.Start()
	passed.Finish()
	failed := NewResult(second)
	failed.Start()
	failed.RecordException(assertErr("nope"))
	failed.Finish()

	result := Aggregate(root, map[string]*Result{first.ID(): passed, second.ID(): failed})
	require.NotNil(t, result)
	assert.Equal(t, StatusFailed, result.Status())
	assert.Equal(t, SiteChild, result.Site())

	onlyPassed := Aggregate(root, map[string]*Result{first.ID(): passed})
	require.NotNil(t, onlyPassed)
	assert.Equal(t, StatusPassed, onlyPassed.Status())

	assert.Nil(t, Aggregate(root, map[string]*Result{}))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^0-\d{4,}$`, a)
}
