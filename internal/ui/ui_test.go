package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

func init() {
	color.NoColor = true
}

func sampleTree() (*domain.Suite, *domain.TestCase, *domain.TestCase) {
	calc := &metadata.TypeInfo{Name: "Calc", Package: "samples"}
	root := domain.NewSuite(domain.KindAssembly, "gunit", "gunit")
	ns := domain.NewSuite(domain.KindNamespace, "samples", "samples")
	fixture := domain.NewFixtureSuite(calc, nil)
	add := domain.NewTestCase(&metadata.MethodInfo{Name: "Add", Owner: calc}, "Add", nil)
	sub := domain.NewTestCase(&metadata.MethodInfo{Name: "Sub", Owner: calc}, "Sub", nil)
	sub.Ignore("later")
	root.Add(ns)
	ns.Add(fixture)
	fixture.Add(add)
	fixture.Add(sub)
	return root, add, sub
}

func TestPrintTree(t *testing.T) {
	root, add, _ := sampleTree()

	var buf bytes.Buffer
	NewFormatter(&buf).PrintTree(root, TreeOptions{
		ShowTestCases: true,
		Failed:        map[string]struct{}{"samples.Calc.Add": {}},
	})
	want := "Found 2 test case(s):\n\n" +
		"└── samples\n" +
		"    └── Calc\n" +
		"        ├── Add [F]\n" +
		"        └── Sub (ignored: later)\n"
	assert.Equal(t, want, buf.String())

	buf.Reset()
	NewFormatter(&buf).PrintTree(root, TreeOptions{Selected: map[string]bool{add.ID(): true}})
	want = "Found 1 fixture(s) with 1 test case(s):\n\n" +
		"└── samples\n" +
		"    └── Calc\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintMetaStats(t *testing.T) {
	output := &domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{RunID: "run-1", TotalTests: 3, PassedTests: 1, FailedTests: 1, ErrorTests: 1},
		Details: []domain.TestFailure{
			{TestName: "Add", Fixture: "samples.Calc", Status: domain.StatusFailed, File: "/src/calc.go", Line: 7},
			{TestName: "Div", Fixture: "samples.Calc", Status: domain.StatusError},
		},
	}

	var buf bytes.Buffer
	NewFormatter(&buf).PrintMetaStats(output)
	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "✗ 2 of 3 test(s) failed")
	assert.Contains(t, out, "└── samples.Calc\n")
	assert.Contains(t, out, "    ├── Add [Failed] /src/calc.go:7\n")
	assert.Contains(t, out, "    └── Div [Error]\n")

	buf.Reset()
	NewFormatter(&buf).PrintMetaStats(&domain.TestResultsOutput{Meta: domain.TestResultsMeta{TotalTests: 2, PassedTests: 2}})
	assert.Contains(t, buf.String(), "✓ All tests passed!")
}

func TestFailureFormatting(t *testing.T) {
	failure := domain.TestFailure{
		TestName:   "Add[1]",
		FullName:   "samples.Calc.Add[1]",
		Fixture:    "samples.Calc",
		Status:     domain.StatusFailed,
		Site:       domain.SiteTest,
		File:       "/src/calc.go",
		Line:       7,
		Message:    "expected 3",
		StackTrace: []string{"samples.(*Calc).Add", "\t/src/calc.go:7"},
	}

	details := formatFailureDetails(failure)
	assert.Contains(t, details, "Location: /src/calc.go:7")
	assert.Contains(t, details, "samples.Calc.Add[1[]")

	plain := formatFailurePlain(failure)
	assert.Equal(t, "Failed: samples.Calc.Add[1]\n/src/calc.go:7\n\nexpected 3\n\nsamples.(*Calc).Add\n\t/src/calc.go:7\n", plain)

	assert.Contains(t, formatFailureStats(domain.TestFailure{}, 4), "Unknown fixture")
	assert.Contains(t, formatFailureStats(domain.TestFailure{}, 4), "Test 4")
}

func TestToggleResolved(t *testing.T) {
	results := &domain.TestResultsOutput{Details: []domain.TestFailure{{TestName: "A"}, {TestName: "B"}}}
	toggleResolved(results, 1)
	assert.Equal(t, 1, countUnresolved(results.Details))
	assert.Contains(t, listItemText(results.Details[1], 1), "✓")
	toggleResolved(results, 1)
	assert.Equal(t, 2, countUnresolved(results.Details))
}
