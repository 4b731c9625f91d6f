package parser

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

func buildCase() (*domain.Suite, *domain.TestCase) {
	calc := &metadata.TypeInfo{Name: "Calc", Package: "samples"}
	fixture := domain.NewFixtureSuite(calc, nil)
	tc := domain.NewTestCase(&metadata.MethodInfo{Name: "Add", Owner: calc}, "Add", nil)
	fixture.Add(tc)
	return fixture, tc
}

func TestLocation(t *testing.T) {
	tests := []struct {
		name  string
		stack []string
		file  string
		line  int
	}{
		{
			name: "skips framework frames",
			stack: []string{
				"gunit/internal/execution.(*T).record",
				"\t/src/gunit/internal/execution/context.go:179",
				"github.com/stretchr/testify/assert.Fail",
				"\t/go/pkg/mod/testify/assert/assertions.go:333",
				"example.com/app.(*CalcTests).Add",
				"\t/src/app/calc_test.go:42",
				"runtime.goexit",
				"\t/usr/local/go/src/runtime/asm_amd64.s:1700",
			},
			file: "/src/app/calc_test.go",
			line: 42,
		},
		{
			name:  "only framework frames",
			stack: []string{"runtime.goexit", "\t/usr/local/go/src/runtime/asm_amd64.s:1700"},
		},
		{
			name:  "malformed position",
			stack: []string{"example.com/app.Fn", "\t/src/app/fn.go"},
		},
		{
			name: "empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, line := Location(tt.stack)
			assert.Equal(t, tt.file, file)
			assert.Equal(t, tt.line, line)
		})
	}
}

func TestParseFailure(t *testing.T) {
	_, tc := buildCase()
	r := domain.NewResult(tc)
	r.Start()
	r.Logf("computing")
	r.RecordException(errors.New("expected 3, got 4"))
	r.Finish()

	failures := NewResultParser().ParseFailure(r)
	require.Len(t, failures, 1)
	f := failures[0]
	assert.Equal(t, tc.ID(), f.ID)
	assert.Equal(t, "Add", f.TestName)
	assert.Equal(t, "samples.Calc.Add", f.FullName)
	assert.Equal(t, "samples.Calc", f.Fixture)
	assert.Equal(t, domain.StatusFailed, f.Status)
	assert.Equal(t, domain.SiteTest, f.Site)
	assert.Equal(t, "expected 3, got 4", f.Message)
	assert.Equal(t, "computing", f.ErrorDetails)
	assert.True(t, strings.HasSuffix(f.File, "result_test.go"), f.File)
	assert.Positive(t, f.Line)
	assert.NotEmpty(t, f.StackTrace)
}

func TestParseSkipsPassedAndChildSites(t *testing.T) {
	fixture, tc := buildCase()
	passed := domain.NewResult(tc)
	passed.Start()
	passed.Finish()

	leaf := domain.NewResult(tc)
	leaf.MarkNotRunnable("No arguments were provided", domain.SiteTest)
	suite := domain.NewResult(fixture)
	suite.AddChild(leaf)
	suite.SetOutcome(domain.StatusFailed, domain.SiteChild, "One or more child tests had errors")

	var p Parser = NewResultParser()
	failures := p.Parse([]*domain.Result{passed, suite, nil})
	require.Len(t, failures, 1)
	assert.Equal(t, domain.StatusNotRunnable, failures[0].Status)
	assert.Equal(t, "No arguments were provided", failures[0].Message)
	assert.Empty(t, failures[0].File)
	assert.Empty(t, failures[0].StackTrace)
}
