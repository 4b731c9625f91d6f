package parser

import (
	"strconv"
	"strings"

	"gunit/internal/domain"
)

// Frames from these packages belong to the framework or the runtime and are
// skipped when locating the failing line.
var frameworkPrefixes = []string{
	"gunit/internal/execution.",
	"gunit/internal/domain.",
	"gunit/internal/metadata.",
	"gunit.",
	"runtime.",
	"reflect.",
	"testing.",
	"github.com/stretchr/testify/",
	"github.com/pkg/errors.",
}

// ResultParser turns failed results into stored failures
type ResultParser struct{}

var _ Parser = (*ResultParser)(nil)

// NewResultParser creates a new ResultParser
func NewResultParser() *ResultParser {
	return &ResultParser{}
}

// Parse collects the failures of every result, walking suite results down
// to their children
func (p *ResultParser) Parse(results []*domain.Result) []domain.TestFailure {
	var failures []domain.TestFailure
	for _, r := range results {
		failures = append(failures, p.ParseFailure(r)...)
	}
	return failures
}

// ParseFailure returns the failure recorded on result and on its children.
// A suite that failed only because of a child is not reported itself.
func (p *ResultParser) ParseFailure(result *domain.Result) []domain.TestFailure {
	if result == nil {
		return nil
	}
	var failures []domain.TestFailure
	if result.Status().IsFailure() && result.Site() != domain.SiteChild {
		failures = append(failures, p.parseFailureCase(result))
	}
	for _, child := range result.Children() {
		failures = append(failures, p.ParseFailure(child)...)
	}
	return failures
}

func (p *ResultParser) parseFailureCase(r *domain.Result) domain.TestFailure {
	n := r.Node()
	failure := domain.TestFailure{
		ID:           n.ID(),
		TestName:     n.Name(),
		FullName:     n.FullName(),
		Status:       r.Status(),
		Site:         r.Site(),
		ErrorDetails: strings.TrimRight(r.Output(), "\n"),
		Message:      r.Message(),
		StackTrace:   []string{},
	}
	if fixture := domain.FixtureOf(n); fixture != nil {
		failure.Fixture = fixture.FullName()
	}

	for _, line := range strings.Split(r.StackTrace(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		failure.StackTrace = append(failure.StackTrace, line)
	}
	failure.File, failure.Line = Location(failure.StackTrace)
	return failure
}

// Location finds the first frame outside the framework in a stack rendered
// by github.com/pkg/errors, where each function line is followed by a
// tab-indented file:line
func Location(stack []string) (file string, line int) {
	for i := 0; i+1 < len(stack); i++ {
		fn := strings.TrimSpace(stack[i])
		pos := stack[i+1]
		if strings.HasPrefix(fn, "/") || !strings.HasPrefix(pos, "\t") || isFramework(fn) {
			continue
		}
		if f, l, ok := splitPosition(strings.TrimSpace(pos)); ok {
			return f, l
		}
	}
	return "", 0
}

func isFramework(fn string) bool {
	for _, prefix := range frameworkPrefixes {
		if strings.HasPrefix(fn, prefix) {
			return true
		}
	}
	return false
}

func splitPosition(pos string) (string, int, bool) {
	idx := strings.LastIndex(pos, ":")
	if idx <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(pos[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return pos[:idx], n, true
}
