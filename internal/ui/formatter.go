package ui

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"gunit/internal/domain"
)

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
	gray   = color.New(color.FgHiBlack)
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// PrintMetaStats displays the statistics of a stored run followed by the
// tree of failures
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                    Test Execution Statistics                  ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	rows := []struct {
		label string
		value any
		c     *color.Color
	}{
		{"Run ID", meta.RunID, white},
		{"Total Tests", meta.TotalTests, white},
		{"Passed", meta.PassedTests, green},
		{"Failed", meta.FailedTests, red},
		{"Errors", meta.ErrorTests, red},
		{"Not Runnable", meta.NotRunnableTests, red},
		{"Warnings", meta.WarningTests, yellow},
		{"Skipped", meta.SkippedTests, gray},
		{"Cancelled", meta.CancelledTests, gray},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", meta.Workers, white},
		{"Timestamp", meta.Timestamp, white},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬──────────────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-36v", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼──────────────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴──────────────────────────────────────┘")

	fmt.Fprintln(f.out)
	failed := meta.FailedTests + meta.ErrorTests + meta.NotRunnableTests
	if failed == 0 {
		green.Fprintln(f.out, "✓ All tests passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d of %d test(s) failed\n", failed, meta.TotalTests)
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output.Details)
}

// printFailedTestsTree prints failures grouped by fixture
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	groups := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		key := failure.Fixture
		if key == "" {
			key = "(no fixture)"
		}
		groups[key] = append(groups[key], failure)
	}

	var fixtures []string
	for key := range groups {
		fixtures = append(fixtures, key)
	}
	sort.Strings(fixtures)

	for i, fixture := range fixtures {
		lastFixture := i == len(fixtures)-1
		yellow.Fprintf(f.out, "%s%s\n", connector(lastFixture), fixture)

		cases := groups[fixture]
		for j, failure := range cases {
			prefix := childPrefix(lastFixture) + connector(j == len(cases)-1)
			status := red
			if failure.Resolved {
				status = gray
			}
			status.Fprintf(f.out, "%s%s", prefix, failure.TestName)
			gray.Fprintf(f.out, " [%s]", failure.Status)
			if failure.File != "" && failure.Line > 0 {
				gray.Fprintf(f.out, " %s:%d", failure.File, failure.Line)
			}
			fmt.Fprintln(f.out)
		}
	}
}

// TreeOptions controls PrintTree
type TreeOptions struct {
	// ShowTestCases lists test cases below their fixtures
	ShowTestCases bool
	// Failed holds full names that failed in the last run; they are marked [F]
	Failed map[string]struct{}
	// Selected restricts the output to these test case ids when not nil
	Selected map[string]bool
}

// PrintTree prints the discovered test tree below root
func (f *Formatter) PrintTree(root domain.Node, opts TreeOptions) {
	count := CountTestCases(root, opts.Selected)
	if opts.ShowTestCases {
		green.Fprintf(f.out, "Found %d test case(s):\n\n", count)
	} else {
		green.Fprintf(f.out, "Found %d fixture(s) with %d test case(s):\n\n", countFixtures(root, opts.Selected), count)
	}

	s, ok := root.(*domain.Suite)
	if !ok {
		f.printNode(root, "", true, opts)
		return
	}
	children := visibleChildren(s, opts)
	for i, child := range children {
		f.printNode(child, "", i == len(children)-1, opts)
	}
}

func (f *Formatter) printNode(n domain.Node, prefix string, last bool, opts TreeOptions) {
	label := n.Name()
	c := cyan
	switch node := n.(type) {
	case *domain.TestCase:
		c = white
	case *domain.Suite:
		if node.Kind() == domain.KindFixture || node.Kind() == domain.KindParameterizedFixture {
			c = yellow
		}
	}
	switch n.RunState() {
	case domain.RunStateNotRunnable:
		c = red
		label += " (" + n.Reason() + ")"
	case domain.RunStateIgnored:
		c = gray
		label += " (ignored: " + n.Reason() + ")"
	}

	c.Fprintf(f.out, "%s%s%s", prefix, connector(last), label)
	if _, failed := opts.Failed[n.FullName()]; failed {
		fmt.Fprint(f.out, " "+red.Sprint("[F]"))
	}
	fmt.Fprintln(f.out)

	s, ok := n.(*domain.Suite)
	if !ok {
		return
	}
	if !opts.ShowTestCases && s.Kind() == domain.KindFixture {
		return
	}
	children := visibleChildren(s, opts)
	for i, child := range children {
		f.printNode(child, prefix+childPrefix(last), i == len(children)-1, opts)
	}
}

func visibleChildren(s *domain.Suite, opts TreeOptions) []domain.Node {
	if opts.Selected == nil {
		return s.Children()
	}
	var visible []domain.Node
	for _, child := range s.Children() {
		if CountTestCases(child, opts.Selected) > 0 {
			visible = append(visible, child)
		}
	}
	return visible
}

// CountTestCases returns the number of test cases below root, restricted to
// selected ids when selected is not nil
func CountTestCases(root domain.Node, selected map[string]bool) int {
	if selected == nil {
		return root.TestCaseCount()
	}
	count := 0
	for _, leaf := range domain.Leaves(root) {
		if selected[leaf.ID()] {
			count++
		}
	}
	return count
}

func countFixtures(root domain.Node, selected map[string]bool) int {
	count := 0
	domain.Walk(root, func(n domain.Node) bool {
		s, ok := n.(*domain.Suite)
		if ok && s.Kind() == domain.KindFixture {
			if CountTestCases(s, selected) > 0 {
				count++
			}
			return false
		}
		return true
	})
	return count
}

func connector(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func childPrefix(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}
