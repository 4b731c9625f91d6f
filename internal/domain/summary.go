package domain

import "time"

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID            string  `json:"run_id"`
	TotalTests       int     `json:"total_tests"`
	PassedTests      int     `json:"passed_tests"`
	FailedTests      int     `json:"failed_tests"`
	ErrorTests       int     `json:"error_tests"`
	WarningTests     int     `json:"warning_tests"`
	SkippedTests     int     `json:"skipped_tests"`
	CancelledTests   int     `json:"cancelled_tests"`
	NotRunnableTests int     `json:"not_runnable_tests"`
	Duration         string  `json:"duration"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Workers          int     `json:"workers"`
	Timestamp        string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []TestFailure   `json:"details"`
}

// Summary counts leaf outcomes
type Summary struct {
	Total       int
	Passed      int
	Failed      int
	Errors      int
	Warnings    int
	Skipped     int
	Cancelled   int
	NotRunnable int
	Assertions  int
}

// Failures returns the number of results counted as failed
func (s Summary) Failures() int {
	return s.Failed + s.Errors + s.NotRunnable
}

// Summarize counts the outcomes of leaf results
func Summarize(results []*Result) Summary {
	var s Summary
	for _, r := range results {
		s.Total++
		s.Assertions += r.AssertionCount()
		switch r.Status() {
		case StatusPassed:
			s.Passed++
		case StatusWarning:
			s.Warnings++
		case StatusFailed:
			s.Failed++
		case StatusError:
			s.Errors++
		case StatusSkipped:
			s.Skipped++
		case StatusCancelled:
			s.Cancelled++
		case StatusNotRunnable:
			s.NotRunnable++
		}
	}
	return s
}

// Meta converts a summary into stored run metadata
func (s Summary) Meta(runID string, duration time.Duration, workers int, at time.Time) TestResultsMeta {
	return TestResultsMeta{
		RunID:            runID,
		TotalTests:       s.Total,
		PassedTests:      s.Passed,
		FailedTests:      s.Failed,
		ErrorTests:       s.Errors,
		WarningTests:     s.Warnings,
		SkippedTests:     s.Skipped,
		CancelledTests:   s.Cancelled,
		NotRunnableTests: s.NotRunnable,
		Duration:         duration.String(),
		DurationSeconds:  duration.Seconds(),
		Workers:          workers,
		Timestamp:        at.Format(time.RFC3339),
	}
}

// Aggregate builds the result tree of root from leaf results keyed by node
// id. Leaves without a result were not selected and are left out.
func Aggregate(root Node, leaves map[string]*Result) *Result {
	switch n := root.(type) {
	case *TestCase:
		return leaves[n.ID()]
	case *Suite:
		return aggregateSuite(n, leaves)
	}
	return nil
}

func aggregateSuite(s *Suite, leaves map[string]*Result) *Result {
	result := NewResult(s)
	switch s.RunState() {
	case RunStateNotRunnable:
		result.MarkNotRunnable(s.Reason(), SiteTest)
		return result
	case RunStateIgnored:
		result.Skip(s.Reason())
	}

	var start, end time.Time
	worst := StatusPassed
	ran, skipped := 0, 0
	for _, child := range s.Children() {
		childResult := Aggregate(child, leaves)
		if childResult == nil {
			continue
		}
		result.AddChild(childResult)
		ran++

		status := childResult.Status()
		if status == StatusSkipped {
			skipped++
		}
		if status.severity() > worst.severity() {
			worst = status
		}
		childStart := childResult.StartTime()
		if !childStart.IsZero() && (start.IsZero() || childStart.Before(start)) {
			start = childStart
		}
		if childEnd := childStart.Add(childResult.Duration()); childEnd.After(end) {
			end = childEnd
		}
	}
	if s.RunState() == RunStateIgnored {
		return result
	}
	if ran == 0 {
		return nil
	}
	result.setTimes(start, end)

	switch {
	case worst.IsFailure():
		result.SetOutcome(StatusFailed, SiteChild, "One or more child tests had errors")
	case worst == StatusWarning:
		result.SetOutcome(StatusWarning, SiteChild, "One or more child tests had warnings")
	case skipped == ran:
		result.SetOutcome(StatusSkipped, SiteChild, "All child tests were skipped")
	default:
		result.SetOutcome(StatusPassed, SiteTest, "")
	}
	return result
}
