package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Status is the outcome of a node
type Status string

const (
	StatusPending     Status = "Pending"
	StatusRunning     Status = "Running"
	StatusPassed      Status = "Passed"
	StatusWarning     Status = "Warning"
	StatusFailed      Status = "Failed"
	StatusError       Status = "Error"
	StatusCancelled   Status = "Cancelled"
	StatusSkipped     Status = "Skipped"
	StatusNotRunnable Status = "NotRunnable"
)

// IsFailure reports whether the status counts as a failed test
func (s Status) IsFailure() bool {
	return s == StatusFailed || s == StatusError || s == StatusNotRunnable
}

func (s Status) severity() int {
	switch s {
	case StatusWarning:
		return 1
	case StatusFailed:
		return 2
	case StatusError, StatusNotRunnable:
		return 3
	}
	return 0
}

// Site is the phase a failure was recorded in
type Site string

const (
	SiteTest     Site = "Test"
	SiteSetUp    Site = "SetUp"
	SiteTearDown Site = "TearDown"
	SiteParent   Site = "Parent"
	SiteChild    Site = "Child"
)

// AssertionStatus is the outcome of a single assertion
type AssertionStatus string

const (
	AssertionPassed  AssertionStatus = "Passed"
	AssertionWarning AssertionStatus = "Warning"
	AssertionFailed  AssertionStatus = "Failed"
	AssertionError   AssertionStatus = "Error"
)

func (s AssertionStatus) status() Status {
	switch s {
	case AssertionWarning:
		return StatusWarning
	case AssertionFailed:
		return StatusFailed
	case AssertionError:
		return StatusError
	}
	return StatusPassed
}

// AssertionRecord is one assertion outcome recorded during an invocation
type AssertionRecord struct {
	Status     AssertionStatus
	Message    string
	StackTrace string
}

// ErrFailNow signals that a test body stopped after recording a failure
var ErrFailNow = errors.New("test stopped after failure")

// PanicError wraps a value recovered from a panic
type PanicError struct {
	Value any
	cause error
}

// NewPanicError captures a recovered panic value with the current stack
func NewPanicError(value any) *PanicError {
	return &PanicError{Value: value, cause: errors.Errorf("panic: %v", value)}
}

func (e *PanicError) Error() string { return e.cause.Error() }

// Unwrap returns the stack carrying cause
func (e *PanicError) Unwrap() error { return e.cause }

// Format delegates to the cause so %+v prints the panic stack
func (e *PanicError) Format(s fmt.State, verb rune) {
	if f, ok := e.cause.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	fmt.Fprint(s, e.cause.Error())
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// StackOf renders the recorded stack of err, if any
func StackOf(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", st.StackTrace()), "\n")
}

// Result collects the outcome of one node. Safe for concurrent use.
type Result struct {
	mu            sync.Mutex
	node          Node
	status        Status
	site          Site
	message       string
	stackTrace    string
	assertions    []AssertionRecord
	errs          []error
	tearDown      []string
	tearDownStack []string
	cancelled     bool
	cancelReason  string
	output        strings.Builder
	startTime     time.Time
	endTime       time.Time
	children      []*Result
}

// NewResult creates a pending result for n
func NewResult(n Node) *Result {
	return &Result{node: n, status: StatusPending, site: SiteTest}
}

func (r *Result) Node() Node { return r.node }

// Status returns the current status
func (r *Result) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Site returns where the terminal failure happened
func (r *Result) Site() Site {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.site
}

// Message returns the failure message
func (r *Result) Message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.message
}

// StackTrace returns the recorded stack trace
func (r *Result) StackTrace() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stackTrace
}

// Output returns text logged by the test
func (r *Result) Output() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.output.String()
}

// Assertions returns a copy of the assertion records
func (r *Result) Assertions() []AssertionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AssertionRecord(nil), r.assertions...)
}

// AssertionCount returns the number of recorded assertions
func (r *Result) AssertionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.assertions)
}

// Errors returns every error recorded, in order
func (r *Result) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Duration returns the elapsed time between Start and Finish
func (r *Result) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startTime.IsZero() || r.endTime.IsZero() {
		return 0
	}
	return r.endTime.Sub(r.startTime)
}

// StartTime returns when the node started
func (r *Result) StartTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startTime
}

// Children returns the child results of a suite result
func (r *Result) Children() []*Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Result(nil), r.children...)
}

// AddChild appends a child result
func (r *Result) AddChild(child *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.children = append(r.children, child)
}

// Start moves the result to Running
func (r *Result) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusRunning
	r.startTime = time.Now()
}

// Finish closes the result, completing it if nothing else did
func (r *Result) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusRunning || r.status == StatusPending {
		r.completeLocked()
	}
	r.endTime = time.Now()
}

// Logf appends a line to the test output
func (r *Result) Logf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(&r.output, format, args...)
	r.output.WriteByte('\n')
}

// RecordAssertion adds one assertion outcome. The status is derived when the
// test completes.
func (r *Result) RecordAssertion(status AssertionStatus, message, stackTrace string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assertions = append(r.assertions, AssertionRecord{Status: status, Message: message, StackTrace: stackTrace})
}

// RecordException records an error raised by the test body
func (r *Result) RecordException(err error) {
	r.RecordExceptionAt(err, SiteTest)
}

// RecordExceptionAt records an error raised in the given phase. Errors
// returned by the body are failures; panics and errors from other phases are
// errors.
func (r *Result) RecordExceptionAt(err error, site Site) {
	if err == nil {
		return
	}
	if site == SiteTearDown {
		r.RecordTearDownException(err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	r.site = site
	if errors.Is(err, ErrFailNow) {
		r.completeLocked()
		return
	}

	status := AssertionError
	var panicErr *PanicError
	if site == SiteTest && !errors.As(err, &panicErr) {
		status = AssertionFailed
	}
	r.assertions = append(r.assertions, AssertionRecord{
		Status:     status,
		Message:    err.Error(),
		StackTrace: StackOf(err),
	})
	r.completeLocked()
}

// RecordTearDownException records an error raised by a teardown method.
// A failure already recorded for the body is kept and the teardown message
// is appended to it.
func (r *Result) RecordTearDownException(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
	if !errors.Is(err, ErrFailNow) {
		r.tearDown = append(r.tearDown, err.Error())
		if stack := StackOf(err); stack != "" {
			r.tearDownStack = append(r.tearDownStack, stack)
		}
	}
	r.completeLocked()
}

// RecordCancellation moves the result to the terminal Cancelled state
func (r *Result) RecordCancellation(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	r.cancelReason = reason
	r.completeLocked()
}

// RecordTestCompletion derives the status from the recorded assertions
func (r *Result) RecordTestCompletion() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completeLocked()
}

// Skip records that the node was not executed
func (r *Result) Skip(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusSkipped
	r.message = reason
}

// MarkNotRunnable records that the node is invalid
func (r *Result) MarkNotRunnable(reason string, site Site) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusNotRunnable
	r.message = reason
	r.site = site
}

// SetOutcome sets the status and message directly. Used for suite results.
func (r *Result) SetOutcome(status Status, site Site, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.site = site
	r.message = message
}

func (r *Result) setTimes(start, end time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startTime = start
	r.endTime = end
}

func (r *Result) completeLocked() {
	if r.cancelled {
		r.status = StatusCancelled
		r.message = r.cancelReason
		return
	}

	status, message, stack := summarize(r.assertions)
	if len(r.tearDown) > 0 {
		tearDown := "TearDown : " + strings.Join(r.tearDown, "\nTearDown : ")
		if status.severity() < StatusFailed.severity() {
			status = StatusError
			r.site = SiteTearDown
		}
		if message == "" {
			message = tearDown
		} else {
			message += "\n" + tearDown
		}
		if len(r.tearDownStack) > 0 {
			stack += "--TearDown\n" + strings.Join(r.tearDownStack, "\n")
		}
	}
	r.status = status
	r.message = message
	r.stackTrace = stack
}

func summarize(records []AssertionRecord) (Status, string, string) {
	var failures []AssertionRecord
	worst := StatusPassed
	for _, rec := range records {
		if rec.Status == AssertionPassed {
			continue
		}
		failures = append(failures, rec)
		if s := rec.Status.status(); s.severity() > worst.severity() {
			worst = s
		}
	}

	switch len(failures) {
	case 0:
		return StatusPassed, "", ""
	case 1:
		return worst, failures[0].Message, failures[0].StackTrace
	}

	var message, stack strings.Builder
	message.WriteString("Multiple failures or warnings in test:")
	for i, f := range failures {
		fmt.Fprintf(&message, "\n  %d) %s", i+1, f.Message)
		if f.StackTrace != "" {
			stack.WriteString(f.StackTrace)
			stack.WriteByte('\n')
		}
	}
	return worst, message.String(), stack.String()
}
