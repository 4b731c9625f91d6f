package domain

// TestFailure represents a failed test case
type TestFailure struct {
	ID           string   `json:"id"`
	TestName     string   `json:"test_name"`
	FullName     string   `json:"full_name"`
	Fixture      string   `json:"fixture"`
	Status       Status   `json:"status"`
	Site         Site     `json:"site"`
	ErrorDetails string   `json:"error_details"`
	StackTrace   []string `json:"stack_trace"`
	File         string   `json:"file"`
	Line         int      `json:"line"`
	Message      string   `json:"message"`
	Resolved     bool     `json:"resolved,omitempty"` // Track if test case is marked as resolved
}
