package cli

import (
	"time"

	"gunit/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	ProjectPath  string
	Workers      int
	Filter       string
	IDs          []string
	Category     string
	FailFast     bool
	OnlyFailed   bool
	Verbose      bool
	Timeout      time.Duration
	LogLevel     string
	MetricsFile  string
	ResultsDSN   string
	TestCases    bool
	OpenFailures bool
	Print        bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath: f.ProjectPath,
		Workers:     f.Workers,
		Filter:      f.Filter,
		IDs:         f.IDs,
		Category:    f.Category,
		FailFast:    f.FailFast,
		Failed:      f.OnlyFailed,
		Verbose:     f.Verbose,
		Timeout:     f.Timeout,
		LogLevel:    f.LogLevel,
		MetricsFile: f.MetricsFile,
		ResultsDSN:  f.ResultsDSN,
	}
}
