package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultConfigFile is the config file looked up in the project path
	DefaultConfigFile = "gunit.yaml"
	// DefaultEnvFile is the env file looked up in the project path
	DefaultEnvFile = ".env"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultWorkers is the default number of workers
	DefaultWorkers = 4
	// DefaultLogLevel is the default log level
	DefaultLogLevel = "warn"
	// DefaultLogFormat is the default log encoder
	DefaultLogFormat = "console"
	// DefaultTimeout bounds tests without a timeout marker. Zero disables it.
	DefaultTimeout = time.Duration(0)
	// EnvPrefix starts every environment variable read by gunit
	EnvPrefix = "GUNIT_"
)

// DefaultSkipPackages are the packages never scanned for fixtures
var DefaultSkipPackages = []string{
	"vendor",
	"testdata",
}
