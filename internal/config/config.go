package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"-"`

	// Output settings
	OutputJSONFile string `yaml:"output_file"`
	OutputJSONDir  string `yaml:"output_dir"`
	MetricsFile    string `yaml:"metrics_file"`
	ResultsDSN     string `yaml:"results_dsn"`

	// Execution settings
	Workers        int           `yaml:"workers"`
	FailFast       bool          `yaml:"fail_fast"`
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// Logging settings
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Packages to skip when scanning
	SkipPackages []string `yaml:"skip_packages"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	Workers     int
	Filter      string
	IDs         []string
	Category    string
	FailFast    bool
	Failed      bool
	Verbose     bool
	Timeout     time.Duration
	LogLevel    string
	MetricsFile string
	ResultsDSN  string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Workers:        DefaultWorkers,
		DefaultTimeout: DefaultTimeout,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		Flags:          Flags{Workers: DefaultWorkers},
	}
	// Copy default packages to skip
	cfg.SkipPackages = make([]string, len(DefaultSkipPackages))
	copy(cfg.SkipPackages, DefaultSkipPackages)
	return cfg
}

// Load creates a config from defaults, the project config file, the
// environment and finally flags
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if flags.ProjectPath != "" {
		cfg.ProjectPath = flags.ProjectPath
	}

	if err := cfg.loadFile(filepath.Join(cfg.ProjectPath, DefaultConfigFile)); err != nil {
		return nil, err
	}

	// .env file might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, DefaultEnvFile))
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	cfg.applyFlags(flags)
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	lookup := func(key string) string {
		return strings.TrimSpace(getenv(EnvPrefix + key))
	}

	if v := lookup("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sWORKERS %q: %w", EnvPrefix, v, err)
		}
		c.Workers = n
	}
	if v := lookup("FAIL_FAST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sFAIL_FAST %q: %w", EnvPrefix, v, err)
		}
		c.FailFast = b
	}
	if v := lookup("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT %q: %w", EnvPrefix, v, err)
		}
		c.DefaultTimeout = d
	}
	if v := lookup("OUTPUT_DIR"); v != "" {
		c.OutputJSONDir = v
	}
	if v := lookup("OUTPUT_FILE"); v != "" {
		c.OutputJSONFile = v
	}
	if v := lookup("METRICS_FILE"); v != "" {
		c.MetricsFile = v
	}
	if v := lookup("RESULTS_DSN"); v != "" {
		c.ResultsDSN = v
	}
	if v := lookup("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := lookup("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := lookup("SKIP_PACKAGES"); v != "" {
		c.SkipPackages = strings.Split(v, ",")
	}
	return nil
}

func (c *Config) applyFlags(flags Flags) {
	c.Flags = flags

	// Apply flag overrides
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.FailFast {
		c.FailFast = true
	}
	if flags.Timeout > 0 {
		c.DefaultTimeout = flags.Timeout
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	} else if flags.Verbose {
		c.LogLevel = "debug"
	}
	if flags.MetricsFile != "" {
		c.MetricsFile = flags.MetricsFile
	}
	if flags.ResultsDSN != "" {
		c.ResultsDSN = flags.ResultsDSN
	}
}

// Validate checks the merged configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("default timeout must not be negative, got %s", c.DefaultTimeout)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// GetOutputPath returns the full path to the output JSON file (under project so run and failures use the same file).
// Resolves to an absolute path so run and failures always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetMetricsPath returns the metrics textfile path, empty when disabled
func (c *Config) GetMetricsPath() string {
	if c.MetricsFile == "" || filepath.IsAbs(c.MetricsFile) {
		return c.MetricsFile
	}
	return filepath.Join(c.ProjectPath, c.MetricsFile)
}
