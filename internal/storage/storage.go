package storage

import (
	"time"

	"github.com/google/uuid"

	"gunit/internal/config"
	"gunit/internal/domain"
)

// Storage persists and loads test run results (e.g. for the failures viewer and --failed).
type Storage interface {
	Save(results []*domain.Result, failures []domain.TestFailure, duration time.Duration, workers int) error
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after marking failures resolved).
	SaveOutput(output *domain.TestResultsOutput) error
	Close() error
}

// New returns the SQL storage when a results DSN is configured and the JSON file storage otherwise
func New(cfg *config.Config) (Storage, error) {
	if cfg.ResultsDSN != "" {
		return NewSQLStorage(cfg.ResultsDSN)
	}
	return NewJSONStorage(cfg), nil
}

// NewOutput builds the stored form of a run under a fresh run id
func NewOutput(results []*domain.Result, failures []domain.TestFailure, duration time.Duration, workers int) *domain.TestResultsOutput {
	if failures == nil {
		failures = []domain.TestFailure{}
	}
	meta := domain.Summarize(results).Meta(uuid.NewString(), duration, workers, time.Now())
	return &domain.TestResultsOutput{Meta: meta, Details: failures}
}

// FailedNames returns the full names of unresolved failures in output
func FailedNames(output *domain.TestResultsOutput) []string {
	if output == nil {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, f := range output.Details {
		if f.Resolved || seen[f.FullName] {
			continue
		}
		seen[f.FullName] = true
		names = append(names, f.FullName)
	}
	return names
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

func (s *JSONStorage) Close() error { return nil }
