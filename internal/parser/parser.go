package parser

import "gunit/internal/domain"

// Parser extracts failures from test results
type Parser interface {
	Parse(results []*domain.Result) []domain.TestFailure
	ParseFailure(result *domain.Result) []domain.TestFailure
}
