package attr

import (
	"gunit/internal/builders"
	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// TestMarker declares a simple test method
type TestMarker struct {
	description string
}

// Test declares a test method
func Test() *TestMarker {
	return &TestMarker{}
}

// Describe sets the description of the test
func (m *TestMarker) Describe(description string) *TestMarker {
	m.description = description
	return m
}

func (m *TestMarker) Kind() metadata.Kind { return KindTest }

// BuildTest builds the single test case of m
func (m *TestMarker) BuildTest(method *metadata.MethodInfo, parent *domain.Suite) *domain.TestCase {
	tc := builders.BuildTestMethod(method, parent, nil)
	if m.description != "" {
		tc.Properties().Set(domain.PropertyDescription, m.description)
	}
	return tc
}

// CaseMarker supplies the arguments of one test case
type CaseMarker struct {
	parms builders.TestCaseParameters
}

// Case declares one test case with explicit arguments
func Case(args ...any) *CaseMarker {
	return &CaseMarker{parms: builders.TestCaseParameters{Arguments: args}}
}

// Named overrides the test case name
func (m *CaseMarker) Named(name string) *CaseMarker {
	m.parms.Name = name
	return m
}

// Describe sets the description of the test case
func (m *CaseMarker) Describe(description string) *CaseMarker {
	m.parms.Description = description
	return m
}

// Category adds a category to the test case
func (m *CaseMarker) Category(category string) *CaseMarker {
	m.parms.Categories = append(m.parms.Categories, category)
	return m
}

// Ignored marks the test case as ignored
func (m *CaseMarker) Ignored(reason string) *CaseMarker {
	m.parms.IgnoreWith = reason
	return m
}

func (m *CaseMarker) Kind() metadata.Kind { return KindCase }

// BuildTests builds the test case
func (m *CaseMarker) BuildTests(method *metadata.MethodInfo, parent *domain.Suite) ([]*domain.TestCase, error) {
	parms := m.parms
	return []*domain.TestCase{builders.BuildTestMethod(method, parent, &parms)}, nil
}
