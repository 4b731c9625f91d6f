package builders

import (
	"fmt"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// Marker kinds of the built-in combining strategies
const (
	KindCombinatorial metadata.Kind = "Combinatorial"
	KindSequential    metadata.Kind = "Sequential"
)

func init() {
	metadata.Register(KindCombinatorial, metadata.RoleTestBuilder|metadata.RoleCombiningStrategy)
	metadata.Register(KindSequential, metadata.RoleTestBuilder|metadata.RoleCombiningStrategy)
}

// CombiningStrategy turns per-parameter value lists into argument sets
type CombiningStrategy interface {
	CombineArguments(sources [][]any) [][]any
}

// Combinatorial generates every combination of parameter values. The last
// parameter varies fastest.
type Combinatorial struct{}

func (Combinatorial) Kind() metadata.Kind { return KindCombinatorial }

// CombineArguments returns the cartesian product of sources
func (Combinatorial) CombineArguments(sources [][]any) [][]any {
	if len(sources) == 0 {
		return nil
	}
	total := 1
	for _, source := range sources {
		total *= len(source)
	}
	if total == 0 {
		return nil
	}

	combinations := make([][]any, 0, total)
	indices := make([]int, len(sources))
	for {
		combination := make([]any, len(sources))
		for i, source := range sources {
			combination[i] = source[indices[i]]
		}
		combinations = append(combinations, combination)

		pos := len(sources) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(sources[pos]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return combinations
		}
	}
}

// BuildTests generates one test case per combination
func (c Combinatorial) BuildTests(m *metadata.MethodInfo, parent *domain.Suite) ([]*domain.TestCase, error) {
	return buildFromStrategy(m, parent, c)
}

// Sequential pairs the n-th value of every parameter. Shorter lists are
// padded with nil.
type Sequential struct{}

func (Sequential) Kind() metadata.Kind { return KindSequential }

// CombineArguments zips sources
func (Sequential) CombineArguments(sources [][]any) [][]any {
	longest := 0
	for _, source := range sources {
		longest = max(longest, len(source))
	}
	combinations := make([][]any, 0, longest)
	for i := 0; i < longest; i++ {
		combination := make([]any, len(sources))
		for j, source := range sources {
			if i < len(source) {
				combination[j] = source[i]
			}
		}
		combinations = append(combinations, combination)
	}
	return combinations
}

// BuildTests generates one test case per position
func (s Sequential) BuildTests(m *metadata.MethodInfo, parent *domain.Suite) ([]*domain.TestCase, error) {
	return buildFromStrategy(m, parent, s)
}

func buildFromStrategy(m *metadata.MethodInfo, parent *domain.Suite, strategy CombiningStrategy) ([]*domain.TestCase, error) {
	sources := make([][]any, len(m.Params))
	for i, p := range m.Params {
		for _, marker := range p.MarkersWithRole(metadata.RoleParameterDataSource) {
			source, ok := marker.(DataSource)
			if !ok {
				return nil, wrongCapability(marker, metadata.RoleParameterDataSource)
			}
			values, err := source.Data(p)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
			}
			sources[i] = append(sources[i], values...)
		}
	}

	var tests []*domain.TestCase
	for _, args := range strategy.CombineArguments(sources) {
		tests = append(tests, BuildTestMethod(m, parent, &TestCaseParameters{Arguments: args}))
	}
	return tests, nil
}
