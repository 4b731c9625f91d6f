package samples_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gunit/internal/config"
	"gunit/internal/discovery"
	"gunit/internal/domain"
	"gunit/internal/execution"
	"gunit/internal/metadata"
	"gunit/internal/samples"
)

func TestSamplesRunClean(t *testing.T) {
	catalog := metadata.NewCatalog()
	samples.Register(catalog)

	types, err := discovery.NewScanner(nil).Scan(catalog)
	require.NoError(t, err)
	root := discovery.NewAssembler(zap.NewNop()).Assemble("gunit", types, nil)

	var invalid []string
	domain.Walk(root, func(n domain.Node) bool {
		if n.RunState() == domain.RunStateNotRunnable {
			invalid = append(invalid, n.FullName()+": "+n.Reason())
		}
		return true
	})
	require.Empty(t, invalid)

	leaves := domain.Leaves(root)
	require.NotEmpty(t, leaves)

	cfg := config.New()
	pool := execution.NewWorkerPool(cfg, execution.NewRunner(cfg, nil, nil), nil, nil)
	results, _, err := pool.Execute(context.Background(), leaves)
	require.NoError(t, err)
	require.Len(t, results, len(leaves))

	for _, r := range results {
		assert.False(t, r.Status().IsFailure(), "%s: %s %s", r.Node().FullName(), r.Status(), r.Message())
	}
	summary := domain.Summarize(results)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, len(leaves)-1, summary.Passed)
}

func TestSamplesTreeShape(t *testing.T) {
	root := discovery.NewAssembler(nil).Assemble("gunit", samples.Types(), nil)

	names := map[string]bool{}
	for _, tc := range domain.Leaves(root) {
		names[tc.FullName()] = true
	}
	for _, want := range []string{
		"samples.CalculatorTests.DivideByZero",
		"samples.UserRepositoryTests.StoreIsOpen",
		"samples.AsyncTests.Fetch",
	} {
		assert.True(t, names[want], "missing %s", want)
	}

	var fixtures []string
	domain.Walk(root, func(n domain.Node) bool {
		if s, ok := n.(*domain.Suite); ok && s.Kind() == domain.KindParameterizedFixture {
			for _, child := range s.Children() {
				fixtures = append(fixtures, child.Name())
			}
		}
		return true
	})
	assert.Contains(t, fixtures, "Stack[int]")
	assert.Contains(t, fixtures, "Stack[string]")
	assert.Len(t, fixtures, 5)
}
