package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

func TestFilterByName(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		pattern  string
		expected int // Expected number of matches
	}{
		{
			name:     "empty pattern returns all",
			names:    []string{"UserTests", "PaymentTests", "OrderTests"},
			pattern:  "",
			expected: 3,
		},
		{
			name:     "wildcard pattern matches suffix",
			names:    []string{"UserTests", "PaymentTests", "OrderTests"},
			pattern:  "*UserTests",
			expected: 1,
		},
		{
			name:     "wildcard pattern matches substring",
			names:    []string{"UserTests", "PaymentTests", "OrderTests", "PaymentServiceTests"},
			pattern:  "*Payment*",
			expected: 2,
		},
		{
			name:     "simple contains match",
			names:    []string{"UserTests", "PaymentTests", "OrderTests"},
			pattern:  "Payment",
			expected: 1,
		},
		{
			name:     "no matches",
			names:    []string{"UserTests", "PaymentTests"},
			pattern:  "*NonExistent*",
			expected: 0,
		},
		{
			name:     "qualified name with wildcard",
			names:    []string{"samples.UserTests.Create", "samples.PaymentTests.Refund"},
			pattern:  "*UserTests*",
			expected: 1,
		},
		{
			name:     "multiple wildcards",
			names:    []string{"UserServiceTests", "UserControllerTests", "PaymentTests"},
			pattern:  "*User*Tests",
			expected: 2,
		},
		{
			name:     "only wildcards",
			names:    []string{"UserTests"},
			pattern:  "**",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterByName(tt.names, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d", tt.expected, len(result))
			}
		})
	}
}

func TestMatchName_EdgeCases(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		assert.Empty(t, FilterByName([]string{}, "*Tests"))
	})

	t.Run("question mark without match", func(t *testing.T) {
		assert.False(t, MatchName("Ad?", "Subtract"))
		assert.True(t, MatchName("Ad?", "Add"))
	})

	t.Run("lone star", func(t *testing.T) {
		assert.True(t, MatchName("*", "Add"), "filepath.Match accepts a lone star")
	})
}

// tree builds Assembly > samples > Calc > {Add(1,2), Add(3,4)}, Plain
func tree() (*domain.Suite, *domain.Suite, []*domain.TestCase) {
	root := domain.NewSuite(domain.KindAssembly, "run", "run")
	ns := domain.NewSuite(domain.KindNamespace, "samples", "samples")
	fixture := domain.NewFixtureSuite(&metadata.TypeInfo{Name: "Calc", Package: "samples"}, nil)
	method := &metadata.MethodInfo{Name: "Add"}
	add := domain.NewParameterizedMethodSuite(method)
	first := domain.NewTestCase(method, "Add(1,2)", []any{1, 2})
	second := domain.NewTestCase(method, "Add(3,4)", []any{3, 4})
	plain := domain.NewTestCase(&metadata.MethodInfo{Name: "Plain"}, "Plain", nil)

	root.Add(ns)
	ns.Add(fixture)
	fixture.Add(add)
	add.Add(first)
	add.Add(second)
	fixture.Add(plain)
	return root, fixture, []*domain.TestCase{first, second, plain}
}

func names(cases []*domain.TestCase) []string {
	out := make([]string, len(cases))
	for i, tc := range cases {
		out[i] = tc.Name()
	}
	return out
}

func TestFilters_SelectLeaves(t *testing.T) {
	root, fixture, cases := tree()
	cases[2].Properties().Add(domain.PropertyCategory, "fast")

	tests := []struct {
		name     string
		filter   Filter
		expected []string
	}{
		{"empty", Empty(), []string{"Add(1,2)", "Add(3,4)", "Plain"}},
		{"name of a leaf", NewNameFilter("Plain"), []string{"Plain"}},
		{"name of a method suite", NewNameFilter("*Add*"), []string{"Add(1,2)", "Add(3,4)"}},
		{"name of the fixture", NewNameFilter("*Calc*"), []string{"Add(1,2)", "Add(3,4)", "Plain"}},
		{"full name", NewFullNameFilter("samples.Calc.Add(3,4)"), []string{"Add(3,4)"}},
		{"id of the fixture", NewIDFilter(fixture.ID()), []string{"Add(1,2)", "Add(3,4)", "Plain"}},
		{"id of a leaf", NewIDFilter(" " + cases[0].ID()), []string{"Add(1,2)"}},
		{"category", NewCategoryFilter("fast"), []string{"Plain"}},
		{"and", And(NewNameFilter("*Add*"), NewNameFilter("*3*")), []string{"Add(3,4)"}},
		{"or", Or(NewNameFilter("Plain"), NewFullNameFilter("samples.Calc.Add(1,2)")), []string{"Add(1,2)", "Plain"}},
		{"not", Not(NewNameFilter("*Add*")), []string{"Plain"}},
		{"not through an ancestor", Not(NewNameFilter("*Calc*")), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.SelectLeaves(root, tt.filter)
			if tt.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, names(got))
		})
	}
}

func TestFilters_PassKeepsAncestors(t *testing.T) {
	root, fixture, _ := tree()
	filter := NewNameFilter("Plain")
	assert.True(t, filter.Pass(root), "a matching descendant keeps the root")
	assert.True(t, filter.Pass(fixture))
	assert.False(t, filter.Match(fixture))
}

func TestNameFilter_IsMatch(t *testing.T) {
	calc := &metadata.TypeInfo{Name: "Calc", Package: "samples"}
	add := &metadata.MethodInfo{Name: "Add"}

	tests := []struct {
		name     string
		pattern  string
		method   *metadata.MethodInfo
		expected bool
	}{
		{"type level always matches", "Nothing", nil, true},
		{"empty pattern", "", add, true},
		{"method name", "Add", add, true},
		{"type and method", "Calc.Add", add, true},
		{"type name", "*Calc*", add, true},
		{"qualified type name", "samples.Calc", add, true},
		{"other method", "Subtract", add, false},
		{"case arguments", "Add(1,*", add, true},
		{"other case arguments", "Sub(1,*", add, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewNameFilter(tt.pattern).IsMatch(calc, tt.method))
		})
	}

	assert.True(t, NewIDFilter("x").IsMatch(calc, add))
	assert.True(t, Not(NewNameFilter("Add")).IsMatch(calc, add))
	assert.False(t, And(NewNameFilter("Add"), NewNameFilter("Subtract")).IsMatch(calc, add))
	assert.True(t, Or(NewNameFilter("Add"), NewNameFilter("Subtract")).IsMatch(calc, add))
}
