package discovery

import (
	"path/filepath"
	"strings"

	"gunit/internal/builders"
	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// Filter selects built tests for execution and narrows discovery
type Filter interface {
	domain.Filter
	builders.PreFilter
	// Match tests the node itself, ignoring its relatives
	Match(n domain.Node) bool
}

// PreFilter narrows which types and methods are built
type PreFilter = builders.PreFilter

// pass accepts a node when it, one of its ancestors or one of its
// descendants matches
func pass(f Filter, n domain.Node) bool {
	return f.Match(n) || matchParent(f, n) || matchDescendant(f, n)
}

func matchParent(f Filter, n domain.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if f.Match(p) {
			return true
		}
	}
	return false
}

func matchDescendant(f Filter, n domain.Node) bool {
	s, ok := n.(*domain.Suite)
	if !ok {
		return false
	}
	for _, child := range s.Children() {
		if f.Match(child) || matchDescendant(f, child) {
			return true
		}
	}
	return false
}

// emptyFilter matches everything
type emptyFilter struct{}

// Empty returns a filter that selects everything
func Empty() Filter {
	return emptyFilter{}
}

func (emptyFilter) Match(domain.Node) bool { return true }
func (emptyFilter) Pass(domain.Node) bool { return true }
func (emptyFilter) IsMatch(*metadata.TypeInfo, *metadata.MethodInfo) bool { return true }

// NameFilter selects nodes by name pattern
type NameFilter struct {
	pattern string
}

// NewNameFilter creates a filter for a wildcard pattern such as "*Calc*"
func NewNameFilter(pattern string) *NameFilter {
	return &NameFilter{pattern: pattern}
}

// Match reports whether the node name or full name matches
func (f *NameFilter) Match(n domain.Node) bool {
	return MatchName(f.pattern, n.Name()) || MatchName(f.pattern, n.FullName())
}

// Pass reports whether the node is selected
func (f *NameFilter) Pass(n domain.Node) bool {
	return pass(f, n)
}

// IsMatch narrows discovery to matching methods. Types always match because
// the pattern may target one of their methods.
func (f *NameFilter) IsMatch(t *metadata.TypeInfo, m *metadata.MethodInfo) bool {
	if m == nil || f.pattern == "" {
		return true
	}
	pattern := methodPattern(f.pattern)
	return MatchName(pattern, m.Name) ||
		MatchName(pattern, t.Name+"."+m.Name) ||
		MatchName(pattern, t.Name) ||
		MatchName(pattern, t.FullName())
}

// methodPattern cuts an argument list from pattern so that patterns naming
// generated cases such as "Add(1,*" still select their method
func methodPattern(pattern string) string {
	if i := strings.Index(pattern, "("); i > 0 {
		return pattern[:i] + "*"
	}
	return pattern
}

// FilterByName filters names by pattern using wildcard matching
// Supports patterns like "*CalcTests*" or "Add"
func FilterByName(names []string, pattern string) []string {
	if pattern == "" {
		return names
	}
	var filtered []string
	for _, name := range names {
		if MatchName(pattern, name) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}

// MatchName reports whether name matches a wildcard pattern. An empty
// pattern matches everything.
func MatchName(pattern, name string) bool {
	if pattern == "" {
		return true
	}

	// Try to match using filepath.Match (supports * and ? wildcards)
	matched, err := filepath.Match(pattern, name)
	if err == nil && matched {
		return true
	}

	// If pattern contains wildcards but filepath.Match didn't match,
	// try a more flexible substring match for patterns like "*Calc*"
	if strings.Contains(pattern, "*") {
		hasNonEmptyPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			if !strings.Contains(name, part) {
				return false
			}
			hasNonEmptyPart = true
		}
		return hasNonEmptyPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}

// IDFilter selects nodes by id
type IDFilter struct {
	ids map[string]bool
}

// NewIDFilter creates a filter for the given node ids
func NewIDFilter(ids ...string) *IDFilter {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[strings.TrimSpace(id)] = true
	}
	return &IDFilter{ids: set}
}

func (f *IDFilter) Match(n domain.Node) bool { return f.ids[n.ID()] }
func (f *IDFilter) Pass(n domain.Node) bool { return pass(f, n) }

// IsMatch always matches: ids are assigned during construction
func (f *IDFilter) IsMatch(*metadata.TypeInfo, *metadata.MethodInfo) bool { return true }

// FullNameFilter selects nodes by exact full name
type FullNameFilter struct {
	names map[string]bool
}

// NewFullNameFilter creates a filter for exact full names
func NewFullNameFilter(names ...string) *FullNameFilter {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return &FullNameFilter{names: set}
}

func (f *FullNameFilter) Match(n domain.Node) bool { return f.names[n.FullName()] }
func (f *FullNameFilter) Pass(n domain.Node) bool { return pass(f, n) }
func (f *FullNameFilter) IsMatch(*metadata.TypeInfo, *metadata.MethodInfo) bool {
	return true
}

// CategoryFilter selects nodes carrying a category
type CategoryFilter struct {
	category string
}

// NewCategoryFilter creates a filter for one category
func NewCategoryFilter(category string) *CategoryFilter {
	return &CategoryFilter{category: category}
}

// Match reports whether the node itself carries the category
func (f *CategoryFilter) Match(n domain.Node) bool {
	for _, c := range n.Properties().Values(domain.PropertyCategory) {
		if c == f.category {
			return true
		}
	}
	return false
}

func (f *CategoryFilter) Pass(n domain.Node) bool { return pass(f, n) }
func (f *CategoryFilter) IsMatch(*metadata.TypeInfo, *metadata.MethodInfo) bool {
	return true
}

// AndFilter selects nodes passing every filter
type AndFilter struct {
	filters []Filter
}

// And combines filters so that all must pass
func And(filters ...Filter) *AndFilter {
	return &AndFilter{filters: filters}
}

func (f *AndFilter) Match(n domain.Node) bool {
	for _, filter := range f.filters {
		if !filter.Match(n) {
			return false
		}
	}
	return true
}

func (f *AndFilter) Pass(n domain.Node) bool {
	for _, filter := range f.filters {
		if !filter.Pass(n) {
			return false
		}
	}
	return true
}

func (f *AndFilter) IsMatch(t *metadata.TypeInfo, m *metadata.MethodInfo) bool {
	for _, filter := range f.filters {
		if !filter.IsMatch(t, m) {
			return false
		}
	}
	return true
}

// OrFilter selects nodes passing any filter
type OrFilter struct {
	filters []Filter
}

// Or combines filters so that one must pass
func Or(filters ...Filter) *OrFilter {
	return &OrFilter{filters: filters}
}

func (f *OrFilter) Match(n domain.Node) bool {
	for _, filter := range f.filters {
		if filter.Match(n) {
			return true
		}
	}
	return false
}

func (f *OrFilter) Pass(n domain.Node) bool {
	for _, filter := range f.filters {
		if filter.Pass(n) {
			return true
		}
	}
	return false
}

func (f *OrFilter) IsMatch(t *metadata.TypeInfo, m *metadata.MethodInfo) bool {
	for _, filter := range f.filters {
		if filter.IsMatch(t, m) {
			return true
		}
	}
	return false
}

// NotFilter selects nodes the inner filter rejects
type NotFilter struct {
	inner Filter
}

// Not negates a filter
func Not(inner Filter) *NotFilter {
	return &NotFilter{inner: inner}
}

func (f *NotFilter) Match(n domain.Node) bool { return !f.inner.Match(n) }

// Pass rejects nodes matched by the inner filter directly or through an ancestor
func (f *NotFilter) Pass(n domain.Node) bool {
	return !f.inner.Match(n) && !matchParent(f.inner, n)
}

// IsMatch always matches: exclusion needs the built node
func (f *NotFilter) IsMatch(*metadata.TypeInfo, *metadata.MethodInfo) bool { return true }
