package metadata

import (
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Role is a capability a marker kind is recognized under
type Role uint16

const (
	// RoleFixtureBuilder markers produce fixture suites from a type
	RoleFixtureBuilder Role = 1 << iota
	// RoleTestBuilder markers produce test cases from a method
	RoleTestBuilder
	// RoleSimpleTestBuilder markers produce a single test case from a method
	RoleSimpleTestBuilder
	// RoleParameterDataSource markers supply values for one parameter
	RoleParameterDataSource
	// RoleImplyFixture markers on a method make the owning type a fixture
	RoleImplyFixture
	// RoleCombiningStrategy markers decide how parameter data is combined
	RoleCombiningStrategy
	// RoleSetUp markers flag per-test setup methods
	RoleSetUp
	// RoleTearDown markers flag per-test teardown methods
	RoleTearDown
	// RoleApplyToTest markers modify the node built from what they decorate
	RoleApplyToTest
)

var roleNames = []struct {
	role Role
	name string
}{
	{RoleFixtureBuilder, "FixtureBuilder"},
	{RoleTestBuilder, "TestBuilder"},
	{RoleSimpleTestBuilder, "SimpleTestBuilder"},
	{RoleParameterDataSource, "ParameterDataSource"},
	{RoleImplyFixture, "ImplyFixture"},
	{RoleCombiningStrategy, "CombiningStrategy"},
	{RoleSetUp, "SetUp"},
	{RoleTearDown, "TearDown"},
	{RoleApplyToTest, "ApplyToTest"},
}

// Has reports whether every bit of other is set in r
func (r Role) Has(other Role) bool {
	return other != 0 && r&other == other
}

func (r Role) String() string {
	if r == 0 {
		return "None"
	}
	var names []string
	for _, rn := range roleNames {
		if r.Has(rn.role) {
			names = append(names, rn.name)
		}
	}
	return strings.Join(names, "|")
}

// Kind identifies a marker type in the role registry
type Kind string

// Marker is a metadata value attached to a type, method or parameter
type Marker interface {
	Kind() Kind
}

// Registry maps marker kinds to the roles they satisfy
type Registry struct {
	mu    sync.RWMutex
	roles *orderedmap.OrderedMap[Kind, Role]
}

// NewRegistry creates a new empty Registry
func NewRegistry() *Registry {
	return &Registry{roles: orderedmap.New[Kind, Role]()}
}

// Default is the registry used by metadata built without an explicit one
var Default = NewRegistry()

// Register adds roles to a marker kind in the default registry
func Register(kind Kind, roles Role) {
	Default.Register(kind, roles)
}

// Register adds roles to a marker kind. Registering a kind twice merges the roles.
func (r *Registry) Register(kind Kind, roles Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, _ := r.roles.Get(kind)
	r.roles.Set(kind, existing|roles)
}

// Roles returns the roles registered for a kind
func (r *Registry) Roles(kind Kind) Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roles, _ := r.roles.Get(kind)
	return roles
}

// Is reports whether a marker satisfies a role
func (r *Registry) Is(m Marker, role Role) bool {
	if m == nil {
		return false
	}
	return r.Roles(m.Kind()).Has(role)
}

// Select returns the markers satisfying a role, preserving declaration order
func (r *Registry) Select(markers []Marker, role Role) []Marker {
	var selected []Marker
	for _, m := range markers {
		if r.Is(m, role) {
			selected = append(selected, m)
		}
	}
	return selected
}

// Kinds returns the registered kinds in registration order
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, r.roles.Len())
	for pair := r.roles.Oldest(); pair != nil; pair = pair.Next() {
		kinds = append(kinds, pair.Key)
	}
	return kinds
}
