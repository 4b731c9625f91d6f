package metadata

import (
	"fmt"
	"reflect"
	"strings"
)

// TypeInfo describes one inheritance level of a candidate fixture type.
// A derived type embeds its base; Base links to the embedded level.
type TypeInfo struct {
	Name              string
	Package           string
	Abstract          bool
	Sealed            bool
	GenericDefinition bool
	Base              *TypeInfo
	Markers           []Marker
	Methods           []*MethodInfo
	Type              reflect.Type
	TypeArgs          []reflect.Type
	Registry          *Registry

	// New constructs a fixture instance from fixture arguments. Nil means the
	// type cannot be constructed.
	New func(args []any) (any, error)
	// Instantiate closes a generic definition over type arguments
	Instantiate func(typeArgs []reflect.Type) (*TypeInfo, error)
}

func (t *TypeInfo) registry() *Registry {
	if t.Registry != nil {
		return t.Registry
	}
	return Default
}

// FullName returns the package qualified display name
func (t *TypeInfo) FullName() string {
	if t.Package == "" {
		return t.DisplayName()
	}
	return t.Package + "." + t.DisplayName()
}

// DisplayName returns the name including type arguments
func (t *TypeInfo) DisplayName() string {
	if len(t.TypeArgs) == 0 || strings.Contains(t.Name, "[") {
		return t.Name
	}
	names := make([]string, len(t.TypeArgs))
	for i, arg := range t.TypeArgs {
		names[i] = arg.String()
	}
	return fmt.Sprintf("%s[%s]", t.Name, strings.Join(names, ","))
}

// Levels returns the inheritance chain from this type down to the root base
func (t *TypeInfo) Levels() []*TypeInfo {
	var levels []*TypeInfo
	for level := t; level != nil; level = level.Base {
		levels = append(levels, level)
	}
	return levels
}

// MarkersWithRole returns markers declared on this level satisfying role
func (t *TypeInfo) MarkersWithRole(role Role) []Marker {
	return t.registry().Select(t.Markers, role)
}

// IsDefined reports whether a marker with role is declared on this level,
// or on any level when inherit is set
func (t *TypeInfo) IsDefined(role Role, inherit bool) bool {
	if !inherit {
		return len(t.MarkersWithRole(role)) > 0
	}
	for _, level := range t.Levels() {
		if len(level.MarkersWithRole(role)) > 0 {
			return true
		}
	}
	return false
}

// AllMethods returns the methods visible on the type, derived level first.
// A base method with the same name as a derived one is hidden.
func (t *TypeInfo) AllMethods() []*MethodInfo {
	seen := make(map[string]bool)
	var methods []*MethodInfo
	for _, level := range t.Levels() {
		for _, m := range level.Methods {
			if seen[m.Name] {
				continue
			}
			seen[m.Name] = true
			methods = append(methods, m)
		}
	}
	return methods
}

// HasMethodWithRole reports whether any visible method carries a marker with role
func (t *TypeInfo) HasMethodWithRole(role Role) bool {
	for _, m := range t.AllMethods() {
		if m.IsDefined(role) {
			return true
		}
	}
	return false
}

// Constructible reports whether instances can be created
func (t *TypeInfo) Constructible() bool {
	return t.New != nil
}

// CreateInstance constructs a fixture instance
func (t *TypeInfo) CreateInstance(args []any) (any, error) {
	if t.New == nil {
		return nil, fmt.Errorf("no suitable constructor was found for %s", t.FullName())
	}
	return t.New(args)
}

// WithTypeArgs returns a copy of t carrying the given type arguments
func (t *TypeInfo) WithTypeArgs(typeArgs []reflect.Type) *TypeInfo {
	clone := *t
	clone.TypeArgs = append([]reflect.Type(nil), typeArgs...)
	return &clone
}
