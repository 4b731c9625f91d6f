package metadata

import (
	"context"
	"fmt"
	"reflect"
)

// InvokeFunc calls a method on a receiver with data arguments. Runtime
// supplied parameters (context, injectables) are resolved from ctx.
type InvokeFunc func(ctx context.Context, receiver any, args []any) (any, error)

// ParamInfo describes one data parameter of a method
type ParamInfo struct {
	Name     string
	Position int
	Type     reflect.Type
	Markers  []Marker
	Registry *Registry
}

func (p *ParamInfo) registry() *Registry {
	if p.Registry != nil {
		return p.Registry
	}
	return Default
}

// MarkersWithRole returns the parameter markers satisfying role
func (p *ParamInfo) MarkersWithRole(role Role) []Marker {
	return p.registry().Select(p.Markers, role)
}

// IsDefined reports whether the parameter carries a marker with role
func (p *ParamInfo) IsDefined(role Role) bool {
	return len(p.MarkersWithRole(role)) > 0
}

// MethodInfo describes a method (or static function) of a fixture type
type MethodInfo struct {
	Name     string
	Owner    *TypeInfo
	Static   bool
	Async    bool
	Params   []*ParamInfo
	Markers  []Marker
	Invoke   InvokeFunc
	Registry *Registry
}

func (m *MethodInfo) registry() *Registry {
	if m.Registry != nil {
		return m.Registry
	}
	if m.Owner != nil {
		return m.Owner.registry()
	}
	return Default
}

// FullName returns the owner qualified method name
func (m *MethodInfo) FullName() string {
	if m.Owner == nil {
		return m.Name
	}
	return m.Owner.FullName() + "." + m.Name
}

// MarkersWithRole returns the method markers satisfying role
func (m *MethodInfo) MarkersWithRole(role Role) []Marker {
	return m.registry().Select(m.Markers, role)
}

// IsDefined reports whether the method carries a marker with role
func (m *MethodInfo) IsDefined(role Role) bool {
	return len(m.MarkersWithRole(role)) > 0
}

// HasDataSourceParams reports whether any parameter carries a data source
func (m *MethodInfo) HasDataSourceParams() bool {
	for _, p := range m.Params {
		if p.IsDefined(RoleParameterDataSource) {
			return true
		}
	}
	return false
}

// Call invokes the method
func (m *MethodInfo) Call(ctx context.Context, receiver any, args []any) (any, error) {
	if m.Invoke == nil {
		return nil, fmt.Errorf("method %s has no implementation", m.FullName())
	}
	return m.Invoke(ctx, receiver, args)
}
