package metadata

import (
	"context"
	"fmt"
	"path"
	"reflect"
)

// Option configures a type description
type Option interface {
	apply(*description)
}

type optionFunc func(*description)

func (f optionFunc) apply(d *description) {
	f(d)
}

type description struct {
	name     string
	pkg      string
	abstract bool
	sealed   bool
	base     *TypeInfo
	markers  []Marker
	methods  []*MethodDecl
	ctor     func(args []any) (any, error)
	ctorErr  error
	registry *Registry
}

func newDescription(opts ...Option) *description {
	d := &description{}
	for _, o := range opts {
		o.apply(d)
	}
	return d
}

// Named overrides the type name
func Named(name string) Option {
	return optionFunc(func(d *description) { d.name = name })
}

// InPackage overrides the package name used for grouping
func InPackage(pkg string) Option {
	return optionFunc(func(d *description) { d.pkg = pkg })
}

// Abstract marks the type as not instantiable on its own
func Abstract() Option {
	return optionFunc(func(d *description) { d.abstract = true })
}

// Sealed marks the type as not extendable
func Sealed() Option {
	return optionFunc(func(d *description) { d.sealed = true })
}

// Embeds links the description of the embedded base type
func Embeds(base *TypeInfo) Option {
	return optionFunc(func(d *description) { d.base = base })
}

// Markers attaches markers to the type level
func Markers(markers ...Marker) Option {
	return optionFunc(func(d *description) { d.markers = append(d.markers, markers...) })
}

// WithRegistry resolves marker roles against r instead of Default
func WithRegistry(r *Registry) Option {
	return optionFunc(func(d *description) { d.registry = r })
}

// Constructor sets the function used to build fixture instances from
// fixture arguments. fn must return the instance, optionally with an error.
func Constructor(fn any) Option {
	return optionFunc(func(d *description) {
		d.ctor, d.ctorErr = constructorFrom(fn)
	})
}

// ParamDecl names a data parameter and attaches its markers
type ParamDecl struct {
	Name    string
	Markers []Marker
}

// Param declares a data parameter in positional order
func Param(name string, markers ...Marker) ParamDecl {
	return ParamDecl{Name: name, Markers: markers}
}

// MethodDecl declares a method or static function of a described type
type MethodDecl struct {
	name    string
	fn      any
	markers []Marker
	params  []ParamDecl
}

// Method declares a method of the described type by name
func Method(name string, markers ...Marker) *MethodDecl {
	return &MethodDecl{name: name, markers: markers}
}

// Func declares a static function attached to the described type
func Func(name string, fn any, markers ...Marker) *MethodDecl {
	return &MethodDecl{name: name, fn: fn, markers: markers}
}

// WithParams names the data parameters and attaches their markers
func (m *MethodDecl) WithParams(params ...ParamDecl) *MethodDecl {
	m.params = append(m.params, params...)
	return m
}

func (m *MethodDecl) apply(d *description) {
	d.methods = append(d.methods, m)
}

// For describes the struct type T
func For[T any](opts ...Option) (*TypeInfo, error) {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("fixture type %s must be a struct", typ)
	}
	d := newDescription(opts...)
	if d.ctorErr != nil {
		return nil, fmt.Errorf("describing %s: %w", typ.Name(), d.ctorErr)
	}

	info := &TypeInfo{
		Name:     typ.Name(),
		Package:  path.Base(typ.PkgPath()),
		Abstract: d.abstract,
		Sealed:   d.sealed,
		Base:     d.base,
		Markers:  d.markers,
		Type:     typ,
		Registry: d.registry,
	}
	if d.name != "" {
		info.Name = d.name
	}
	if d.pkg != "" {
		info.Package = d.pkg
	}
	if d.base != nil && d.base.Type != nil && !embeds(typ, d.base.Type) {
		return nil, fmt.Errorf("describing %s: type does not embed %s", info.Name, d.base.Type)
	}
	if !d.abstract {
		info.New = d.ctor
		if info.New == nil {
			info.New = defaultConstructor(typ)
		}
	}

	for _, decl := range d.methods {
		m, err := decl.build(info)
		if err != nil {
			return nil, fmt.Errorf("describing %s: %w", info.Name, err)
		}
		info.Methods = append(info.Methods, m)
	}
	return info, nil
}

// MustFor is like For but panics on error
func MustFor[T any](opts ...Option) *TypeInfo {
	info, err := For[T](opts...)
	if err != nil {
		panic(err)
	}
	return info
}

// Generic describes a generic type definition. instantiate closes it over
// type arguments, typically by calling For with the instantiated type.
func Generic(name string, instantiate func(typeArgs []reflect.Type) (*TypeInfo, error), opts ...Option) *TypeInfo {
	d := newDescription(opts...)
	return &TypeInfo{
		Name:              name,
		Package:           d.pkg,
		Abstract:          d.abstract,
		Sealed:            d.sealed,
		GenericDefinition: true,
		Base:              d.base,
		Markers:           d.markers,
		Registry:          d.registry,
		Instantiate: func(typeArgs []reflect.Type) (*TypeInfo, error) {
			if instantiate == nil {
				return nil, fmt.Errorf("generic type %s cannot be instantiated", name)
			}
			inst, err := instantiate(typeArgs)
			if err != nil {
				return nil, err
			}
			if inst == nil {
				return nil, fmt.Errorf("generic type %s has no instantiation for %v", name, typeArgs)
			}
			if len(inst.TypeArgs) == 0 {
				inst = inst.WithTypeArgs(typeArgs)
			}
			return inst, nil
		},
	}
}

func defaultConstructor(typ reflect.Type) func(args []any) (any, error) {
	return func(args []any) (any, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("no constructor of %s accepts %d arguments", typ.Name(), len(args))
		}
		return reflect.New(typ).Interface(), nil
	}
}

func constructorFrom(fn any) (func(args []any) (any, error), error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %T", fn)
	}
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("variadic constructors are not supported")
	}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("constructor must return the instance and an optional error")
	}
	return func(args []any) (any, error) {
		if len(args) != t.NumIn() {
			return nil, fmt.Errorf("constructor expects %d arguments, got %d", t.NumIn(), len(args))
		}
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			converted, err := Convert(arg, t.In(i))
			if err != nil {
				return nil, fmt.Errorf("constructor argument %d: %w", i, err)
			}
			in[i] = converted
		}
		out := v.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}, nil
}

var errorType = reflect.TypeFor[error]()

type resultKind int

const (
	resultNone resultKind = iota
	resultError
	resultValue
	resultValueError
)

type slot struct {
	typ     reflect.Type
	param   int
	resolve Resolver
}

type signature struct {
	slots  []slot
	params []*ParamInfo
	result resultKind
	async  bool
}

func (m *MethodDecl) build(owner *TypeInfo) (*MethodInfo, error) {
	var fn reflect.Value
	skip := 0
	if m.fn != nil {
		fn = reflect.ValueOf(m.fn)
		if fn.Kind() != reflect.Func {
			return nil, fmt.Errorf("static %s must be a function, got %T", m.name, m.fn)
		}
	} else {
		method, ok := reflect.PointerTo(owner.Type).MethodByName(m.name)
		if !ok {
			return nil, fmt.Errorf("type %s has no exported method %s", owner.Name, m.name)
		}
		fn = method.Func
		skip = 1
	}

	sig, err := analyze(fn.Type(), skip, m.params, owner.Registry)
	if err != nil {
		return nil, fmt.Errorf("method %s: %w", m.name, err)
	}

	info := &MethodInfo{
		Name:     m.name,
		Owner:    owner,
		Static:   m.fn != nil,
		Async:    sig.async,
		Params:   sig.params,
		Markers:  m.markers,
		Registry: owner.Registry,
	}
	receiverType := reflect.PointerTo(owner.Type)
	info.Invoke = func(ctx context.Context, receiver any, args []any) (any, error) {
		var recv reflect.Value
		if !info.Static {
			r, err := receiverFor(receiver, receiverType)
			if err != nil {
				return nil, err
			}
			recv = r
		}
		return sig.invoke(ctx, fn, recv, args)
	}
	return info, nil
}

func analyze(fnType reflect.Type, skip int, decls []ParamDecl, registry *Registry) (*signature, error) {
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("variadic methods are not supported")
	}
	sig := &signature{}
	for i := skip; i < fnType.NumIn(); i++ {
		in := fnType.In(i)
		if resolve, ok := injectableFor(in); ok {
			sig.slots = append(sig.slots, slot{typ: in, param: -1, resolve: resolve})
			continue
		}
		position := len(sig.params)
		p := &ParamInfo{
			Name:     fmt.Sprintf("arg%d", position),
			Position: position,
			Type:     in,
			Registry: registry,
		}
		if position < len(decls) {
			if decls[position].Name != "" {
				p.Name = decls[position].Name
			}
			p.Markers = decls[position].Markers
		}
		sig.params = append(sig.params, p)
		sig.slots = append(sig.slots, slot{typ: in, param: position})
	}
	if len(decls) > len(sig.params) {
		return nil, fmt.Errorf("%d parameters declared but the method takes %d", len(decls), len(sig.params))
	}

	switch fnType.NumOut() {
	case 0:
		sig.result = resultNone
	case 1:
		out := fnType.Out(0)
		switch {
		case out == errorType:
			sig.result = resultError
		default:
			sig.result = resultValue
			sig.async = isAsync(out)
		}
	case 2:
		if fnType.Out(1) != errorType {
			return nil, fmt.Errorf("second result must be error")
		}
		sig.result = resultValueError
		sig.async = isAsync(fnType.Out(0))
	default:
		return nil, fmt.Errorf("unsupported result count %d", fnType.NumOut())
	}
	return sig, nil
}

func (s *signature) invoke(ctx context.Context, fn reflect.Value, recv reflect.Value, args []any) (any, error) {
	if len(args) != len(s.params) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(s.params), len(args))
	}
	in := make([]reflect.Value, 0, len(s.slots)+1)
	if recv.IsValid() {
		in = append(in, recv)
	}
	for _, sl := range s.slots {
		if sl.resolve != nil {
			v, ok := sl.resolve(ctx)
			if !ok || v == nil {
				return nil, fmt.Errorf("no %s available for this invocation", sl.typ)
			}
			in = append(in, reflect.ValueOf(v))
			continue
		}
		v, err := Convert(args[sl.param], sl.typ)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", sl.param, err)
		}
		in = append(in, v)
	}

	out := fn.Call(in)
	switch s.result {
	case resultError:
		if !out[0].IsNil() {
			return nil, out[0].Interface().(error)
		}
		return nil, nil
	case resultValue:
		return out[0].Interface(), nil
	case resultValueError:
		if !out[1].IsNil() {
			return out[0].Interface(), out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
	return nil, nil
}

func receiverFor(instance any, want reflect.Type) (reflect.Value, error) {
	v := reflect.ValueOf(instance)
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("method of %s requires a fixture instance", want.Elem().Name())
	}
	if found, ok := findEmbedded(v, want, 0); ok {
		return found, nil
	}
	return reflect.Value{}, fmt.Errorf("fixture instance %T does not embed %s", instance, want.Elem().Name())
}

func findEmbedded(v reflect.Value, want reflect.Type, depth int) (reflect.Value, bool) {
	if v.Type() == want {
		return v, true
	}
	if depth > 8 {
		return reflect.Value{}, false
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	for i := 0; i < v.NumField(); i++ {
		if !v.Type().Field(i).Anonymous {
			continue
		}
		field := v.Field(i)
		if field.Kind() == reflect.Struct && reflect.PointerTo(field.Type()) == want && field.CanAddr() {
			return field.Addr(), true
		}
		if found, ok := findEmbedded(field, want, depth+1); ok {
			return found, true
		}
	}
	return reflect.Value{}, false
}

func embeds(typ, base reflect.Type) bool {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft == base || embeds(ft, base) {
			return true
		}
	}
	return false
}
