package domain

import (
	"fmt"
	"strings"
	"sync/atomic"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RunState tells whether a node can be executed
type RunState int

const (
	// RunStateRunnable nodes are executed
	RunStateRunnable RunState = iota
	// RunStateNotRunnable nodes are invalid and never executed
	RunStateNotRunnable
	// RunStateIgnored nodes are reported as skipped
	RunStateIgnored
)

func (s RunState) String() string {
	switch s {
	case RunStateRunnable:
		return "Runnable"
	case RunStateNotRunnable:
		return "NotRunnable"
	case RunStateIgnored:
		return "Ignored"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// Property keys set by markers and builders
const (
	PropertyCategory    = "Category"
	PropertyDescription = "Description"
	PropertySkipReason  = "_SKIPREASON"
	PropertyTimeout     = "Timeout"
)

// Node is an element of the test tree
type Node interface {
	ID() string
	Name() string
	FullName() string
	Parent() *Suite
	IsSuite() bool
	RunState() RunState
	Reason() string
	Properties() *Properties
	TestCaseCount() int
	MakeInvalid(reason string)
	Ignore(reason string)

	setParent(parent *Suite)
}

var nextID atomic.Int64

func init() {
	nextID.Store(999)
}

// NewID returns the next node id
func NewID() string {
	return fmt.Sprintf("0-%d", nextID.Add(1))
}

// Properties is an insertion ordered multi-value property bag
type Properties struct {
	values *orderedmap.OrderedMap[string, []string]
}

// NewProperties creates a new empty property bag
func NewProperties() *Properties {
	return &Properties{values: orderedmap.New[string, []string]()}
}

// Add appends a value to a key
func (p *Properties) Add(key, value string) {
	existing, _ := p.values.Get(key)
	p.values.Set(key, append(existing, value))
}

// Set replaces the values of a key
func (p *Properties) Set(key, value string) {
	p.values.Set(key, []string{value})
}

// Get returns the first value of a key
func (p *Properties) Get(key string) string {
	values, _ := p.values.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Values returns every value of a key
func (p *Properties) Values(key string) []string {
	values, _ := p.values.Get(key)
	return append([]string(nil), values...)
}

// Has reports whether a key is present
func (p *Properties) Has(key string) bool {
	_, ok := p.values.Get(key)
	return ok
}

// Keys returns the keys in insertion order
func (p *Properties) Keys() []string {
	keys := make([]string, 0, p.values.Len())
	for pair := p.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// FormatArguments renders arguments the way test names display them
func FormatArguments(args []any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatArgument(arg)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func formatArgument(arg any) string {
	switch v := arg.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", arg)
}
