// Package samples holds demonstration fixtures registered with the default
// catalog. They exercise inheritance, parameterized fixtures and methods,
// generic fixtures and asynchronous test bodies.
package samples

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gunit/internal/attr"
	"gunit/internal/execution"
	"gunit/internal/metadata"
)

// Package is the namespace the samples are registered under
const Package = "samples"

// ErrDivideByZero is returned by Calculator.Divide
var ErrDivideByZero = errors.New("divide by zero")

// Calculator is the code under test of CalculatorTests
type Calculator struct {
	memory int
}

func (c *Calculator) Add(x, y int) int { return x + y }

func (c *Calculator) Divide(x, y int) (int, error) {
	if y == 0 {
		return 0, ErrDivideByZero
	}
	return x / y, nil
}

// CalculatorTests covers plain, case driven, combinatorial and range tests
type CalculatorTests struct {
	calc *Calculator
}

func (c *CalculatorTests) SetUp()    { c.calc = &Calculator{} }
func (c *CalculatorTests) TearDown() { c.calc = nil }

func (c *CalculatorTests) Add(t *execution.T, x, y, want int) {
	assert.Equal(t, want, c.calc.Add(x, y))
}

func (c *CalculatorTests) DivideByZero(t *execution.T) {
	_, err := c.calc.Divide(1, 0)
	require.ErrorIs(t, err, ErrDivideByZero)
}

func (c *CalculatorTests) AddCommutes(t *execution.T, x, y int) {
	assert.Equal(t, c.calc.Add(x, y), c.calc.Add(y, x))
}

func (c *CalculatorTests) Memory(t *execution.T) {
	c.calc.memory += 5
	assert.Equal(t, 5, c.calc.memory, "each test gets a fresh fixture")
}

func (c *CalculatorTests) Halves(t *execution.T, x int) {
	q, err := c.calc.Divide(x, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, q*2, x)
}

func (c *CalculatorTests) Overflow() {}

// store is an in-memory key value store shared by the repository fixtures
type store struct {
	mu   sync.Mutex
	data map[string]string
}

func (s *store) put(k, v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[k] = v
}

func (s *store) get(k string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[k]
	return v, ok
}

// RepositoryTests is the base level: it opens the store
type RepositoryTests struct {
	db *store
}

func (r *RepositoryTests) OpenStore()  { r.db = &store{data: map[string]string{}} }
func (r *RepositoryTests) CloseStore() { r.db = nil }

func (r *RepositoryTests) StoreIsOpen(t *execution.T) {
	require.NotNil(t, r.db)
}

// UserRepositoryTests seeds users on top of the opened store
type UserRepositoryTests struct {
	RepositoryTests
}

func (u *UserRepositoryTests) SeedUsers() {
	u.db.put("alice", "admin")
	u.db.put("bob", "viewer")
}

func (u *UserRepositoryTests) FindsSeededUser(t *execution.T) {
	role, ok := u.db.get("alice")
	require.True(t, ok)
	assert.Equal(t, "admin", role)
}

func (u *UserRepositoryTests) MissingUser(t *execution.T) {
	_, ok := u.db.get("carol")
	assert.False(t, ok)
}

// GreeterTests is instantiated once per language
type GreeterTests struct {
	lang     string
	greeting string
}

// NewGreeterTests creates a fixture instance for a language
func NewGreeterTests(lang, greeting string) *GreeterTests {
	return &GreeterTests{lang: lang, greeting: greeting}
}

func (g *GreeterTests) Greets(t *execution.T, name string) {
	msg := fmt.Sprintf("%s, %s!", g.greeting, name)
	assert.True(t, strings.HasPrefix(msg, g.greeting), "greeting for %s", g.lang)
	t.Logf("%s: %s", g.lang, msg)
}

// Stack is a generic fixture closed over several element types
type Stack[T any] struct {
	items []T
}

func (s *Stack[T]) PushPop(t *execution.T) {
	var zero T
	s.items = append(s.items, zero)
	require.Len(t, s.items, 1)
	s.items = s.items[:0]
	assert.Empty(t, s.items)
}

// AsyncTests returns operations and channels that are awaited by the runner
type AsyncTests struct{}

func (a *AsyncTests) Fetch(ctx context.Context) *metadata.Future {
	return metadata.Go(func() error {
		select {
		case <-time.After(5 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (a *AsyncTests) Notify() <-chan error {
	done := make(chan error, 1)
	go func() { done <- nil }()
	return done
}

func (a *AsyncTests) Eventually(t *execution.T) *metadata.Future {
	return metadata.Go(func() error {
		assert.Eventually(t, func() bool { return true }, time.Second, time.Millisecond)
		return nil
	})
}

func stackOf(typeArgs []reflect.Type) (*metadata.TypeInfo, error) {
	method := metadata.Method("PushPop", attr.Test())
	switch typeArgs[0] {
	case reflect.TypeFor[int]():
		return metadata.For[Stack[int]](metadata.Named("Stack"), metadata.InPackage(Package), method)
	case reflect.TypeFor[string]():
		return metadata.For[Stack[string]](metadata.Named("Stack"), metadata.InPackage(Package), method)
	}
	return nil, fmt.Errorf("no Stack instantiation for %v", typeArgs)
}

// Types describes the sample fixtures
func Types() []*metadata.TypeInfo {
	calculator := metadata.MustFor[CalculatorTests](
		metadata.InPackage(Package),
		metadata.Markers(attr.Fixture(attr.FixtureCategory("math"))),
		metadata.Method("SetUp", attr.SetUp()),
		metadata.Method("TearDown", attr.TearDown()),
		metadata.Method("Add",
			attr.Case(1, 2, 3),
			attr.Case(-1, 1, 0).Named("Opposites"),
			attr.Case(2, 2, 4).Describe("doubling"),
		),
		metadata.Method("DivideByZero", attr.Test()),
		metadata.Method("AddCommutes", attr.Test(), attr.Combinatorial()).WithParams(
			metadata.Param("x", attr.Values(1, 2, 3)),
			metadata.Param("y", attr.Values(10, 20)),
		),
		metadata.Method("Memory", attr.Test()),
		metadata.Method("Halves", attr.Test()).WithParams(
			metadata.Param("x", attr.RangeStep(0, 8, 4)),
		),
		metadata.Method("Overflow", attr.Test(), attr.Ignore("needs big integers")),
	)

	repository := metadata.MustFor[RepositoryTests](
		metadata.InPackage(Package),
		metadata.Abstract(),
		metadata.Method("OpenStore", attr.SetUp()),
		metadata.Method("CloseStore", attr.TearDown()),
		metadata.Method("StoreIsOpen", attr.Test()),
	)
	users := metadata.MustFor[UserRepositoryTests](
		metadata.InPackage(Package),
		metadata.Embeds(repository),
		metadata.Method("SeedUsers", attr.SetUp()),
		metadata.Method("FindsSeededUser", attr.Test(), attr.Category("storage")),
		metadata.Method("MissingUser", attr.Test(), attr.Category("storage")),
	)

	greeter := metadata.MustFor[GreeterTests](
		metadata.InPackage(Package),
		metadata.Constructor(NewGreeterTests),
		metadata.Markers(attr.FixtureSource(
			attr.Fixture(attr.Args("en", "Hello")),
			attr.Fixture(attr.Args("de", "Hallo")),
			attr.Fixture(attr.Args("ka", "Gamarjoba")),
		)),
		metadata.Method("Greets", attr.Case("gopher"), attr.Case("world")),
	)

	stack := metadata.Generic("Stack", stackOf,
		metadata.InPackage(Package),
		metadata.Markers(
			attr.Fixture(attr.TypeArgsOf[int]()),
			attr.Fixture(attr.TypeArgsOf[string]()),
		),
	)

	async := metadata.MustFor[AsyncTests](
		metadata.InPackage(Package),
		metadata.Markers(attr.Fixture(attr.FixtureCategory("async"))),
		metadata.Method("Fetch", attr.Test(), attr.Timeout(time.Second)),
		metadata.Method("Notify", attr.Test()),
		metadata.Method("Eventually", attr.Test()),
	)

	return []*metadata.TypeInfo{calculator, repository, users, greeter, stack, async}
}

// Register adds the sample fixtures to catalog
func Register(catalog *metadata.Catalog) {
	catalog.Add(Types()...)
}
