// Package gunit is a unit-test framework driven by metadata markers.
//
// Fixtures are described with Describe and registered with Register. Main
// builds the test tree from every registered fixture and runs the gunit
// command line against it:
//
//	type CalcTests struct{}
//
//	func (c *CalcTests) Add(t *gunit.T, x, y, want int) { assert.Equal(t, want, x+y) }
//
//	func init() {
//		gunit.Register(gunit.Describe[CalcTests](
//			gunit.Method("Add", gunit.Case(1, 2, 3), gunit.Case(2, 2, 4)),
//		))
//	}
package gunit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gunit/internal/attr"
	"gunit/internal/builders"
	"gunit/internal/cli/commands"
	"gunit/internal/execution"
	"gunit/internal/metadata"
)

// T is passed to test methods that declare it and satisfies the testify
// assertion interfaces
type T = execution.T

// Context is the per-invocation execution context, injectable like T
type Context = execution.Context

// TypeInfo describes a fixture type
type TypeInfo = metadata.TypeInfo

// Option configures a type description
type Option = metadata.Option

// Marker is a metadata marker attached to a type, method or parameter
type Marker = metadata.Marker

// MethodDecl declares a method of a fixture
type MethodDecl = metadata.MethodDecl

// ParamDecl declares markers of one method parameter
type ParamDecl = metadata.ParamDecl

// Future is an asynchronous test body result awaited by the runner
type Future = metadata.Future

// ErrCancelled can be returned by a test to report itself cancelled
var ErrCancelled = execution.ErrCancelled

// Describe builds the description of fixture type F. It panics on an invalid
// description so it can be used from init.
func Describe[F any](opts ...Option) *TypeInfo {
	return metadata.MustFor[F](opts...)
}

// Generic describes a generic fixture definition closed by instantiate
func Generic(name string, instantiate func(typeArgs []reflect.Type) (*TypeInfo, error), opts ...Option) *TypeInfo {
	return metadata.Generic(name, instantiate, opts...)
}

// Register adds fixture descriptions to the default catalog
func Register(types ...*TypeInfo) {
	metadata.DefaultCatalog.Add(types...)
}

// Go runs fn asynchronously and returns a Future the runner awaits
func Go(fn func() error) *Future { return metadata.Go(fn) }

// Description options mirror the metadata package.

func Named(name string) Option { return metadata.Named(name) }
func InPackage(pkg string) Option { return metadata.InPackage(pkg) }
func Abstract() Option { return metadata.Abstract() }
func Embeds(base *TypeInfo) Option { return metadata.Embeds(base) }
func Markers(markers ...Marker) Option { return metadata.Markers(markers...) }
func Constructor(fn any) Option { return metadata.Constructor(fn) }

func Method(name string, markers ...Marker) *MethodDecl { return metadata.Method(name, markers...) }
func Param(name string, markers ...Marker) ParamDecl { return metadata.Param(name, markers...) }

// Fixture markers.

func Fixture(opts ...attr.FixtureOption) *attr.FixtureMarker { return attr.Fixture(opts...) }
func FixtureSource(variants ...*attr.FixtureMarker) *attr.FixtureSourceMarker {
	return attr.FixtureSource(variants...)
}
func Args(args ...any) attr.FixtureOption { return attr.Args(args...) }
func FixtureName(name string) attr.FixtureOption { return attr.FixtureName(name) }
func TypeArgs(types ...reflect.Type) attr.FixtureOption {
	return attr.TypeArgs(types...)
}

// Method and parameter markers.

func Test() *attr.TestMarker { return attr.Test() }
func Case(args ...any) *attr.CaseMarker { return attr.Case(args...) }
func Values(values ...any) *attr.ValuesMarker { return attr.Values(values...) }
func Range(from, to int) *attr.RangeMarker { return attr.Range(from, to) }
func RangeStep(from, to, step int) *attr.RangeMarker { return attr.RangeStep(from, to, step) }
func Range64(from, to, step int64) *attr.RangeMarker { return attr.Range64(from, to, step) }
func FloatRange(from, to, step float64) *attr.RangeMarker {
	return attr.FloatRange(from, to, step)
}
func Combinatorial() builders.Combinatorial { return attr.Combinatorial() }
func Sequential() builders.Sequential { return attr.Sequential() }
func SetUp() attr.SetUpMarker { return attr.SetUp() }
func TearDown() attr.TearDownMarker { return attr.TearDown() }
func Category(name string) attr.CategoryMarker { return attr.Category(name) }
func Description(text string) attr.DescriptionMarker {
	return attr.Description(text)
}
func Ignore(reason string) attr.IgnoreMarker { return attr.Ignore(reason) }
func Timeout(d time.Duration) attr.TimeoutMarker { return attr.Timeout(d) }

// NewCommand returns the gunit root command for the fixtures in catalog
func NewCommand(catalog *metadata.Catalog, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gunit",
		Short:         "Marker driven unit-test runner",
		Long:          `gunit discovers registered fixtures, builds the test tree and executes it in parallel with setup/teardown lifecycle and failure isolation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	commands.NewCommands(catalog).Register(rootCmd)
	return rootCmd
}

// Main runs the gunit command line against the default catalog and exits
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewCommand(metadata.DefaultCatalog, Version).ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if !errors.Is(err, commands.ErrTestsFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

// Version is reported by --version
var Version = "dev"
