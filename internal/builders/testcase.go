package builders

import (
	"fmt"

	"gunit/internal/domain"
	"gunit/internal/metadata"
)

// TestCaseParameters carries the arguments and options of one test case
type TestCaseParameters struct {
	Arguments   []any
	Name        string
	Description string
	Categories  []string
	IgnoreWith  string
}

// BuildTestMethod creates a test case for m, validating the arguments
// against the method signature. Validation failures produce a not runnable
// test case rather than an error.
func BuildTestMethod(m *metadata.MethodInfo, parent *domain.Suite, parms *TestCaseParameters) *domain.TestCase {
	var args []any
	name := m.Name
	if parms != nil {
		args = parms.Arguments
		switch {
		case parms.Name != "":
			name = parms.Name
		case len(args) > 0:
			name += domain.FormatArguments(args)
		}
	}

	converted, reason := checkTestMethodSignature(m, args)
	tc := domain.NewTestCase(m, name, converted)
	if reason != "" {
		tc.MakeInvalid(reason)
	}

	if parms == nil {
		// generated cases inherit these from their method suite instead
		applyModifiers(m.MarkersWithRole(metadata.RoleApplyToTest), tc)
		return tc
	}

	if parms.Description != "" {
		tc.Properties().Set(domain.PropertyDescription, parms.Description)
	}
	for _, category := range parms.Categories {
		tc.Properties().Add(domain.PropertyCategory, category)
	}
	if parms.IgnoreWith != "" {
		tc.Ignore(parms.IgnoreWith)
	}
	return tc
}

func checkTestMethodSignature(m *metadata.MethodInfo, args []any) ([]any, string) {
	if m.Invoke == nil {
		return args, "Method has no implementation"
	}

	needed, provided := len(m.Params), len(args)
	switch {
	case provided > 0 && needed == 0:
		return args, "Arguments provided for method with no parameters"
	case provided == 0 && needed > 0:
		return args, "No arguments were provided"
	case provided != needed:
		return args, fmt.Sprintf("Wrong number of arguments provided: expected %d, got %d", needed, provided)
	}

	converted := make([]any, len(args))
	for i, arg := range args {
		v, err := metadata.Convert(arg, m.Params[i].Type)
		if err != nil {
			return args, fmt.Sprintf("Argument %d (%s): %v", i, m.Params[i].Name, err)
		}
		converted[i] = v.Interface()
	}
	return converted, ""
}
