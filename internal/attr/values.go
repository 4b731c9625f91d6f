package attr

import (
	"errors"
	"math"
	"reflect"

	"gunit/internal/metadata"
)

// ValuesMarker supplies a fixed list of values for a parameter
type ValuesMarker struct {
	values []any
}

// Values supplies values for a parameter. With no values a bool parameter
// receives true and false.
func Values(values ...any) *ValuesMarker {
	return &ValuesMarker{values: values}
}

func (m *ValuesMarker) Kind() metadata.Kind { return KindValues }

// Data returns the values for p
func (m *ValuesMarker) Data(p *metadata.ParamInfo) ([]any, error) {
	if len(m.values) == 0 && p.Type != nil && p.Type.Kind() == reflect.Bool {
		return []any{true, false}, nil
	}
	return append([]any(nil), m.values...), nil
}

var (
	errZeroStep       = errors.New("step must be nonzero")
	errStepIncreasing = errors.New("step must be positive with an increasing range")
	errStepDecreasing = errors.New("step must be negative with a decreasing range")
)

// RangeMarker supplies evenly spaced values for a parameter
type RangeMarker struct {
	data func() ([]any, error)
}

func (m *RangeMarker) Kind() metadata.Kind { return KindRange }

// Data returns the range values for p
func (m *RangeMarker) Data(*metadata.ParamInfo) ([]any, error) {
	return m.data()
}

// Range supplies the ints from..to inclusive stepping by 1 or -1
func Range(from, to int) *RangeMarker {
	step := 1
	if from > to {
		step = -1
	}
	return RangeStep(from, to, step)
}

// RangeStep supplies the ints from..to inclusive stepping by step
func RangeStep(from, to, step int) *RangeMarker {
	return &RangeMarker{data: func() ([]any, error) {
		values, err := intRange(int64(from), int64(to), int64(step))
		if err != nil {
			return nil, err
		}
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = int(v)
		}
		return out, nil
	}}
}

// Range64 supplies the int64s from..to inclusive stepping by step
func Range64(from, to, step int64) *RangeMarker {
	return &RangeMarker{data: func() ([]any, error) {
		values, err := intRange(from, to, step)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = v
		}
		return out, nil
	}}
}

// FloatRange supplies the float64s from..to inclusive stepping by step
func FloatRange(from, to, step float64) *RangeMarker {
	return &RangeMarker{data: func() ([]any, error) {
		if err := checkStep(from < to, from > to, step > 0, step < 0, step == 0); err != nil {
			return nil, err
		}
		// values are derived from the index, not accumulated
		count := int(math.Floor((to-from)/step+1e-9)) + 1
		out := make([]any, 0, count)
		for i := 0; i < count; i++ {
			out = append(out, from+float64(i)*step)
		}
		return out, nil
	}}
}

func intRange(from, to, step int64) ([]int64, error) {
	if err := checkStep(from < to, from > to, step > 0, step < 0, step == 0); err != nil {
		return nil, err
	}
	var values []int64
	for v := from; ; v += step {
		if (step > 0 && v > to) || (step < 0 && v < to) {
			break
		}
		values = append(values, v)
		if v == to || (step > 0 && v > math.MaxInt64-step) || (step < 0 && v < math.MinInt64-step) {
			break
		}
	}
	return values, nil
}

func checkStep(increasing, decreasing, positive, negative, zero bool) error {
	switch {
	case zero:
		return errZeroStep
	case increasing && negative:
		return errStepIncreasing
	case decreasing && positive:
		return errStepDecreasing
	}
	return nil
}
