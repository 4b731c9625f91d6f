package metadata

import (
	"fmt"
	"math"
	"reflect"
)

// Convert adapts a data value to a declared parameter type. Numeric values
// convert across kinds when no precision or range is lost.
func Convert(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot convert null to %s", t)
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		return convertNumber(v, t)
	}
	if v.Kind() == t.Kind() && v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %v (%T) to %s", value, value, t)
}

func convertNumber(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	target := reflect.New(t).Elem()
	overflow := fmt.Errorf("value %v overflows %s", v.Interface(), t)

	switch {
	case isInt(v.Kind()):
		n := v.Int()
		switch {
		case isInt(t.Kind()) && target.OverflowInt(n):
			return reflect.Value{}, overflow
		case isUint(t.Kind()) && (n < 0 || target.OverflowUint(uint64(n))):
			return reflect.Value{}, overflow
		}
	case isUint(v.Kind()):
		n := v.Uint()
		switch {
		case isInt(t.Kind()) && (n > math.MaxInt64 || target.OverflowInt(int64(n))):
			return reflect.Value{}, overflow
		case isUint(t.Kind()) && target.OverflowUint(n):
			return reflect.Value{}, overflow
		}
	case isFloat(v.Kind()):
		f := v.Float()
		switch {
		case isFloat(t.Kind()):
			if target.OverflowFloat(f) {
				return reflect.Value{}, overflow
			}
		case f != math.Trunc(f):
			return reflect.Value{}, fmt.Errorf("value %v has a fractional part and cannot convert to %s", f, t)
		case isInt(t.Kind()) && (f < math.MinInt64 || f > math.MaxInt64 || target.OverflowInt(int64(f))):
			return reflect.Value{}, overflow
		case isUint(t.Kind()) && (f < 0 || f > math.MaxUint64 || target.OverflowUint(uint64(f))):
			return reflect.Value{}, overflow
		}
	}
	return v.Convert(t), nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumeric(k reflect.Kind) bool {
	return isInt(k) || isUint(k) || isFloat(k)
}
