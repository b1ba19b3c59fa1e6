// Package binder implements reflection-based method overload resolution
// and argument coercion (C3): given a proto.MethodGroup and a call's
// argument Values, it selects the best-matching overload and builds the
// reflect.Value argument list, coercing each argument to the parameter's
// Go type via the value package's coercion functions.
//
// Grounded on the teacher's reflection-based FFI marshalling
// (internal/interp/marshal.go, internal/interp/ffi_callback.go), which
// converts between DWScript values and Go values via reflect.Value calls;
// generalized here to support overload *selection* among several
// candidates, which the teacher's single-target FFI call sites do not
// need (DWScript overload resolution instead happens in
// internal/semantic/overload_resolution.go at the AST/type level).
package binder

import (
	"fmt"
	"reflect"

	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
)

// BindError reports that no overload in a MethodGroup matched the given
// arguments.
type BindError struct {
	MethodName string
	ArgCount   int
}

func (e *BindError) Error() string {
	return fmt.Sprintf("no overload of %q accepts %d argument(s)", e.MethodName, e.ArgCount)
}

var valueType = reflect.TypeOf(value.Value{})
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Resolve selects the best-matching overload in group for args, scoring
// each candidate by how many parameters accept the argument without
// conversion, then falls back to a coercible match. Receiver, if not the
// zero Value, is prepended to the reflected call as the method's first
// argument (the conventional receiver slot set up by
// proto.ReflectPrototype / DefineMethod).
func Resolve(group *proto.MethodGroup, receiver value.Value, hasReceiver bool, args []value.Value) (*proto.Method, []reflect.Value, error) {
	var best *proto.Method
	var bestArgs []reflect.Value
	bestScore := -1

	for _, m := range group.Overloads {
		want := m.In
		if hasReceiver {
			if len(want) == 0 {
				continue
			}
			want = want[1:]
		}
		if !m.Variadic && len(want) != len(args) {
			continue
		}
		if m.Variadic && len(args) < len(want)-1 {
			continue
		}
		reflected, score, ok := tryBind(m, want, args)
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = m
			bestArgs = reflected
		}
	}

	if best == nil {
		return nil, nil, &BindError{MethodName: group.Name, ArgCount: len(args)}
	}

	callArgs := bestArgs
	if hasReceiver {
		recv, err := coerceTo(receiver, best.In[0])
		if err != nil {
			return nil, nil, err
		}
		callArgs = append([]reflect.Value{recv}, bestArgs...)
	}
	return best, callArgs, nil
}

// tryBind attempts to coerce args against the non-receiver parameter
// types want, returning the reflected arguments and a match score (higher
// is a better, more specific match — an exact value.Value passthrough
// scores higher than a coercion).
func tryBind(m *proto.Method, want []reflect.Type, args []value.Value) ([]reflect.Value, int, bool) {
	reflected := make([]reflect.Value, 0, len(args))
	score := 0
	for i, arg := range args {
		var pt reflect.Type
		switch {
		case m.Variadic && i >= len(want)-1:
			pt = want[len(want)-1].Elem()
		case i < len(want):
			pt = want[i]
		default:
			return nil, 0, false
		}
		rv, exact, err := coerceScored(arg, pt)
		if err != nil {
			return nil, 0, false
		}
		if exact {
			score += 2
		} else {
			score++
		}
		reflected = append(reflected, rv)
	}
	if !m.Variadic && len(args) < len(want) {
		return nil, 0, false
	}
	return reflected, score, true
}

// coerceTo coerces v to Go type t, returning an error if no coercion
// exists.
func coerceTo(v value.Value, t reflect.Type) (reflect.Value, error) {
	rv, _, err := coerceScored(v, t)
	return rv, err
}

// coerceScored converts v to a reflect.Value assignable to t, reporting
// whether the conversion was exact (v's own Kind already matches t's
// natural Value kind, so no coercion function ran) — used to prefer the
// overload that needed the least coercion.
func coerceScored(v value.Value, t reflect.Type) (reflect.Value, bool, error) {
	if t == valueType {
		return reflect.ValueOf(v), true, nil
	}
	switch t.Kind() {
	case reflect.String:
		exact := v.Kind == types.KindString || v.Kind == types.KindRope
		return reflect.ValueOf(value.ToString(v)).Convert(t), exact, nil
	case reflect.Bool:
		return reflect.ValueOf(value.ToBoolean(v)), v.Kind == types.KindBool, nil
	case reflect.Float64, reflect.Float32:
		n := value.ToNumber(v)
		return reflect.ValueOf(n).Convert(t), v.Kind == types.KindFloat64, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := value.ToInteger(v)
		return reflect.ValueOf(n).Convert(t), types.IsInteger(v.Kind), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := value.ToUint32(v)
		return reflect.ValueOf(n).Convert(t), types.IsInteger(v.Kind), nil
	case reflect.Interface:
		if t.NumMethod() == 0 {
			// any/interface{} parameter: hand over the actual payload, not
			// a debug string (v.GoString() is for diagnostics only).
			if v.Data == nil {
				return reflect.Zero(t), false, nil
			}
			return reflect.ValueOf(v.Data), false, nil
		}
	}
	// Host receiver / host-object parameter: if the payload is already
	// assignable (or convertible) to t, pass it straight through. This is
	// the path a reflected method's receiver parameter (proto.ReflectPrototype)
	// takes when the binder dispatches a call with hasReceiver=true.
	if v.Data != nil {
		dv := reflect.ValueOf(v.Data)
		if dv.Type().AssignableTo(t) {
			return dv, true, nil
		}
		if dv.Type().ConvertibleTo(t) {
			return dv.Convert(t), false, nil
		}
	}
	return reflect.Value{}, false, fmt.Errorf("binder: cannot coerce %s to %s", v.TypeOf(), t)
}

// Call invokes m with the already-bound reflected arguments, translating
// a trailing Go `error` return (the FFI convention the teacher's
// callDWScriptFunction trampoline in ffi_callback.go also follows) into a
// Go error rather than a panic.
func Call(m *proto.Method, args []reflect.Value) (value.Value, error) {
	out := m.Fn.Call(args)
	if len(out) == 0 {
		return value.Undefined(), nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			return value.Undefined(), last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return value.Undefined(), nil
	}
	if v, ok := out[0].Interface().(value.Value); ok {
		return v, nil
	}
	return goToValue(out[0]), nil
}

// goToValue converts a single Go reflect.Value return into a Value using
// the same coercions as the binder's own argument conversion, in reverse.
func goToValue(rv reflect.Value) value.Value {
	switch rv.Kind() {
	case reflect.String:
		return value.Str(rv.String())
	case reflect.Bool:
		return value.Bool(rv.Bool())
	case reflect.Float32, reflect.Float64:
		return value.Float64(rv.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Float64(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Float64(float64(rv.Uint()))
	default:
		if rv.CanInterface() {
			if host, ok := rv.Interface().(value.HostObject); ok {
				return value.Obj(host)
			}
		}
		return value.Undefined()
	}
}
