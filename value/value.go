// Package value implements Nitrassic's Value Model (spec component C1):
// the primitive value representation, the Undefined/Null singletons, and
// the total coercion and comparison functions the rest of the compiler and
// runtime build on.
package value

import (
	"fmt"

	"github.com/nitrassic/nitrassic/types"
)

// Value is a tagged runtime value, mirroring the data model of §3: one of
// Undefined, Null, a float64, a signed/unsigned 8/16/32/64-bit integer, a
// bool, a string, a Rope, a HostObject, or a function reference.
//
// Data holds the payload: nil for Undefined/Null, bool for KindBool,
// float64 for KindFloat64, int64 for every integer Kind, string for
// KindString, *Rope for KindRope, HostObject for KindObject, and
// Callable for KindFunction.
type Value struct {
	Data any
	Kind types.Kind
}

// Rope is a deferred string concatenation (glossary: "Rope"), used so that
// repeated `+=` on a string does not copy on every append; it is only
// flattened to a real string on demand (ToString, comparisons).
type Rope struct {
	Left, Right Value
}

// HostObject is the minimal surface value.ToPrimitive/value.ToString need
// from an object value. runtime/proto.Instance implements it; value does
// not import runtime/proto to avoid a cycle (proto stores Values).
type HostObject interface {
	// Invoke calls the zero-argument method named name on the receiver.
	// ok is false if no such callable property exists.
	Invoke(name string) (Value, bool, error)
	ClassName() string
}

// Callable is the minimal surface a function reference exposes to typeof/
// instanceof and diagnostics.
type Callable interface {
	FunctionName() string
}

func Undefined() Value { return Value{Kind: types.KindUndefined} }
func Null() Value      { return Value{Kind: types.KindNull} }
func Bool(b bool) Value { return Value{Kind: types.KindBool, Data: b} }
func Float64(f float64) Value { return Value{Kind: types.KindFloat64, Data: f} }
func Str(s string) Value { return Value{Kind: types.KindString, Data: s} }
func Obj(o HostObject) Value { return Value{Kind: types.KindObject, Data: o} }
func Func(c Callable) Value  { return Value{Kind: types.KindFunction, Data: c} }

// RopeOf builds a deferred concatenation of two values, both of which must
// already be string-kinded (KindString or KindRope) at the emitter's
// discretion; this constructor does not itself coerce.
func RopeOf(left, right Value) Value {
	return Value{Kind: types.KindRope, Data: &Rope{Left: left, Right: right}}
}

// Int constructs an integer-kinded value; kind must be one of the eight
// IsInteger kinds from the types package.
func Int(kind types.Kind, v int64) Value {
	if !types.IsInteger(kind) {
		panic(fmt.Sprintf("value: Int called with non-integer kind %s", kind))
	}
	return Value{Kind: kind, Data: truncateToKind(kind, v)}
}

func truncateToKind(kind types.Kind, v int64) int64 {
	switch kind {
	case types.KindInt8:
		return int64(int8(v))
	case types.KindUint8:
		return int64(uint8(v))
	case types.KindInt16:
		return int64(int16(v))
	case types.KindUint16:
		return int64(uint16(v))
	case types.KindInt32:
		return int64(int32(v))
	case types.KindUint32:
		return int64(uint32(v))
	default:
		return v
	}
}

// IsUndefined/IsNull test the two singleton kinds.
func (v Value) IsUndefined() bool { return v.Kind == types.KindUndefined }
func (v Value) IsNull() bool      { return v.Kind == types.KindNull }
func (v Value) IsNullish() bool   { return v.IsUndefined() || v.IsNull() }

// AsBool/AsFloat64/AsInt/AsString unwrap Data without coercion; callers
// must already know the Kind matches (the inferencer / emitter guarantee
// this for statically-typed slots; dynamic code should coerce instead).
func (v Value) AsBool() bool       { return v.Data.(bool) }
func (v Value) AsFloat64() float64 { return v.Data.(float64) }
func (v Value) AsInt() int64       { return v.Data.(int64) }
func (v Value) AsString() string   { return v.Data.(string) }
func (v Value) AsRope() *Rope      { return v.Data.(*Rope) }
func (v Value) AsObject() HostObject { o, _ := v.Data.(HostObject); return o }
func (v Value) AsCallable() Callable { c, _ := v.Data.(Callable); return c }

// TypeOf implements the script-visible `typeof` operator.
func (v Value) TypeOf() string {
	switch v.Kind {
	case types.KindUndefined:
		return "undefined"
	case types.KindNull:
		return "object" // ECMAScript quirk: typeof null === "object"
	case types.KindBool:
		return "boolean"
	case types.KindString, types.KindRope:
		return "string"
	case types.KindFunction:
		return "function"
	case types.KindObject:
		return "object"
	default:
		if types.IsNumeric(v.Kind) {
			return "number"
		}
		return "undefined"
	}
}

func (v Value) GoString() string {
	return fmt.Sprintf("Value{%s %v}", v.Kind, v.Data)
}
