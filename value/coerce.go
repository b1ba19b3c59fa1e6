package value

import (
	"math"
	"strconv"
	"strings"

	"github.com/nitrassic/nitrassic/types"
)

// ToBoolean implements §4.1's total to_boolean coercion.
func ToBoolean(v Value) bool {
	switch v.Kind {
	case types.KindUndefined, types.KindNull:
		return false
	case types.KindBool:
		return v.AsBool()
	case types.KindString:
		return v.AsString() != ""
	case types.KindRope:
		return ToString(v) != ""
	case types.KindFloat64:
		f := v.AsFloat64()
		return f != 0 && !math.IsNaN(f)
	case types.KindObject, types.KindFunction:
		return true
	default:
		if types.IsInteger(v.Kind) {
			return v.AsInt() != 0
		}
		return false
	}
}

// ToNumber implements §4.1's total to_number coercion.
func ToNumber(v Value) float64 {
	switch v.Kind {
	case types.KindUndefined:
		return math.NaN()
	case types.KindNull:
		return 0
	case types.KindBool:
		if v.AsBool() {
			return 1
		}
		return 0
	case types.KindFloat64:
		return v.AsFloat64()
	case types.KindString:
		return stringToNumber(v.AsString())
	case types.KindRope:
		return stringToNumber(ToString(v))
	case types.KindObject:
		prim, err := ToPrimitive(v, HintNumber)
		if err != nil || prim.Kind == types.KindObject {
			return math.NaN()
		}
		return ToNumber(prim)
	default:
		if types.IsInteger(v.Kind) {
			return float64(v.AsInt())
		}
		return math.NaN()
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if i, err := strconv.ParseInt(s[2:], 16, 64); err == nil {
			return float64(i)
		}
	}
	return math.NaN()
}

// ToString implements §4.1's total to_string coercion, flattening Ropes.
func ToString(v Value) string {
	switch v.Kind {
	case types.KindUndefined:
		return "undefined"
	case types.KindNull:
		return "null"
	case types.KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case types.KindString:
		return v.AsString()
	case types.KindRope:
		r := v.AsRope()
		return ToString(r.Left) + ToString(r.Right)
	case types.KindFloat64:
		return formatNumber(v.AsFloat64())
	case types.KindObject:
		prim, err := ToPrimitive(v, HintString)
		if err != nil {
			return ""
		}
		if prim.Kind == types.KindObject {
			return "[object " + v.AsObject().ClassName() + "]"
		}
		return ToString(prim)
	case types.KindFunction:
		return "function " + v.AsCallable().FunctionName() + "() { [native code] }"
	default:
		if types.IsInteger(v.Kind) {
			return strconv.FormatInt(v.AsInt(), 10)
		}
		return ""
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// Hint selects which coercion ToPrimitive tries first.
type Hint int

const (
	HintNone Hint = iota
	HintNumber
	HintString
)

// ToPrimitive implements §4.1: for a host object, try valueOf then
// toString (reversed for HintString); every other kind is already
// primitive and is returned unchanged. Returns a TypeError-flavored error
// if neither conversion method yields a primitive.
func ToPrimitive(v Value, hint Hint) (Value, error) {
	if v.Kind != types.KindObject {
		return v, nil
	}
	obj := v.AsObject()
	methods := []string{"valueOf", "toString"}
	if hint == HintString {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		result, ok, err := obj.Invoke(name)
		if err != nil {
			return Value{}, err
		}
		if ok && result.Kind != types.KindObject {
			return result, nil
		}
	}
	return Value{}, &CoercionError{Message: "Cannot convert object to primitive value"}
}

// CoercionError is returned by ToPrimitive when no primitive could be
// produced; callers translate it into a script-visible TypeError (§7).
type CoercionError struct{ Message string }

func (e *CoercionError) Error() string { return e.Message }

// ToInt32 implements §4.1's to_int32: to_number, then wrap to 32 bits.
func ToInt32(v Value) int32 {
	return int32(toUint32Bits(ToNumber(v)))
}

// ToUint32 implements §4.1's to_uint32.
func ToUint32(v Value) uint32 {
	return toUint32Bits(ToNumber(v))
}

func toUint32Bits(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	i := int64(math.Trunc(f))
	return uint32(uint64(i) & 0xFFFFFFFF)
}

// ToInteger implements §4.1's to_integer: NaN→0, else truncate toward zero
// without wrapping to any fixed width.
func ToInteger(v Value) float64 {
	f := ToNumber(v)
	if math.IsNaN(f) {
		return 0
	}
	if math.IsInf(f, 0) {
		return f
	}
	return math.Trunc(f)
}

func ToInt8(v Value) int8   { return int8(toUint32Bits(ToNumber(v))) }
func ToInt16(v Value) int16 { return int16(toUint32Bits(ToNumber(v))) }
func ToUint8(v Value) uint8 { return uint8(toUint32Bits(ToNumber(v))) }
func ToUint16(v Value) uint16 { return uint16(toUint32Bits(ToNumber(v))) }
