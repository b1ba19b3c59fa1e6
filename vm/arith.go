package vm

import (
	"math"

	"github.com/nitrassic/nitrassic/emit"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
)

// binaryOp executes one of the emitter's binary arithmetic/bitwise/
// comparison opcodes (§4.6/§4.7). The narrow (monomorphized) opcodes
// trust the inferencer's typing and operate directly on the tagged
// Kinds; the *Dynamic opcodes re-derive the right behavior from the
// operands' runtime Kinds exactly as §4.7's "(d) unknown" case describes.
func (m *VM) binaryOp(op emit.OpCode, a, b value.Value) (value.Value, error) {
	switch op {
	case emit.OpAddDynamic:
		return m.addDynamic(a, b)
	case emit.OpAddRope:
		return value.RopeOf(a, b), nil
	case emit.OpAddInt:
		kind, ok := types.MostAccurateInteger(a.Kind, b.Kind)
		if !ok {
			return value.Float64(value.ToNumber(a) + value.ToNumber(b)), nil
		}
		return value.Int(kind, int64(value.ToInteger(a))+int64(value.ToInteger(b))), nil
	case emit.OpAddFloat:
		return value.Float64(value.ToNumber(a) + value.ToNumber(b)), nil

	case emit.OpSubFloat:
		return value.Float64(value.ToNumber(a) - value.ToNumber(b)), nil
	case emit.OpMulFloat:
		return value.Float64(value.ToNumber(a) * value.ToNumber(b)), nil
	case emit.OpDivFloat:
		return value.Float64(value.ToNumber(a) / value.ToNumber(b)), nil
	case emit.OpModFloat:
		return value.Float64(floatMod(value.ToNumber(a), value.ToNumber(b))), nil

	// Never emitted today (§4.6 always lowers -,*,/,% to the *Float
	// opcodes above) but implemented for taxonomy completeness.
	case emit.OpSubInt:
		kind := mostAccurateOrFallback(a.Kind, b.Kind)
		return value.Int(kind, int64(value.ToInteger(a))-int64(value.ToInteger(b))), nil
	case emit.OpMulInt:
		kind := mostAccurateOrFallback(a.Kind, b.Kind)
		return value.Int(kind, int64(value.ToInteger(a))*int64(value.ToInteger(b))), nil
	case emit.OpDivInt:
		kind := mostAccurateOrFallback(a.Kind, b.Kind)
		bi := int64(value.ToInteger(b))
		if bi == 0 {
			return value.Value{}, m.rangeError("Division by zero")
		}
		return value.Int(kind, int64(value.ToInteger(a))/bi), nil
	case emit.OpModInt:
		kind := mostAccurateOrFallback(a.Kind, b.Kind)
		bi := int64(value.ToInteger(b))
		if bi == 0 {
			return value.Value{}, m.rangeError("Division by zero")
		}
		return value.Int(kind, int64(value.ToInteger(a))%bi), nil

	case emit.OpBitAnd:
		return value.Int(types.KindInt32, int64(value.ToInt32(a)&value.ToInt32(b))), nil
	case emit.OpBitOr:
		return value.Int(types.KindInt32, int64(value.ToInt32(a)|value.ToInt32(b))), nil
	case emit.OpBitXor:
		return value.Int(types.KindInt32, int64(value.ToInt32(a)^value.ToInt32(b))), nil
	case emit.OpShl:
		return value.Int(types.KindInt32, int64(value.ToInt32(a)<<(value.ToUint32(b)&31))), nil
	case emit.OpShr:
		return value.Int(types.KindInt32, int64(value.ToInt32(a)>>(value.ToUint32(b)&31))), nil
	case emit.OpUShr:
		return value.Float64(float64(value.ToUint32(a) >> (value.ToUint32(b) & 31))), nil

	case emit.OpLooseEq:
		return value.Bool(value.LooseEquals(a, b)), nil
	case emit.OpLooseNotEq:
		return value.Bool(!value.LooseEquals(a, b)), nil
	case emit.OpStrictEq:
		return value.Bool(value.StrictEquals(a, b)), nil
	case emit.OpStrictNotEq:
		return value.Bool(!value.StrictEquals(a, b)), nil

	case emit.OpLessDynamic, emit.OpLessNum, emit.OpLessStr:
		return value.Bool(value.LessThan(a, b)), nil
	case emit.OpGreaterDynamic, emit.OpGreaterNum, emit.OpGreaterStr:
		return value.Bool(value.GreaterThan(a, b)), nil
	case emit.OpLessEqDynamic, emit.OpLessEqNum, emit.OpLessEqStr:
		return value.Bool(value.LessOrEqual(a, b)), nil
	case emit.OpGreaterEqDynamic, emit.OpGreaterEqNum, emit.OpGreaterEqStr:
		return value.Bool(value.GreaterOrEqual(a, b)), nil

	default:
		return value.Value{}, m.typeError("unsupported binary operator")
	}
}

func mostAccurateOrFallback(a, b types.Kind) types.Kind {
	if kind, ok := types.MostAccurateInteger(a, b); ok {
		return kind
	}
	return types.KindInt32
}

// floatMod implements §4.1's `%` for numbers: the IEEE remainder
// ECMAScript defines as a - (b * trunc(a/b)), which differs from math.Mod
// only in how NaN/Inf edge cases are reached (math.Mod already matches
// for finite operands).
func floatMod(a, b float64) float64 {
	return math.Mod(a, b)
}

// addDynamic implements §4.7's "+ with mixed/unknown types": strings (and
// ropes) win over numeric addition once either operand primitivizes to a
// string; everything else funnels through to_number.
func (m *VM) addDynamic(a, b value.Value) (value.Value, error) {
	pa, err := value.ToPrimitive(a, value.HintNone)
	if err != nil {
		return value.Value{}, m.typeError(err.Error())
	}
	pb, err := value.ToPrimitive(b, value.HintNone)
	if err != nil {
		return value.Value{}, m.typeError(err.Error())
	}
	if types.IsStringy(pa.Kind) || types.IsStringy(pb.Kind) {
		return value.RopeOf(forceString(pa), forceString(pb)), nil
	}
	if types.IsInteger(pa.Kind) && types.IsInteger(pb.Kind) {
		kind, ok := types.MostAccurateInteger(pa.Kind, pb.Kind)
		if ok {
			return value.Int(kind, int64(value.ToInteger(pa))+int64(value.ToInteger(pb))), nil
		}
	}
	return value.Float64(value.ToNumber(pa) + value.ToNumber(pb)), nil
}

func forceString(v value.Value) value.Value {
	if types.IsStringy(v.Kind) {
		return v
	}
	return value.Str(value.ToString(v))
}
