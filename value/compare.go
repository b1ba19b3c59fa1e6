package value

import (
	"math"

	"github.com/nitrassic/nitrassic/types"
)

// LooseEquals implements §4.1's `==`: numeric/string cross-types fold
// (number==string coerces the string), booleans are numified, and an
// any-object pair primitivizes the object before retrying.
func LooseEquals(a, b Value) bool {
	if a.Kind == b.Kind {
		return StrictEquals(a, b)
	}
	if a.IsNullish() && b.IsNullish() {
		return true
	}
	if a.IsNullish() || b.IsNullish() {
		return false
	}
	switch {
	case types.IsNumeric(a.Kind) && types.IsStringy(b.Kind):
		return ToNumber(a) == ToNumber(b)
	case types.IsStringy(a.Kind) && types.IsNumeric(b.Kind):
		return ToNumber(a) == ToNumber(b)
	case a.Kind == types.KindBool:
		return LooseEquals(Float64(ToNumber(a)), b)
	case b.Kind == types.KindBool:
		return LooseEquals(a, Float64(ToNumber(b)))
	case a.Kind == types.KindObject && (types.IsNumeric(b.Kind) || types.IsStringy(b.Kind)):
		prim, err := ToPrimitive(a, HintNone)
		if err != nil {
			return false
		}
		return LooseEquals(prim, b)
	case b.Kind == types.KindObject && (types.IsNumeric(a.Kind) || types.IsStringy(a.Kind)):
		prim, err := ToPrimitive(b, HintNone)
		if err != nil {
			return false
		}
		return LooseEquals(a, prim)
	case types.IsNumeric(a.Kind) && types.IsNumeric(b.Kind):
		return ToNumber(a) == ToNumber(b)
	default:
		return false
	}
}

// StrictEquals implements §4.1's `===`: type equality modulo "all numeric
// kinds equal" and "string ≡ rope".
func StrictEquals(a, b Value) bool {
	aNum, bNum := types.IsNumeric(a.Kind), types.IsNumeric(b.Kind)
	aStr, bStr := types.IsStringy(a.Kind), types.IsStringy(b.Kind)
	switch {
	case aNum && bNum:
		return ToNumber(a) == ToNumber(b)
	case aStr && bStr:
		return ToString(a) == ToString(b)
	case a.Kind != b.Kind:
		return false
	}
	switch a.Kind {
	case types.KindUndefined, types.KindNull:
		return true
	case types.KindBool:
		return a.AsBool() == b.AsBool()
	case types.KindObject:
		return a.AsObject() == b.AsObject()
	case types.KindFunction:
		return a.AsCallable() == b.AsCallable()
	default:
		return false
	}
}

// SameValue implements §4.1's same_value: StrictEquals except NaN equals
// itself and +0 does not equal -0 (used by Object.is and §8's testable
// properties).
func SameValue(a, b Value) bool {
	if types.IsNumeric(a.Kind) && types.IsNumeric(b.Kind) {
		af, bf := ToNumber(a), ToNumber(b)
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		if af == 0 && bf == 0 {
			return math.Signbit(af) == math.Signbit(bf)
		}
		return af == bf
	}
	return StrictEquals(a, b)
}

// LessThan implements §4.1's `<`: primitivize both sides with hint=number;
// if both ended up strings compare ordinally, otherwise compare
// numerically with NaN producing false (ECMAScript's "undefined" result
// collapses to false for `<`).
func LessThan(a, b Value) bool {
	pa, err := ToPrimitive(a, HintNumber)
	if err != nil {
		return false
	}
	pb, err := ToPrimitive(b, HintNumber)
	if err != nil {
		return false
	}
	if types.IsStringy(pa.Kind) && types.IsStringy(pb.Kind) {
		return ToString(pa) < ToString(pb)
	}
	na, nb := ToNumber(pa), ToNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false
	}
	return na < nb
}

// GreaterThan mirrors LessThan with operands swapped, per §4.1.
func GreaterThan(a, b Value) bool { return LessThan(b, a) }

// LessOrEqual and GreaterOrEqual cannot be expressed as a negation of
// LessThan/GreaterThan: ECMAScript's relational operators produce false
// (not true) when either side primitivizes to NaN, so `!(a > b)` would
// wrongly report `NaN <= 1` as true. They re-run the same
// primitivize-then-compare shape directly instead.
func LessOrEqual(a, b Value) bool    { return relational(a, b, func(x, y float64) bool { return x <= y }, func(x, y string) bool { return x <= y }) }
func GreaterOrEqual(a, b Value) bool { return relational(a, b, func(x, y float64) bool { return x >= y }, func(x, y string) bool { return x >= y }) }

func relational(a, b Value, numOp func(float64, float64) bool, strOp func(string, string) bool) bool {
	pa, err := ToPrimitive(a, HintNumber)
	if err != nil {
		return false
	}
	pb, err := ToPrimitive(b, HintNumber)
	if err != nil {
		return false
	}
	if types.IsStringy(pa.Kind) && types.IsStringy(pb.Kind) {
		return strOp(ToString(pa), ToString(pb))
	}
	na, nb := ToNumber(pa), ToNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false
	}
	return numOp(na, nb)
}
