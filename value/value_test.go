package value

import (
	"math"
	"testing"
)

func TestStrictEqualityScenarios(t *testing.T) {
	if StrictEquals(Float64(math.NaN()), Float64(math.NaN())) {
		t.Fatal("NaN !== NaN")
	}
	if !StrictEquals(Float64(0), Float64(math.Copysign(0, -1))) {
		t.Fatal("+0 === -0")
	}
	if StrictEquals(Str("5"), Float64(5)) {
		t.Fatal(`"5" !== 5`)
	}
}

func TestSameValue(t *testing.T) {
	if !SameValue(Float64(math.NaN()), Float64(math.NaN())) {
		t.Fatal("same_value(NaN, NaN) must be true")
	}
	if SameValue(Float64(0), Float64(math.Copysign(0, -1))) {
		t.Fatal("same_value(+0, -0) must be false")
	}
}

func TestLooseEquality(t *testing.T) {
	if !LooseEquals(Float64(0), Str("0")) {
		t.Fatal("0 == \"0\" must be true")
	}
	if !LooseEquals(Null(), Undefined()) {
		t.Fatal("null == undefined must be true")
	}
	if StrictEquals(Null(), Undefined()) {
		t.Fatal("null === undefined must be false")
	}
}

func TestToStringCoercions(t *testing.T) {
	if ToString(Undefined()) != "undefined" || ToString(Null()) != "null" {
		t.Fatal("unexpected coercion of singletons")
	}
}

func TestRopeFlattensLazily(t *testing.T) {
	r := RopeOf(Str("foo"), Str("bar"))
	if r.Kind.String() != "rope" {
		t.Fatal("expected rope kind")
	}
	if ToString(r) != "foobar" {
		t.Fatalf("got %q", ToString(r))
	}
}

func TestRelationalOperatorsHandleNaN(t *testing.T) {
	nan := Float64(math.NaN())
	one := Float64(1)
	if LessThan(nan, one) || LessThan(one, nan) {
		t.Fatal("comparisons against NaN must be false")
	}
	if LessOrEqual(nan, one) || GreaterOrEqual(nan, one) {
		t.Fatal("<=/>= against NaN must be false, not the negation of </>")
	}
}
