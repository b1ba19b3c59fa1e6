package types

import "testing"

func TestMostAccurateInteger(t *testing.T) {
	tests := []struct {
		a, b Kind
		want Kind
		ok   bool
	}{
		{KindInt8, KindInt32, KindInt32, true},
		{KindUint32, KindInt32, KindUint32, true},
		{KindInt64, KindUint64, KindUint64, true},
		{KindFloat64, KindInt32, KindAny, false},
	}
	for _, tt := range tests {
		got, ok := MostAccurateInteger(tt.a, tt.b)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("MostAccurateInteger(%s,%s) = %s,%v want %s,%v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsNumericIsStringy(t *testing.T) {
	if !IsNumeric(KindInt32) || !IsNumeric(KindFloat64) {
		t.Fatal("expected int32/float64 numeric")
	}
	if IsNumeric(KindString) {
		t.Fatal("string must not be numeric")
	}
	if !IsStringy(KindRope) || !IsStringy(KindString) {
		t.Fatal("string/rope must be stringy")
	}
}

type fakeShape string

func (f fakeShape) ShapeName() string { return string(f) }

func TestTypeEqual(t *testing.T) {
	fa, fb := fakeShape("Foo"), fakeShape("Foo")
	a := ObjectOf(&fa)
	b := ObjectOf(&fb)
	if a.Equal(b) {
		t.Fatal("distinct shape values of the same underlying string should not compare equal by identity")
	}
	if !a.Equal(a) {
		t.Fatal("a type must equal itself")
	}
}
