package engine_test

import (
	"testing"

	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/stdlib"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

func eval(t *testing.T, src string) value.Value {
	t.Helper()
	e := engine.New()
	stdlib.Install(e)
	v, err := e.Run(&engine.StringScriptSource{Text: src})
	if err != nil {
		t.Fatalf("Run(%q): %v", src, err)
	}
	return v
}

func TestRunArithmeticCoercion(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1 + 2", "3"},
		{"'a' + 1", "a1"},
		{"1 + '2'", "12"},
		{"'5' - 2", "3"},
		{"true + 1", "2"},
	}
	for _, c := range cases {
		got := value.ToString(eval(t, c.src))
		if got != c.want {
			t.Errorf("eval(%q) = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestRunEquality(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"1 == '1'", true},
		{"1 === '1'", false},
		{"null == undefined", true},
		{"null === undefined", false},
		{"NaN === NaN", false},
	}
	for _, c := range cases {
		got := value.ToBoolean(eval(t, c.src))
		if got != c.want {
			t.Errorf("eval(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestRunHoistedClosure(t *testing.T) {
	src := `
	function makeCounter() {
		let n = 0;
		function inc() { n = n + 1; return n; }
		return inc;
	}
	var c = makeCounter();
	c();
	c();
	c();
	`
	got := value.ToString(eval(t, src))
	if got != "3" {
		t.Errorf("hoisted closure counter = %q, want %q", got, "3")
	}
}

func TestRunFunctionHoisting(t *testing.T) {
	src := `
	var result = greet("world");
	function greet(name) { return "hello " + name; }
	result;
	`
	got := value.ToString(eval(t, src))
	if got != "hello world" {
		t.Errorf("hoisted function call = %q, want %q", got, "hello world")
	}
}

func TestCompileErrorOnUndefinedName(t *testing.T) {
	e := engine.New()
	_, err := e.Compile(&engine.StringScriptSource{Text: "doesNotExist;"})
	if err == nil {
		t.Fatalf("expected a compile error for an undeclared name")
	}
	if _, ok := err.(*engine.CompileError); !ok {
		t.Fatalf("expected *engine.CompileError, got %T", err)
	}
}

// TestInOperatorPrototypeLookup covers §8 scenario 3: "toString" in {} is
// true (Object.prototype provides it), an arbitrary name is not.
func TestInOperatorPrototypeLookup(t *testing.T) {
	e := engine.New()
	stdlib.Install(e)
	cases := []struct {
		src  string
		want bool
	}{
		{`"toString" in {}`, true},
		{`"zzz" in {}`, false},
	}
	for _, c := range cases {
		v, err := e.Run(&engine.StringScriptSource{Text: c.src})
		if err != nil {
			t.Fatalf("Run(%q): %v", c.src, err)
		}
		if got := value.ToBoolean(v); got != c.want {
			t.Errorf("eval(%q) = %v, want %v", c.src, got, c.want)
		}
	}
}

// TestSharedRegexLiteralIdentity covers §8 "Shared regex literal:
// evaluating the same literal twice yields the same instance (observable
// via ===)."
func TestSharedRegexLiteralIdentity(t *testing.T) {
	src := `
	function same() { return /abc/; }
	same() === same();
	`
	got := value.ToBoolean(eval(t, src))
	if !got {
		t.Errorf("evaluating the same regex literal twice should yield the same instance, got not-equal")
	}
}

func TestSetGlobalAndCallGlobalFunction(t *testing.T) {
	e := engine.New()
	e.SetGlobalFunction("double", func(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
		return value.Float64(value.ToInteger(args[0]) * 2), nil
	})

	if !e.HasGlobal("double") {
		t.Fatalf("expected HasGlobal(\"double\") to be true after SetGlobalFunction")
	}

	got, err := e.CallGlobalFunction("double", []value.Value{value.Float64(21)})
	if err != nil {
		t.Fatalf("CallGlobalFunction: %v", err)
	}
	if value.ToString(got) != "42" {
		t.Errorf("double(21) = %s, want 42", value.ToString(got))
	}

	e.SetGlobal("answer", value.Float64(42), true)
	v, ok := e.GetGlobal("answer")
	if !ok || value.ToString(v) != "42" {
		t.Errorf("GetGlobal(\"answer\") = (%v, %v), want (42, true)", v, ok)
	}
}
