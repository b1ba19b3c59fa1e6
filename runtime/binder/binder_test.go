package binder_test

import (
	"testing"

	"github.com/nitrassic/nitrassic/runtime/binder"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/value"
)

// TestOverloadSelectionByArgumentKind exercises §8 scenario 6: given a
// method group with a string overload and a float64 overload of the same
// arity, binder.Resolve must pick the exact-kind match rather than the one
// requiring coercion.
func TestOverloadSelectionByArgumentKind(t *testing.T) {
	p := proto.New("Logger", nil)
	p.DefineMethod("log", func(s string) string { return "string:" + s })
	p.DefineMethod("log", func(n float64) string { return "number" })
	group, _ := p.LookupMethod("log")

	m, args, err := binder.Resolve(group, value.Value{}, false, []value.Value{value.Str("x")})
	if err != nil {
		t.Fatalf("Resolve(string arg): %v", err)
	}
	out := m.Fn.Call(args)
	if got := out[0].String(); got != "string:x" {
		t.Errorf("resolved overload returned %q, want %q", got, "string:x")
	}

	m2, args2, err := binder.Resolve(group, value.Value{}, false, []value.Value{value.Float64(1.5)})
	if err != nil {
		t.Fatalf("Resolve(number arg): %v", err)
	}
	out2 := m2.Fn.Call(args2)
	if got := out2[0].String(); got != "number" {
		t.Errorf("resolved overload returned %q, want %q", got, "number")
	}
}

func TestResolveNoMatchingOverload(t *testing.T) {
	p := proto.New("Obj", nil)
	p.DefineMethod("pair", func(a, b string) string { return a + b })
	group, _ := p.LookupMethod("pair")

	_, _, err := binder.Resolve(group, value.Value{}, false, []value.Value{value.Str("only one")})
	if err == nil {
		t.Fatalf("expected a BindError when arg count does not match any overload's arity")
	}
}

// TestCoerceInterfaceParamPassesActualValue guards against a regression
// of a bug where a host method's `any`/interface{} parameter received
// v.GoString()'s debug string instead of the real payload.
func TestCoerceInterfaceParamPassesActualValue(t *testing.T) {
	p := proto.New("Obj", nil)
	p.DefineMethod("accept", func(v any) any { return v })
	group, _ := p.LookupMethod("accept")

	m, args, err := binder.Resolve(group, value.Value{}, false, []value.Value{value.Float64(42)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	out := m.Fn.Call(args)
	got, ok := out[0].Interface().(float64)
	if !ok || got != 42 {
		t.Fatalf("any-typed parameter received %#v, want float64(42)", out[0].Interface())
	}
}

// widgetReceiver stands in for a reflected host type's receiver, the way
// proto.ReflectPrototype binds an unbound method's first parameter; it
// implements value.HostObject directly so it can be wrapped by value.Obj
// the way stdlib's consoleHost is.
type widgetReceiver struct{ tag string }

func (widgetReceiver) ClassName() string                       { return "Widget" }
func (widgetReceiver) Invoke(string) (value.Value, bool, error) { return value.Value{}, false, nil }

// TestResolveCoercesHostReceiver covers dispatching a reflected method
// with a real receiver Value, not just free functions (hasReceiver=true,
// mirroring how stdlib's consoleHost dispatches console.group/log).
func TestResolveCoercesHostReceiver(t *testing.T) {
	p := proto.New("Widget", nil)
	p.DefineMethod("Label", func(w widgetReceiver, suffix string) string { return w.tag + ":" + suffix })
	group, _ := p.LookupMethod("Label")

	receiver := value.Obj(widgetReceiver{tag: "w1"})
	m, args, err := binder.Resolve(group, receiver, true, []value.Value{value.Str("go")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	out := m.Fn.Call(args)
	if got := out[0].String(); got != "w1:go" {
		t.Errorf("receiver dispatch returned %q, want %q", got, "w1:go")
	}
}

func TestResolveCoercesNumberToString(t *testing.T) {
	p := proto.New("Obj", nil)
	p.DefineMethod("tag", func(s string) string { return s })
	group, _ := p.LookupMethod("tag")

	m, args, err := binder.Resolve(group, value.Value{}, false, []value.Value{value.Float64(42)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	out := m.Fn.Call(args)
	if got := out[0].String(); got != "42" {
		t.Errorf("coerced call returned %q, want %q", got, "42")
	}
}
