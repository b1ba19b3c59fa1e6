package proto_test

import (
	"reflect"
	"testing"

	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/value"
)

func TestLookupWalksParentChain(t *testing.T) {
	base := proto.New("Base", nil)
	base.DefineProperty("greeting", value.Str("hi"), true)
	derived := proto.New("Derived", base)
	derived.DefineProperty("name", value.Str("nitrassic"), true)
	base.Bake()
	derived.Bake()

	if _, _, ok := derived.LookupProperty("greeting"); !ok {
		t.Fatalf("expected derived to inherit %q from its parent", "greeting")
	}
	if _, _, ok := base.LookupProperty("name"); ok {
		t.Fatalf("base must not see derived's own property %q", "name")
	}
	if !derived.Has("greeting") || !derived.Has("name") {
		t.Fatalf("Has should see both own and inherited properties")
	}
	if derived.Has("zzz") {
		t.Fatalf("Has(%q) should be false for an undeclared property", "zzz")
	}
}

func TestOwnNamesOnlyEnumerable(t *testing.T) {
	p := proto.New("Obj", nil)
	p.DefineProperty("visible", value.Float64(1), true)
	p.DefineProperty("hidden", value.Float64(2), false)
	p.Bake()

	names := p.OwnNames()
	if len(names) != 1 || names[0] != "visible" {
		t.Fatalf("OwnNames() = %v, want [visible]", names)
	}
	if !p.Has("hidden") {
		t.Fatalf("a non-enumerable property must still be reachable via Has/LookupProperty")
	}
}

func TestDefineAfterBakePanics(t *testing.T) {
	p := proto.New("Obj", nil)
	p.Bake()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected DefineProperty after Bake to panic")
		}
	}()
	p.DefineProperty("late", value.Undefined(), true)
}

func TestMethodGroupAccumulatesOverloads(t *testing.T) {
	p := proto.New("Logger", nil)
	p.DefineMethod("log", func(s string) {})
	p.DefineMethod("log", func(n float64) {})

	group, ok := p.LookupMethod("log")
	if !ok {
		t.Fatalf("expected a method group for %q", "log")
	}
	if len(group.Overloads) != 2 {
		t.Fatalf("len(Overloads) = %d, want 2", len(group.Overloads))
	}
}

// widget is a host Go type with one exported method, standing in for a
// real host binding (e.g. stdlib's consoleHost) in tests that exercise
// ReflectPrototype/Registry directly.
type widget struct{}

func (widget) Describe(label string) string { return "widget:" + label }

// TestReflectPrototypeBuildsMethodFromExportedGo verifies ReflectPrototype
// (§C2) turns an exported Go method into a callable MethodGroup entry,
// and that unexported methods are skipped.
func TestReflectPrototypeBuildsMethodFromExportedGo(t *testing.T) {
	p := proto.ReflectPrototype("Widget", reflect.TypeOf(widget{}), nil)
	group, ok := p.LookupMethod("Describe")
	if !ok {
		t.Fatalf("expected a %q method group reflected from widget's exported method", "Describe")
	}
	if len(group.Overloads) != 1 {
		t.Fatalf("len(Overloads) = %d, want 1", len(group.Overloads))
	}
	out := group.Overloads[0].Fn.Call([]reflect.Value{reflect.ValueOf(widget{}), reflect.ValueOf("x")})
	if got := out[0].String(); got != "widget:x" {
		t.Errorf("reflected method call returned %q, want %q", got, "widget:x")
	}
}

// TestRegistryBindLookupIdentity covers §8's "for every host type T
// registered twice, the engine returns the same prototype identity":
// binding a Go type once and looking it up repeatedly must yield the
// exact same *Prototype pointer, never a freshly reflected copy.
func TestRegistryBindLookupIdentity(t *testing.T) {
	r := proto.NewRegistry()
	goType := reflect.TypeOf(widget{})

	if _, ok := r.Lookup(goType); ok {
		t.Fatalf("a fresh Registry must not already have %v bound", goType)
	}

	bound := proto.ReflectPrototype("Widget", goType, nil)
	r.Bind(goType, bound)

	first, ok := r.Lookup(goType)
	if !ok {
		t.Fatalf("Lookup(%v) after Bind should succeed", goType)
	}
	second, ok := r.Lookup(goType)
	if !ok || second != first {
		t.Fatalf("repeated Lookup(%v) must return the same *Prototype, got %p and %p", goType, first, second)
	}
	if first != bound {
		t.Fatalf("Lookup should return the exact Prototype passed to Bind")
	}

	all := r.All()
	if len(all) != 1 || all[0] != bound {
		t.Fatalf("All() = %v, want a single-element slice containing the bound prototype", all)
	}
}
