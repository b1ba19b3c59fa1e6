// Package stdlib instantiates the minimal host-library surface §1 and §6
// of spec.md describe as "external collaborators" the core need only
// supply enough of to exercise itself: console, Object, Array, JSON,
// Math, Date, and RegExp, each built from the same reflection/prototype
// machinery (package runtime/proto) and binder (package runtime/binder)
// the core provides, and installed onto a package engine.Engine's global
// scope.
//
// Grounded on the teacher's stdlib registration pattern
// (internal/interp/builtins, where global functions are installed onto
// the interpreter's root Environment at startup); Nitrassic generalizes
// that to host objects with their own property bags (console.log,
// Math.sqrt, JSON.stringify) instead of DWScript's flat global-function
// namespace, since ECMAScript's stdlib surface is namespaced by
// convention.
package stdlib

import (
	"fmt"
	"io"
	"os"

	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

// Install registers every stdlib builtin this package provides onto e's
// global scope and VM prototypes. Call it once, before the engine's first
// Compile (globals must be declared before the resolver's reference phase
// can see them, §5 "Phase B").
func Install(e *engine.Engine) {
	e.VM.ObjectProto = proto.New("Object.prototype", nil)
	e.VM.ArrayProto = proto.New("Array.prototype", e.VM.ObjectProto)
	e.VM.StringProto = proto.New("String.prototype", nil)

	installConsole(e)
	installObject(e)
	installArray(e)
	installMath(e)
	installJSON(e)
	installString(e)
	installDate(e)
	installRegExp(e)

	e.VM.ObjectProto.Bake()
	e.VM.ArrayProto.Bake()
	e.VM.StringProto.Bake()

	e.SetGlobal("globalThis", value.Undefined(), true) // replaced with a self-referencing proxy by the CLI if desired
	e.SetGlobal("undefined", value.Undefined(), false)
	e.SetGlobal("NaN", value.Float64(nan()), false)
	e.SetGlobal("Infinity", value.Float64(inf()), false)
}

func nan() float64 { var z float64; return z / z }
func inf() float64 { return 1e308 * 10 }

// nativeFn is a small helper constructing a callable, non-constructible
// value.Value wrapping a Go function in the VM's NativeFunc convention
// (§4.3 Binder's "engine"/"thisObj" synthesis happens directly in Go for
// the engine's own primordial bindings).
func nativeFn(name string, fn func(m *vm.VM, this value.Value, args []value.Value) (value.Value, error)) value.Value {
	return value.Func(&vm.NativeFunc{Name: name, Call: fn})
}

func arg(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.Undefined()
	}
	return args[i]
}

func wrongArgs(fname string) error {
	return fmt.Errorf("%s: wrong argument type", fname)
}

// stdout mirrors the teacher's plain fmt/io.Writer logging sinks
// (§A "structured logging" describes the generalization of that into
// Engine.log; this helper is for console's own stdout/stderr surface,
// which is unrelated to the engine's diagnostic logger).
var stdout io.Writer = os.Stdout
