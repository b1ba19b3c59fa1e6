package stdlib

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/runtime/binder"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

// consoleHost is the Go host type console reflects itself as (§C2
// "Reflection over a host type produces a prototype", §6 "PrototypeFor"):
// its one exported method is picked up automatically by
// proto.ReflectPrototype, and console.log's two argument-kind overloads
// are registered by hand onto the same reflected Prototype, so both paths
// share one Registry entry and one receiver type.
type consoleHost struct{}

func (consoleHost) ClassName() string { return "console" }

func (consoleHost) Invoke(string) (value.Value, bool, error) { return value.Undefined(), false, nil }

// Group backs console.group(label): a real exported Go method, reflected
// automatically rather than hand-registered, so ReflectPrototype has
// something to discover.
func (consoleHost) Group(label string) string { return "[group] " + label }

var consoleHostType = reflect.TypeOf(consoleHost{})

// installConsole wires `console.log`/`console.error`/`console.warn`,
// `console.group`, and a bare `print` alias. console.group and
// console.log's single-argument case are dispatched through
// runtime/binder against a Prototype built by runtime/proto's reflection
// machinery (§C2/§C3), rather than a single NativeFunc branching on Go
// type internally: repeated Install calls bind the same consoleHost type
// to the same Prototype instance (§8's host-type identity property), and
// console.log(1)/console.log("x") select distinct registered overloads
// the way scenario 6 describes for host overload resolution.
func installConsole(e *engine.Engine) {
	hostProto, ok := e.Registry.Lookup(consoleHostType)
	if !ok {
		hostProto = proto.ReflectPrototype("Console", consoleHostType, nil)
		hostProto.DefineMethod("Log", func(c consoleHost, s string) string { return s })
		hostProto.DefineMethod("Log", func(c consoleHost, n float64) string { return value.ToString(value.Float64(n)) })
		e.Registry.Bind(consoleHostType, hostProto)
	}

	consoleHostProto = hostProto

	p := proto.New("console", hostProto)
	p.DefineProperty("log", nativeFn("log", consoleLog), false)
	p.DefineProperty("info", nativeFn("info", logTo(stdout)), false)
	p.DefineProperty("warn", nativeFn("warn", logTo(stdout)), false)
	p.DefineProperty("error", nativeFn("error", logTo(stdout)), false)
	p.DefineProperty("group", nativeFn("group", consoleGroup), false)
	p.Bake()

	console := proto.NewInstance("console", p)
	e.SetGlobal("console", value.Obj(console), true)
	e.SetGlobalFunction("print", func(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
		fmt.Fprintln(stdout, joinArgs(args))
		return value.Undefined(), nil
	})
}

// consoleLog dispatches a single argument through the binder's overload
// resolution (the `Log` MethodGroup registered in installConsole); with
// zero or more than one argument it falls back to the plain space-joined
// form multi-arg logging needs, which no single overload models.
func consoleLog(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		fmt.Fprintln(stdout, joinArgs(args))
		return value.Undefined(), nil
	}
	hostGroup, ok := lookupConsoleHostMethod("Log")
	if !ok {
		fmt.Fprintln(stdout, joinArgs(args))
		return value.Undefined(), nil
	}
	method, callArgs, err := binder.Resolve(hostGroup, value.Obj(consoleHost{}), true, args)
	if err != nil {
		fmt.Fprintln(stdout, joinArgs(args))
		return value.Undefined(), nil
	}
	out, err := binder.Call(method, callArgs)
	if err != nil {
		return value.Undefined(), err
	}
	fmt.Fprintln(stdout, value.ToString(out))
	return value.Undefined(), nil
}

// consoleGroup backs console.group by resolving and calling the reflected
// Group method through the same binder path as consoleLog, rather than
// calling the Go method directly — this is what exercises ReflectPrototype's
// output as a real MethodGroup instead of treating it as a shortcut.
func consoleGroup(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	hostGroup, ok := lookupConsoleHostMethod("Group")
	if !ok {
		return value.Undefined(), wrongArgs("console.group")
	}
	method, callArgs, err := binder.Resolve(hostGroup, value.Obj(consoleHost{}), true, args)
	if err != nil {
		return value.Undefined(), err
	}
	out, err := binder.Call(method, callArgs)
	if err != nil {
		return value.Undefined(), err
	}
	fmt.Fprintln(stdout, value.ToString(out))
	return value.Undefined(), nil
}

// consoleHostProto is set once by installConsole to the Prototype bound
// to consoleHostType in the engine's Registry; consoleLog/consoleGroup
// read it to resolve method groups at call time.
var consoleHostProto *proto.Prototype

func lookupConsoleHostMethod(name string) (*proto.MethodGroup, bool) {
	if consoleHostProto == nil {
		return nil, false
	}
	return consoleHostProto.LookupMethod(name)
}

func logTo(w interface{ Write([]byte) (int, error) }) func(*vm.VM, value.Value, []value.Value) (value.Value, error) {
	return func(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
		fmt.Fprintln(w, joinArgs(args))
		return value.Undefined(), nil
	}
}

func joinArgs(args []value.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.ToString(a)
	}
	return strings.Join(parts, " ")
}
