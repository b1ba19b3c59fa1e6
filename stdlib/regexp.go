package stdlib

import (
	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

// installRegExp wires a minimal RegExp (§C "RegExp: test()/exec() via
// dlclark/regexp2, the same engine regex literals already use, not Go's
// RE2-based regexp package"). `new RegExp(pattern, flags)` builds an
// uncached Regex via vm.NewRegex; regex literals keep using the VM's
// once-per-source-position cache (vm.VM.regex) and share this same
// prototype via VM.RegexProto so both forms expose test/exec/toString.
func installRegExp(e *engine.Engine) {
	rp := proto.New("RegExp.prototype", nil)
	rp.DefineProperty("test", nativeFn("test", regexTest), false)
	rp.DefineProperty("exec", nativeFn("exec", regexExec), false)
	rp.DefineProperty("toString", nativeFn("toString", regexToString), false)
	rp.Bake()
	e.VM.RegexProto = rp

	ctor := &vm.NativeFunc{
		Name: "RegExp",
		Call: func(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
			return regexConstruct(m, args)
		},
		Construct: func(m *vm.VM, args []value.Value) (value.Value, error) {
			return regexConstruct(m, args)
		},
	}
	e.SetGlobal("RegExp", value.Func(ctor), true)
}

func regexConstruct(m *vm.VM, args []value.Value) (value.Value, error) {
	pattern := value.ToString(arg(args, 0))
	flags := ""
	if len(args) > 1 {
		flags = value.ToString(args[1])
	}
	re, err := vm.NewRegex(pattern, flags)
	if err != nil {
		return value.Undefined(), err
	}
	re.SetProto(m.RegexProto)
	return value.Obj(re), nil
}

func asRegex(v value.Value) (*vm.Regex, bool) {
	if v.Kind != types.KindObject {
		return nil, false
	}
	r, ok := v.AsObject().(*vm.Regex)
	return r, ok
}

func regexTest(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	re, ok := asRegex(this)
	if !ok {
		return value.Bool(false), wrongArgs("RegExp.prototype.test")
	}
	ok2, err := re.Test(value.ToString(arg(args, 0)))
	if err != nil {
		return value.Undefined(), err
	}
	return value.Bool(ok2), nil
}

func regexExec(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	re, ok := asRegex(this)
	if !ok {
		return value.Null(), wrongArgs("RegExp.prototype.exec")
	}
	groups, err := re.ExecGroups(value.ToString(arg(args, 0)))
	if err != nil {
		return value.Undefined(), err
	}
	if groups == nil {
		return value.Null(), nil
	}
	elems := make([]value.Value, len(groups))
	for i, g := range groups {
		elems[i] = value.Str(g)
	}
	return value.Obj(vm.NewArray(elems, m.ArrayProto)), nil
}

func regexToString(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	re, ok := asRegex(this)
	if !ok {
		return value.Str(""), nil
	}
	return value.Str("/" + re.Source + "/"), nil
}
