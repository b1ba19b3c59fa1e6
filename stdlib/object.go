package stdlib

import (
	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

// installObject wires the `Object` global (§C "Object.keys/
// getOwnPropertyNames/defineProperty (exercises enumeration attributes,
// §4.2)"): a callable/constructible NativeFunc whose own static
// properties (not instance properties — these are looked up directly on
// the function value per the vm.getProperty NativeFunc.Proto carve-out)
// hold the Object.* static methods.
func installObject(e *engine.Engine) {
	op := e.VM.ObjectProto
	op.DefineProperty("toString", nativeFn("toString", objectToString), false)
	op.DefineProperty("valueOf", nativeFn("valueOf", objectValueOf), false)
	op.DefineProperty("hasOwnProperty", nativeFn("hasOwnProperty", objectHasOwnProperty), false)

	statics := proto.New("Object", nil)
	statics.DefineProperty("keys", nativeFn("keys", objectKeys), false)
	statics.DefineProperty("values", nativeFn("values", objectValues), false)
	statics.DefineProperty("getOwnPropertyNames", nativeFn("getOwnPropertyNames", objectOwnPropertyNames), false)
	statics.DefineProperty("defineProperty", nativeFn("defineProperty", objectDefineProperty), false)
	statics.DefineProperty("assign", nativeFn("assign", objectAssign), false)
	statics.Bake()

	ctor := &vm.NativeFunc{
		Name:  "Object",
		Proto: statics,
		Call: func(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
			return value.Obj(proto.NewInstance("Object", m.ObjectProto)), nil
		},
		Construct: func(m *vm.VM, args []value.Value) (value.Value, error) {
			return value.Obj(proto.NewInstance("Object", m.ObjectProto)), nil
		},
	}
	e.SetGlobal("Object", value.Func(ctor), true)
}

func asHostObject(v value.Value) (proto.Object, bool) {
	if v.Kind != types.KindObject {
		return nil, false
	}
	o, ok := v.AsObject().(proto.Object)
	return o, ok
}

func objectKeys(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	obj, ok := asHostObject(arg(args, 0))
	if !ok {
		return value.Obj(vm.NewArray(nil, m.ArrayProto)), nil
	}
	keys := obj.OwnKeys()
	elems := make([]value.Value, len(keys))
	for i, k := range keys {
		elems[i] = value.Str(k)
	}
	return value.Obj(vm.NewArray(elems, m.ArrayProto)), nil
}

// objectValues mirrors objectKeys but returns each key's current value
// instead of the key name (Object.values).
func objectValues(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	obj, ok := asHostObject(arg(args, 0))
	if !ok {
		return value.Obj(vm.NewArray(nil, m.ArrayProto)), nil
	}
	keys := obj.OwnKeys()
	elems := make([]value.Value, 0, len(keys))
	for _, k := range keys {
		v, _ := obj.Get(k)
		elems = append(elems, v)
	}
	return value.Obj(vm.NewArray(elems, m.ArrayProto)), nil
}

// objectOwnPropertyNames differs from Object.keys in that it also
// surfaces non-enumerable own properties (§8 "Testable properties": a
// property with Enumerable=false does not appear in for-in but DOES
// appear in getOwnPropertyNames). Only *proto.Instance tracks
// per-property enumerability today; other host object kinds (e.g.
// vm.Array) fall back to their plain OwnKeys.
func objectOwnPropertyNames(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	if inst, ok := arg(args, 0).AsObject().(*proto.Instance); ok {
		keys := inst.OwnKeysAll()
		elems := make([]value.Value, len(keys))
		for i, k := range keys {
			elems[i] = value.Str(k)
		}
		return value.Obj(vm.NewArray(elems, m.ArrayProto)), nil
	}
	return objectKeys(m, this, args)
}

func objectDefineProperty(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	inst, ok := arg(args, 0).AsObject().(*proto.Instance)
	if !ok {
		return value.Undefined(), wrongArgs("Object.defineProperty")
	}
	name := value.ToString(arg(args, 1))
	descriptor, ok := asHostObject(arg(args, 2))
	if !ok {
		return value.Undefined(), wrongArgs("Object.defineProperty")
	}
	v, _ := descriptor.Get("value")
	enumerable := false
	if ev, ok := descriptor.Get("enumerable"); ok {
		enumerable = value.ToBoolean(ev)
	}
	inst.DefineOwn(name, v, enumerable)
	return arg(args, 0), nil
}

// objectToString backs Object.prototype.toString, the default `toString`
// every plain object inherits (§8 "toString" in {} is true — this is the
// property that makes that `in` check succeed).
func objectToString(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	if obj, ok := asHostObject(this); ok {
		return value.Str("[object " + obj.ClassName() + "]"), nil
	}
	return value.Str("[object Object]"), nil
}

func objectValueOf(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	return this, nil
}

func objectHasOwnProperty(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	obj, ok := asHostObject(this)
	if !ok {
		return value.Bool(false), nil
	}
	name := value.ToString(arg(args, 0))
	for _, k := range obj.OwnKeys() {
		if k == name {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func objectAssign(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	target, ok := asHostObject(arg(args, 0))
	if !ok {
		return arg(args, 0), wrongArgs("Object.assign")
	}
	for _, src := range args[1:] {
		source, ok := asHostObject(src)
		if !ok {
			continue
		}
		for _, k := range source.OwnKeys() {
			v, _ := source.Get(k)
			_ = target.Set(k, v)
		}
	}
	return arg(args, 0), nil
}
