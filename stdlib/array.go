package stdlib

import (
	"strings"

	"github.com/nitrassic/nitrassic/engine"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
	"github.com/nitrassic/nitrassic/vm"
)

// installArray wires the `Array` global and its instance prototype (§C
// "Array.isArray and a host Array prototype with push/pop/map/join
// (exercises MethodGroup and reflected indexers)"). Methods are plain
// data properties holding NativeFunc values rather than proto.MethodGroup
// entries — §4.2's reflection-based MethodGroup construction exists for
// host Go types reflected via ReflectPrototype; these are the engine's
// own primordial bindings, installed the same direct way package vm's
// NativeFunc doc comment describes for console/Object/Array alike.
func installArray(e *engine.Engine) {
	ap := e.VM.ArrayProto
	ap.DefineProperty("push", nativeFn("push", arrayPush), false)
	ap.DefineProperty("pop", nativeFn("pop", arrayPop), false)
	ap.DefineProperty("shift", nativeFn("shift", arrayShift), false)
	ap.DefineProperty("unshift", nativeFn("unshift", arrayUnshift), false)
	ap.DefineProperty("join", nativeFn("join", arrayJoin), false)
	ap.DefineProperty("map", nativeFn("map", arrayMap), false)
	ap.DefineProperty("forEach", nativeFn("forEach", arrayForEach), false)
	ap.DefineProperty("filter", nativeFn("filter", arrayFilter), false)
	ap.DefineProperty("indexOf", nativeFn("indexOf", arrayIndexOf), false)
	ap.DefineProperty("includes", nativeFn("includes", arrayIncludes), false)
	ap.DefineProperty("slice", nativeFn("slice", arraySlice), false)
	ap.DefineProperty("reverse", nativeFn("reverse", arrayReverse), false)
	ap.DefineProperty("toString", nativeFn("toString", arrayJoin), false)

	statics := proto.New("Array", nil)
	statics.DefineProperty("isArray", nativeFn("isArray", arrayIsArray), false)
	statics.Bake()

	ctor := &vm.NativeFunc{
		Name:  "Array",
		Proto: statics,
		Call:  arrayConstruct,
		Construct: func(m *vm.VM, args []value.Value) (value.Value, error) {
			v, err := arrayConstruct(m, value.Undefined(), args)
			return v, err
		},
	}
	e.SetGlobal("Array", value.Func(ctor), true)
}

func asArray(v value.Value) (*vm.Array, bool) {
	if v.Kind != types.KindObject {
		return nil, false
	}
	a, ok := v.AsObject().(*vm.Array)
	return a, ok
}

func arrayConstruct(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 1 && types.IsNumeric(args[0].Kind) {
		n := int(value.ToInteger(args[0]))
		elems := make([]value.Value, n)
		for i := range elems {
			elems[i] = value.Undefined()
		}
		return value.Obj(vm.NewArray(elems, m.ArrayProto)), nil
	}
	return value.Obj(vm.NewArray(args, m.ArrayProto)), nil
}

func arrayIsArray(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	_, ok := asArray(arg(args, 0))
	return value.Bool(ok), nil
}

func arrayPush(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return value.Undefined(), wrongArgs("push")
	}
	a.Elems = append(a.Elems, args...)
	return value.Float64(float64(len(a.Elems))), nil
}

func arrayPop(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok || len(a.Elems) == 0 {
		return value.Undefined(), nil
	}
	last := a.Elems[len(a.Elems)-1]
	a.Elems = a.Elems[:len(a.Elems)-1]
	return last, nil
}

func arrayShift(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok || len(a.Elems) == 0 {
		return value.Undefined(), nil
	}
	first := a.Elems[0]
	a.Elems = a.Elems[1:]
	return first, nil
}

func arrayUnshift(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return value.Undefined(), wrongArgs("unshift")
	}
	a.Elems = append(append([]value.Value{}, args...), a.Elems...)
	return value.Float64(float64(len(a.Elems))), nil
}

func arrayJoin(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return value.Str(""), nil
	}
	sep := ","
	if len(args) > 0 {
		sep = value.ToString(args[0])
	}
	parts := make([]string, len(a.Elems))
	for i, e := range a.Elems {
		if e.IsNullish() {
			parts[i] = ""
		} else {
			parts[i] = value.ToString(e)
		}
	}
	return value.Str(strings.Join(parts, sep)), nil
}

func arrayMap(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return value.Undefined(), wrongArgs("map")
	}
	cb := arg(args, 0)
	if cb.Kind != types.KindFunction {
		return value.Undefined(), wrongArgs("map")
	}
	out := make([]value.Value, len(a.Elems))
	for i, e := range a.Elems {
		v, err := m.CallValue(cb, value.Undefined(), []value.Value{e, value.Float64(float64(i)), this})
		if err != nil {
			return value.Undefined(), err
		}
		out[i] = v
	}
	return value.Obj(vm.NewArray(out, m.ArrayProto)), nil
}

func arrayForEach(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return value.Undefined(), wrongArgs("forEach")
	}
	cb := arg(args, 0)
	if cb.Kind != types.KindFunction {
		return value.Undefined(), wrongArgs("forEach")
	}
	for i, e := range a.Elems {
		if _, err := m.CallValue(cb, value.Undefined(), []value.Value{e, value.Float64(float64(i)), this}); err != nil {
			return value.Undefined(), err
		}
	}
	return value.Undefined(), nil
}

func arrayFilter(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return value.Undefined(), wrongArgs("filter")
	}
	cb := arg(args, 0)
	if cb.Kind != types.KindFunction {
		return value.Undefined(), wrongArgs("filter")
	}
	out := make([]value.Value, 0, len(a.Elems))
	for i, e := range a.Elems {
		v, err := m.CallValue(cb, value.Undefined(), []value.Value{e, value.Float64(float64(i)), this})
		if err != nil {
			return value.Undefined(), err
		}
		if value.ToBoolean(v) {
			out = append(out, e)
		}
	}
	return value.Obj(vm.NewArray(out, m.ArrayProto)), nil
}

func arrayIndexOf(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return value.Float64(-1), nil
	}
	needle := arg(args, 0)
	for i, e := range a.Elems {
		if value.StrictEquals(e, needle) {
			return value.Float64(float64(i)), nil
		}
	}
	return value.Float64(-1), nil
}

func arrayIncludes(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	idx, err := arrayIndexOf(m, this, args)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Bool(idx.AsFloat64() >= 0), nil
}

func arraySlice(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return value.Obj(vm.NewArray(nil, m.ArrayProto)), nil
	}
	n := len(a.Elems)
	start, end := 0, n
	if len(args) > 0 {
		start = clampIndex(int(value.ToInteger(args[0])), n)
	}
	if len(args) > 1 {
		end = clampIndex(int(value.ToInteger(args[1])), n)
	}
	if start > end {
		start = end
	}
	out := append([]value.Value(nil), a.Elems[start:end]...)
	return value.Obj(vm.NewArray(out, m.ArrayProto)), nil
}

func arrayReverse(m *vm.VM, this value.Value, args []value.Value) (value.Value, error) {
	a, ok := asArray(this)
	if !ok {
		return this, nil
	}
	for i, j := 0, len(a.Elems)-1; i < j; i, j = i+1, j-1 {
		a.Elems[i], a.Elems[j] = a.Elems[j], a.Elems[i]
	}
	return this, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
