package vm

import (
	"sort"

	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
)

// Array is the VM's native array object (§4.7 "Literal object/array",
// §6 "Array prototype"): backed by a Go slice for indexed elements plus
// an Instance for non-index named properties (e.g. an ad hoc field
// stapled onto an array, which JS permits), chained to ArrayProto for
// push/pop/map/join (package stdlib installs those).
type Array struct {
	Elems []value.Value
	named *proto.Instance
	proto *proto.Prototype
}

// NewArray creates an array initialized with elems (may be nil), chained
// to arrayProto.
func NewArray(elems []value.Value, arrayProto *proto.Prototype) *Array {
	return &Array{Elems: append([]value.Value(nil), elems...), proto: arrayProto,
		named: proto.NewInstance("Array", arrayProto)}
}

func (a *Array) ClassName() string { return "Array" }

func (a *Array) Invoke(name string) (value.Value, bool, error) { return a.named.Invoke(name) }

func (a *Array) Get(name string) (value.Value, bool) {
	if name == "length" {
		return value.Float64(float64(len(a.Elems))), true
	}
	if idx, ok := arrayIndex(name); ok {
		if idx < 0 || idx >= len(a.Elems) {
			return value.Undefined(), false
		}
		return a.Elems[idx], true
	}
	return a.named.Get(name)
}

func (a *Array) Set(name string, v value.Value) error {
	if name == "length" {
		n := int(value.ToInteger(v))
		a.resize(n)
		return nil
	}
	if idx, ok := arrayIndex(name); ok {
		if idx >= len(a.Elems) {
			a.resize(idx + 1)
		}
		a.Elems[idx] = v
		return nil
	}
	return a.named.Set(name, v)
}

func (a *Array) resize(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(a.Elems) {
		a.Elems = a.Elems[:n]
		return
	}
	grown := make([]value.Value, n)
	copy(grown, a.Elems)
	for i := len(a.Elems); i < n; i++ {
		grown[i] = value.Undefined()
	}
	a.Elems = grown
}

func (a *Array) Has(name string) bool {
	if name == "length" {
		return true
	}
	if idx, ok := arrayIndex(name); ok {
		return idx >= 0 && idx < len(a.Elems)
	}
	return a.named.Has(name)
}

func (a *Array) Delete(name string) bool {
	if idx, ok := arrayIndex(name); ok {
		if idx >= 0 && idx < len(a.Elems) {
			a.Elems[idx] = value.Undefined()
			return true
		}
		return false
	}
	return a.named.Delete(name)
}

func (a *Array) OwnKeys() []string {
	keys := make([]string, 0, len(a.Elems))
	for i := range a.Elems {
		keys = append(keys, itoa(i))
	}
	keys = append(keys, a.named.OwnKeys()...)
	return keys
}

func arrayIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// getProperty implements §4.2's dynamic runtime probe read side: objects
// consult Get, arrays/strings expose their own synthetic properties,
// everything else is a TypeError per §7 ("Attempted to read property
// ... from a null reference" for null/undefined receivers specifically).
func (m *VM) getProperty(recv value.Value, name string) (value.Value, error) {
	switch {
	case recv.IsNullish():
		return value.Undefined(), m.typeError(diagNullPropertyRead(name))
	case recv.Kind == types.KindObject:
		if obj, ok := recv.AsObject().(proto.Object); ok {
			if v, ok := obj.Get(name); ok {
				return v, nil
			}
			return value.Undefined(), nil
		}
		return value.Undefined(), nil
	case recv.Kind == types.KindFunction:
		c := recv.AsCallable()
		if name == "name" {
			return value.Str(c.FunctionName()), nil
		}
		if cl, ok := c.(*Closure); ok && name == "prototype" {
			return value.Obj(cl.ensureInstanceProto(m.ObjectProto)), nil
		}
		// Static members of a host-bound global constructor (e.g.
		// Object.keys, Array.isArray): stdlib installs these as plain
		// data properties on NativeFunc.Proto rather than on an
		// instance, since the receiver here is the function value
		// itself, not something `new`-constructed from it.
		if nf, ok := c.(*NativeFunc); ok && nf.Proto != nil {
			if pv, _, ok := nf.Proto.LookupProperty(name); ok {
				return pv.Value, nil
			}
		}
		return value.Undefined(), nil
	case types.IsStringy(recv.Kind):
		s := value.ToString(recv)
		if name == "length" {
			return value.Float64(float64(len([]rune(s)))), nil
		}
		if idx, ok := arrayIndex(name); ok {
			rs := []rune(s)
			if idx >= 0 && idx < len(rs) {
				return value.Str(string(rs[idx])), nil
			}
			return value.Undefined(), nil
		}
		// String.prototype methods (toUpperCase/toLowerCase/...),
		// installed by stdlib onto m.StringProto; the receiver stays the
		// primitive string Value itself rather than a boxed object, so
		// these resolve by static lookup instead of proto.Object.Get.
		if m.StringProto != nil {
			if pv, _, ok := m.StringProto.LookupProperty(name); ok {
				return pv.Value, nil
			}
		}
		return value.Undefined(), nil
	default:
		return value.Undefined(), nil
	}
}

func diagNullPropertyRead(name string) string {
	return "Attempted to read property '" + name + "' from a null reference"
}

// setProperty implements the write side; setting onto null/undefined is
// a TypeError, setting onto a non-object primitive is a silent no-op
// (ECMAScript's non-strict semantics), and every object receiver gets the
// write through its own Set, including adding a new property to an object
// whose prototype came from host reflection.
func (m *VM) setProperty(recv value.Value, name string, v value.Value) error {
	if recv.IsNullish() {
		return m.typeError(diagNullPropertyRead(name))
	}
	if obj, ok := recv.AsObject().(proto.Object); ok {
		return obj.Set(name, v)
	}
	return nil
}

func (m *VM) deleteProperty(recv value.Value, name string) bool {
	if obj, ok := recv.AsObject().(proto.Object); ok {
		return obj.Delete(name)
	}
	return false
}

func (m *VM) hasProperty(recv value.Value, name string) (bool, error) {
	if recv.IsNullish() {
		return false, m.typeError(diagNullPropertyRead(name))
	}
	if obj, ok := recv.AsObject().(proto.Object); ok {
		return obj.Has(name), nil
	}
	return false, nil
}

// defineAccessor installs a getter (A==0) or setter (A==1) for name on
// obj via a VirtualProperty merged into a per-instance shadow; plain
// object literals don't carry VirtualProperty slots directly, so accessor
// object-literal entries (`{ get x() {...} }`) are modeled as a special
// own data property whose Value is a *accessorPair, consulted by Get/Set
// before falling back to the plain data path.
func (m *VM) defineAccessor(obj value.Value, name string, fn value.Value, which int) {
	inst, ok := obj.AsObject().(*proto.Instance)
	if !ok {
		return
	}
	existing, _ := inst.Get(accessorKey(name))
	pair, _ := existing.AsObject().(*accessorPair)
	if pair == nil {
		pair = &accessorPair{}
	}
	if which == 0 {
		pair.getter = fn
	} else {
		pair.setter = fn
	}
	inst.DefineOwn(accessorKey(name), value.Obj(pair), false)
	inst.DefineOwn(name, value.Undefined(), true)
}

func accessorKey(name string) string { return "@@accessor:" + name }

// accessorPair is an internal-only HostObject used purely as storage
// inside defineAccessor/getProperty bookkeeping; it is never observed as
// a script-level value.
type accessorPair struct {
	getter, setter value.Value
}

func (p *accessorPair) ClassName() string                       { return "AccessorPair" }
func (p *accessorPair) Invoke(string) (value.Value, bool, error) { return value.Undefined(), false, nil }

// --- for-in / for-of enumerators -------------------------------------------

// enumState is the opaque runtime state OpForInInit/OpForOfInit push and
// OpForInNext/OpForOfNext advance (§4.4 "for-in"/"for-of", folded into
// ast.ForIn with an Of flag per the resolver's design).
type enumState struct {
	keys []string
	i    int

	// for-of only: iterating array elements directly rather than by key.
	elems  []value.Value
	isOf   bool
}

func newForInState(obj value.Value) *enumState {
	st := &enumState{}
	if inst, ok := obj.AsObject().(proto.Object); ok {
		st.keys = inst.OwnKeys()
		sort.Strings(st.keys)
	}
	return st
}

func newForOfState(m *VM, obj value.Value) (*enumState, error) {
	if arr, ok := obj.AsObject().(*Array); ok {
		return &enumState{elems: arr.Elems, isOf: true}, nil
	}
	if types.IsStringy(obj.Kind) {
		rs := []rune(value.ToString(obj))
		elems := make([]value.Value, len(rs))
		for i, r := range rs {
			elems[i] = value.Str(string(r))
		}
		return &enumState{elems: elems, isOf: true}, nil
	}
	return nil, m.typeError("value is not iterable")
}

func (st *enumState) next(m *VM) (key, val value.Value, ok bool, err error) {
	if st.isOf {
		if st.i >= len(st.elems) {
			return value.Value{}, value.Value{}, false, nil
		}
		v := st.elems[st.i]
		st.i++
		return v, v, true, nil
	}
	if st.i >= len(st.keys) {
		return value.Value{}, value.Value{}, false, nil
	}
	k := st.keys[st.i]
	st.i++
	return value.Str(k), value.Str(k), true, nil
}
