package proto

import (
	"reflect"
	"sort"
	"sync"

	"github.com/nitrassic/nitrassic/value"
)

// Object is the richer surface a live object value exposes to the
// emitter's dynamic runtime probe (§4.2 "Dynamic runtime probe"):
// has_property/get_property_value/set_property_value, each of which
// looks up the prototype of obj.type() and then follows the chain.
// value.HostObject (Invoke/ClassName) stays the minimal interface the
// value package itself depends on, to avoid an import cycle; Object
// extends it for callers that already import runtime/proto.
type Object interface {
	value.HostObject
	Get(name string) (value.Value, bool)
	Set(name string, v value.Value) error
	Has(name string) bool
	OwnKeys() []string
	Delete(name string) bool
}

// Instance is a live object value: own enumerable data properties plus a
// Prototype to fall back to for shared methods/virtuals (classic JS
// instance/prototype split). User object literals, the engine's global
// object, and reflected host-type instances all use Instance as their
// concrete value.Data payload.
type Instance struct {
	Proto *Prototype
	Class string

	mu  sync.RWMutex
	own map[string]*PropertyVariable
}

// NewInstance creates an empty instance chained to proto (the prototype
// whose methods/virtuals this object inherits).
func NewInstance(class string, proto *Prototype) *Instance {
	return &Instance{Class: class, Proto: proto, own: make(map[string]*PropertyVariable)}
}

func (o *Instance) ClassName() string { return o.Class }

// Get implements §4.2 lookup: own property, then a virtual property's
// getter (computed here), then a data property along the prototype chain.
// Method groups are not returned by Get; Invoke is what reaches them.
func (o *Instance) Get(name string) (value.Value, bool) {
	o.mu.RLock()
	pv, ok := o.own[name]
	o.mu.RUnlock()
	if ok {
		return pv.Value, true
	}
	if o.Proto != nil {
		if vp, ok := o.Proto.LookupVirtual(name); ok && vp.Get != nil {
			v, err := vp.Get(value.Obj(o))
			if err != nil {
				return value.Undefined(), false
			}
			return v, true
		}
		if pv, _, ok := o.Proto.LookupProperty(name); ok {
			return pv.Value, true
		}
	}
	return value.Undefined(), false
}

// Set implements §4.2/§7: a virtual setter on the prototype chain handles
// the write if there is one; otherwise an existing own property is
// overwritten or a new enumerable own property is added. New properties
// are accepted on every Instance, including one whose prototype came from
// host reflection; neither Set nor the VM's setProperty rejects them.
func (o *Instance) Set(name string, v value.Value) error {
	if o.Proto != nil {
		if vp, ok := o.Proto.LookupVirtual(name); ok && vp.Set != nil {
			return vp.Set(value.Obj(o), v)
		}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if pv, ok := o.own[name]; ok {
		pv.Value = v
		return nil
	}
	o.own[name] = &PropertyVariable{Name: name, Value: v, Enumerable: true}
	return nil
}

func (o *Instance) Has(name string) bool {
	o.mu.RLock()
	_, ok := o.own[name]
	o.mu.RUnlock()
	if ok {
		return true
	}
	return o.Proto != nil && o.Proto.Has(name)
}

// Delete removes an own property, returning whether it existed.
// Configurable-ness is not separately tracked for user object literals
// (§3 PropertyVariable attributes apply to host-reflected slots; plain
// object-literal properties are always configurable).
func (o *Instance) Delete(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.own[name]; ok {
		delete(o.own, name)
		return true
	}
	return false
}

// OwnKeys returns the enumerable own property names, sorted for
// deterministic iteration (for-in / Object.keys, §2.8 "Testable
// properties").
func (o *Instance) OwnKeys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.own))
	for n, pv := range o.own {
		if pv.Enumerable {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// OwnKeysAll returns every own property name regardless of Enumerable,
// sorted for deterministic iteration — Object.getOwnPropertyNames, which
// unlike for-in/Object.keys must also surface non-enumerable own
// properties (§8 "Testable properties": a property with Enumerable=false
// does not appear in for-in but DOES appear in getOwnPropertyNames).
func (o *Instance) OwnKeysAll() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	names := make([]string, 0, len(o.own))
	for n := range o.own {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefineOwn sets an own property with explicit enumerability, used by
// Object.defineProperty and non-enumerable internal slots.
func (o *Instance) DefineOwn(name string, v value.Value, enumerable bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.own[name] = &PropertyVariable{Name: name, Value: v, Enumerable: enumerable}
}

var valueType = reflect.TypeOf(value.Value{})

// Invoke calls the named zero-argument method if it resolves on the
// prototype chain to an overload taking only the receiver (a
// `func(value.Value) value.Value` or `func(value.Value) (value.Value,
// error)` in a MethodGroup); used by value.ToPrimitive for
// valueOf/toString dispatch (§4.1). Only MethodGroup overloads are
// consulted: a function stored as a data property (as stdlib installs
// Object.prototype.valueOf/toString) is not called. Any other overload
// shape reports ok=false rather than attempting a mismatched reflect.Call.
func (o *Instance) Invoke(name string) (value.Value, bool, error) {
	if o.Proto == nil {
		return value.Undefined(), false, nil
	}
	mg, ok := o.Proto.LookupMethod(name)
	if !ok {
		return value.Undefined(), false, nil
	}
	for _, m := range mg.Overloads {
		if m.Variadic || len(m.In) != 1 || m.In[0] != valueType {
			continue
		}
		out := m.Fn.Call([]reflect.Value{reflect.ValueOf(value.Obj(o))})
		if len(out) == 0 {
			return value.Undefined(), true, nil
		}
		if len(out) == 2 {
			if errv, ok := out[1].Interface().(error); ok && errv != nil {
				return value.Undefined(), false, errv
			}
		}
		if v, ok := out[0].Interface().(value.Value); ok {
			return v, true, nil
		}
	}
	return value.Undefined(), false, nil
}
