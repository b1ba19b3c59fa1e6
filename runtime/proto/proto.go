// Package proto implements the prototype/property-store model (C2): each
// host type gets a Prototype describing its properties (PropertyVariable,
// VirtualProperty) and its methods (grouped into MethodGroup for
// overloading), built once via reflection over a Go type and then baked
// into an immutable lookup table.
//
// Modeled on the teacher's MethodRegistry (ID-based method storage with a
// name index for overload lookup, internal/interp/runtime/method_registry.go)
// generalized from DWScript's single-dispatch methods to a JS-style
// prototype chain with arbitrary property kinds.
package proto

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/nitrassic/nitrassic/value"
)

// MethodID uniquely identifies one overload within a MethodGroup's
// registry, mirroring the teacher's MethodID/InvalidMethodID pattern.
type MethodID int

const InvalidMethodID MethodID = 0

// PropertyVariable is a plain data property: a fixed slot on the
// prototype holding a Value (not recomputed per access).
type PropertyVariable struct {
	Name  string
	Value value.Value
	// Enumerable controls whether for-in/Object.keys surfaces this
	// property (§C2 "reflection-based host-type mapping").
	Enumerable bool
}

// VirtualProperty is a getter/setter pair computed on access rather than
// stored, e.g. `array.length`. Either Get or Set may be nil (write-only
// or read-only).
type VirtualProperty struct {
	Name string
	Get  func(receiver value.Value) (value.Value, error)
	Set  func(receiver value.Value, v value.Value) error
}

// Method is one overload of a named method: a Go function plus the
// reflected signature the binder (C3) uses to decide whether a given
// call's arguments match it.
type Method struct {
	ID       MethodID
	Name     string
	Fn       reflect.Value
	In       []reflect.Type
	Variadic bool
}

// MethodGroup collects every overload registered under one name (§C2
// "MethodGroup"), mirroring the teacher's nameIndex-over-MethodRegistry
// shape but scoped to a single prototype instead of a whole session.
type MethodGroup struct {
	Name      string
	Overloads []*Method
}

// Prototype is the property/method table for one host type. A Prototype
// may chain to a Parent (classic JS prototype inheritance); lookups walk
// the chain outward.
type Prototype struct {
	Name       string
	Parent     *Prototype
	properties map[string]*PropertyVariable
	virtuals   map[string]*VirtualProperty
	methods    map[string]*MethodGroup

	mu     sync.RWMutex
	nextID MethodID
	baked  bool
}

// New creates an empty, unbaked Prototype named name, optionally chained
// to parent.
func New(name string, parent *Prototype) *Prototype {
	return &Prototype{
		Name:       name,
		Parent:     parent,
		properties: make(map[string]*PropertyVariable),
		virtuals:   make(map[string]*VirtualProperty),
		methods:    make(map[string]*MethodGroup),
		nextID:     1,
	}
}

// DefineProperty adds or replaces a data property. Must be called before
// Bake.
func (p *Prototype) DefineProperty(name string, v value.Value, enumerable bool) {
	p.mustNotBeBaked()
	p.properties[name] = &PropertyVariable{Name: name, Value: v, Enumerable: enumerable}
}

// DefineVirtual adds a getter/setter-backed property. Must be called
// before Bake.
func (p *Prototype) DefineVirtual(name string, get func(value.Value) (value.Value, error), set func(value.Value, value.Value) error) {
	p.mustNotBeBaked()
	p.virtuals[name] = &VirtualProperty{Name: name, Get: get, Set: set}
}

// DefineMethod registers fn as one overload of name, reflecting its
// signature so the binder (C3) can later select it. fn must be a Go
// func value; the first parameter is conventionally the receiver.
func (p *Prototype) DefineMethod(name string, fn any) MethodID {
	p.mustNotBeBaked()
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		panic(fmt.Sprintf("proto: DefineMethod(%q): not a function: %T", name, fn))
	}
	in := make([]reflect.Type, rt.NumIn())
	for i := range in {
		in[i] = rt.In(i)
	}
	id := p.nextID
	p.nextID++
	m := &Method{ID: id, Name: name, Fn: rv, In: in, Variadic: rt.IsVariadic()}
	group, ok := p.methods[name]
	if !ok {
		group = &MethodGroup{Name: name}
		p.methods[name] = group
	}
	group.Overloads = append(group.Overloads, m)
	return id
}

func (p *Prototype) mustNotBeBaked() {
	if p.baked {
		panic(fmt.Sprintf("proto: prototype %q is already baked", p.Name))
	}
}

// Bake finalizes the prototype, after which Define* calls panic. Baking
// is a no-op placeholder for future layout optimizations (e.g. slot
// assignment); it exists so the engine's compile→bake→execute lifecycle
// (C8) has a concrete point to call per prototype.
func (p *Prototype) Bake() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.baked = true
}

// LookupProperty walks the prototype chain for a data property.
func (p *Prototype) LookupProperty(name string) (*PropertyVariable, *Prototype, bool) {
	for cur := p; cur != nil; cur = cur.Parent {
		if pv, ok := cur.properties[name]; ok {
			return pv, cur, true
		}
	}
	return nil, nil, false
}

// LookupVirtual walks the prototype chain for a virtual property.
func (p *Prototype) LookupVirtual(name string) (*VirtualProperty, bool) {
	for cur := p; cur != nil; cur = cur.Parent {
		if vp, ok := cur.virtuals[name]; ok {
			return vp, true
		}
	}
	return nil, false
}

// LookupMethod walks the prototype chain for a method group.
func (p *Prototype) LookupMethod(name string) (*MethodGroup, bool) {
	for cur := p; cur != nil; cur = cur.Parent {
		if mg, ok := cur.methods[name]; ok {
			return mg, true
		}
	}
	return nil, false
}

// Has reports whether name resolves to any property, virtual, or method
// along the chain — the basis of the `in` operator and
// Object.getOwnPropertyNames-style introspection.
func (p *Prototype) Has(name string) bool {
	if _, _, ok := p.LookupProperty(name); ok {
		return true
	}
	if _, ok := p.LookupVirtual(name); ok {
		return true
	}
	if _, ok := p.LookupMethod(name); ok {
		return true
	}
	return false
}

// OwnNames returns the enumerable data-property names defined directly on
// p (not inherited), sorted for deterministic iteration order. for-in and
// Object.keys enumerate object values through Instance.OwnKeys instead.
func (p *Prototype) OwnNames() []string {
	names := make([]string, 0, len(p.properties))
	for n, pv := range p.properties {
		if pv.Enumerable {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Registry maps Go host types to the Prototype reflected from them
// (§C2 "reflection-based host-type mapping"), built once at engine
// startup and consulted whenever a host value needs its prototype.
type Registry struct {
	mu    sync.RWMutex
	byTyp map[reflect.Type]*Prototype
}

func NewRegistry() *Registry {
	return &Registry{byTyp: make(map[reflect.Type]*Prototype)}
}

// Bind associates goType with proto. Typically called once per host type
// during engine setup, after reflecting over goType's exported methods
// and fields via ReflectPrototype.
func (r *Registry) Bind(goType reflect.Type, proto *Prototype) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTyp[goType] = proto
}

// Lookup returns the Prototype bound to goType, if any.
func (r *Registry) Lookup(goType reflect.Type) (*Prototype, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byTyp[goType]
	return p, ok
}

// All returns every Prototype the registry has bound, in no particular
// order; used by the engine's compile pass to bake every host-reflected
// prototype before execution (§4.2 "Baking", §4.8 "complete_all()").
func (r *Registry) All() []*Prototype {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Prototype, 0, len(r.byTyp))
	for _, p := range r.byTyp {
		out = append(out, p)
	}
	return out
}

// ReflectPrototype builds a Prototype named name from goType's exported
// methods: every exported method becomes a one-overload (or appended)
// MethodGroup entry, using goType's own method as the Go function
// (reflect.Method.Func, unbound: the receiver is its first parameter). Fields are not reflected
// automatically — hosts that want field-backed properties should call
// DefineProperty/DefineVirtual explicitly after ReflectPrototype returns,
// mirroring the teacher's explicit metadata registration in
// internal/interp/runtime/method_registry.go rather than full
// struct-tag-driven reflection.
func ReflectPrototype(name string, goType reflect.Type, parent *Prototype) *Prototype {
	p := New(name, parent)
	for i := 0; i < goType.NumMethod(); i++ {
		m := goType.Method(i)
		if m.PkgPath != "" {
			continue // unexported
		}
		p.DefineMethod(m.Name, m.Func.Interface())
	}
	return p
}
