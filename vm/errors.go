package vm

import (
	"github.com/nitrassic/nitrassic/diag"
	"github.com/nitrassic/nitrassic/runtime/proto"
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
)

// errorPrototype returns (creating if needed) the shared Prototype for
// one of the seven script-visible error constructors (§4.9), chained to
// ObjectProto so error objects inherit Object.prototype's properties
// (`err instanceof Object` is still false; see instanceOf).
func (m *VM) errorPrototype(name diag.Name) *proto.Prototype {
	if p, ok := m.ErrorProtos[name]; ok {
		return p
	}
	p := proto.New(string(name)+".prototype", m.ObjectProto)
	p.DefineProperty("name", value.Str(string(name)), true)
	p.Bake()
	m.ErrorProtos[name] = p
	return p
}

// NewErrorInstance builds a script-visible error object carrying name,
// message, and a stack string exactly as §4.9/§6 describe ("stack ...
// function@path:line:column ... one frame per line").
func (m *VM) NewErrorInstance(name diag.Name, message string) *proto.Instance {
	inst := proto.NewInstance(string(name), m.errorPrototype(name))
	inst.DefineOwn("name", value.Str(string(name)), true)
	inst.DefineOwn("message", value.Str(message), true)
	se := diag.NewScriptError(name, message, diag.Location{Path: m.Path})
	se.Trace = m.StackTrace()
	inst.DefineOwn("stack", value.Str(se.Stack()), true)
	return inst
}

// construct implements `new callee(args)` (§4.7): for a Closure, builds a
// fresh instance delegating to the closure's instance prototype, invokes
// the body with `this` bound to it, and returns the explicit return value
// if it was itself an object (ECMAScript's constructor-return rule),
// otherwise the constructed instance. Native constructors run their own
// Construct hook directly.
func (m *VM) construct(callee value.Value, args []value.Value) (value.Value, error) {
	if callee.Kind != types.KindFunction {
		return value.Undefined(), m.typeError("value is not a constructor")
	}
	switch c := callee.AsCallable().(type) {
	case *Closure:
		delegate := c.ensureInstanceProto(m.ObjectProto)
		inst := proto.NewInstance(c.Proto.Name, m.ObjectProto)
		this := value.Obj(&delegatingInstance{Instance: inst, delegate: delegate})
		ret, err := m.callClosure(c, this, args)
		if err != nil {
			return value.Undefined(), err
		}
		if ret.Kind == types.KindObject {
			return ret, nil
		}
		return this, nil
	case *NativeFunc:
		if c.Construct == nil {
			return value.Undefined(), m.typeError(c.Name + " is not a constructor")
		}
		return c.Construct(m, args)
	default:
		return value.Undefined(), m.typeError("value is not a constructor")
	}
}

// delegatingInstance is the concrete object `new F()` produces: its own
// properties shadow F.prototype's, and any miss falls through to the
// delegate (a live reference to F's instance prototype, so later
// `F.prototype.x = ...` is visible to instances built before that
// assignment too).
type delegatingInstance struct {
	*proto.Instance
	delegate *proto.Instance
}

func (d *delegatingInstance) Get(name string) (value.Value, bool) {
	if v, ok := d.Instance.Get(name); ok {
		return v, true
	}
	if d.delegate != nil {
		return d.delegate.Get(name)
	}
	return value.Undefined(), false
}

func (d *delegatingInstance) Has(name string) bool {
	return d.Instance.Has(name) || (d.delegate != nil && d.delegate.Has(name))
}

// instanceOf implements `instanceof` (§4.7): true only when lhs was built
// by `new` on the script function rhs (its delegate is rhs's instance
// prototype; a single level is compared). A native rhs such as Object
// always yields false.
func (m *VM) instanceOf(lhs, rhs value.Value) (bool, error) {
	if rhs.Kind != types.KindFunction {
		return false, m.typeError(diag.InstanceofMessage(m.Path, "", rhs.TypeOf()))
	}
	cl, ok := rhs.AsCallable().(*Closure)
	if !ok {
		return false, nil
	}
	target := cl.ensureInstanceProto(m.ObjectProto)
	d, ok := lhs.AsObject().(*delegatingInstance)
	if !ok {
		return false, nil
	}
	return d.delegate == target, nil
}
