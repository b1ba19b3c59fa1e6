// Package scope implements the lexical scope chain used by the resolver
// (C5) and consulted at runtime by the emitter/VM (C7) to resolve name
// references to slots. Each function body and block gets its own Scope,
// chained to its lexically enclosing Scope.
package scope

import (
	"github.com/nitrassic/nitrassic/types"
	"github.com/nitrassic/nitrassic/value"
)

// Kind distinguishes the scoping rules a Scope enforces: function-scoped
// (var) vs block-scoped (let/const).
type Kind int

const (
	KindFunction Kind = iota
	KindBlock
	KindGlobal
)

// Binding is one declared name's runtime cell. Binding is a pointer
// indirection (not a Value itself) so that closures capturing this
// binding observe later writes (§5 "closure capture").
type Binding struct {
	Value value.Value
	Name  string
	// Type is the static type the inferencer (C6) has observed for this
	// binding so far; Type{} (KindAny) until the first assignment is
	// inferred. A binding whose observed type later changes is widened to
	// types.Any by the inferencer rather than updated in place (§4.5
	// "collapse warning").
	Type        types.Type
	Const       bool
	Initialized bool
	// Collapsed is set once the inferencer has widened Type to Any
	// after observing two different concrete types, so it only warns once.
	Collapsed bool
	// Captured is set by the resolver (C5) when some enclosing function's
	// body references this binding from outside the function that
	// declared it (§3 "hoisted flag"); the emitter (C7) allocates such
	// bindings in a heap cell instead of a plain stack slot so every
	// closure over them observes the same storage.
	Captured bool
}

// Scope is one lexical scope frame: a set of bindings plus a link to the
// enclosing scope. Modeled on the teacher's Environment (store + outer),
// generalized with a Kind so the resolver can tell function scope from
// block scope apart when deciding where a `var` hoists to.
type Scope struct {
	bindings map[string]*Binding
	outer    *Scope
	kind     Kind
}

// New creates a root scope with no outer link (the global scope).
func New() *Scope {
	return &Scope{bindings: make(map[string]*Binding), kind: KindGlobal}
}

// NewEnclosed creates a scope lexically nested inside outer.
func NewEnclosed(outer *Scope, kind Kind) *Scope {
	return &Scope{bindings: make(map[string]*Binding), outer: outer, kind: kind}
}

func (s *Scope) Outer() *Scope { return s.outer }
func (s *Scope) Kind() Kind    { return s.kind }

// Declare creates a new binding in this scope, overwriting any existing
// binding of the same name in this scope only (shadowing is legal; the
// resolver is responsible for rejecting illegal redeclaration of
// block-scoped const bindings before calling this).
func (s *Scope) Declare(name string, isConst bool) *Binding {
	b := &Binding{Name: name, Value: value.Undefined(), Const: isConst}
	s.bindings[name] = b
	return b
}

// FunctionScope walks outward to the nearest function or global scope,
// the target for a `var` declaration regardless of how many block scopes
// it is nested inside (§5 "hoisting").
func (s *Scope) FunctionScope() *Scope {
	for cur := s; cur != nil; cur = cur.outer {
		if cur.kind == KindFunction || cur.kind == KindGlobal {
			return cur
		}
	}
	return s
}

// Resolve looks up name starting in this scope and walking outward,
// returning the Binding and the scope it was found in, or (nil, nil, false).
func (s *Scope) Resolve(name string) (*Binding, *Scope, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if b, ok := cur.bindings[name]; ok {
			return b, cur, true
		}
	}
	return nil, nil, false
}

// Local reports whether name is bound directly in this scope (not an
// outer one).
func (s *Scope) Local(name string) (*Binding, bool) {
	b, ok := s.bindings[name]
	return b, ok
}

// Names returns every name bound directly in this scope, in no
// particular order; used by the resolver to build a function's
// closure-capture list.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.bindings))
	for n := range s.bindings {
		names = append(names, n)
	}
	return names
}
