// Package env implements the JSL Environment: an immutable scope with an
// optional parent link, following the shape of the teacher's
// internal/interp/runtime.Environment but adapted to JSL's immutability
// invariant (§3: "Environments are created by extension and never mutated
// after construction; the sole exception is the root prelude, which is
// constructed once, frozen, and never rebound").
package env

import (
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// Environment is a binding table with an optional parent. Unlike the
// teacher's Environment (which supports in-place Set for assignment),
// JSL has no mutable assignment: Define is only ever called while building
// a fresh environment (prelude construction, `let`, a call frame, `def`
// extending the *current* frame), never afterward. Once a Freeze call
// marks an Environment frozen, Define refuses and callers must extend a
// child instead.
type Environment struct {
	bindings map[string]value.Value
	parent   *Environment
	frozen   bool
}

// New creates a root environment with no parent (used only to build the
// prelude; everything else extends it).
func New() *Environment {
	return &Environment{bindings: make(map[string]value.Value)}
}

// Extend creates a new environment whose parent is the receiver. Per
// invariant 1 (§3), a closure's captured environment is never nil; Extend
// is the only way new environments come into being, so that invariant
// holds by construction.
func (e *Environment) Extend() *Environment {
	return &Environment{bindings: make(map[string]value.Value), parent: e}
}

// ExtendWith creates a child environment pre-populated with the given
// bindings (used by call-frame parameter binding, the item-field binding
// `where`/`transform` introduce, and deserialized environments).
func (e *Environment) ExtendWith(bindings map[string]value.Value) *Environment {
	child := e.Extend()
	for k, v := range bindings {
		child.bindings[k] = v
	}
	return child
}

// Freeze marks the environment immutable to further Define calls. Only the
// root prelude is ever frozen (§3).
func (e *Environment) Freeze() { e.frozen = true }

// Frozen reports whether Define on this exact environment is refused.
func (e *Environment) Frozen() bool { return e.frozen }

// Define binds name to val in this environment (not a parent). It is used
// by `def` (current frame), `let` (accumulating frame), and closure
// self-reference installation. It returns ImmutablePrelude if the receiver
// is frozen, or if name already resolves to a binding on a frozen ancestor
// (§3 testable property 5): `def`/`let` run in an unfrozen child of the
// prelude root, so the receiver itself is never frozen in practice, but
// shadowing a builtin from that child must still be refused rather than
// silently creating a local override.
func (e *Environment) Define(name string, val value.Value) error {
	if e.frozen {
		return jerrors.ImmutablePrelude(name)
	}
	for cur := e.parent; cur != nil; cur = cur.parent {
		if cur.frozen {
			if _, ok := cur.bindings[name]; ok {
				return jerrors.ImmutablePrelude(name)
			}
		}
	}
	e.bindings[name] = val
	return nil
}

// DefineUnchecked binds name to val even on a frozen environment. Used only
// by prelude construction itself, before Freeze is called.
func (e *Environment) DefineUnchecked(name string, val value.Value) {
	e.bindings[name] = val
}

// Lookup walks the parent chain for name, returning SymbolNotFound at the
// root on a miss (§3).
func (e *Environment) Lookup(name string) (value.Value, error) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.bindings[name]; ok {
			return v, nil
		}
	}
	return value.Null, jerrors.SymbolNotFound(name)
}

// LookupLocal checks only this environment, not its parents. Only the
// package's tests call it.
func (e *Environment) LookupLocal(name string) (value.Value, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

// Has reports whether name resolves anywhere in the chain.
func (e *Environment) Has(name string) bool {
	_, err := e.Lookup(name)
	return err == nil
}

// Parent returns the parent environment, or nil at the root.
func (e *Environment) Parent() *Environment { return e.parent }

// Root walks to the outermost ancestor (the prelude, for any environment
// reachable from program evaluation).
func (e *Environment) Root() *Environment {
	cur := e
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Range iterates over this environment's own bindings (not its parents'),
// in unspecified order. Used by the CAS serializer to enumerate an
// environment's fields.
func (e *Environment) Range(f func(name string, v value.Value) bool) {
	for k, v := range e.bindings {
		if !f(k, v) {
			return
		}
	}
}

// Len returns the number of bindings directly in this environment.
func (e *Environment) Len() int { return len(e.bindings) }
