// Package prelude builds the frozen root Environment of built-in operators
// (§4.2). Every entry is a Builtin value bound by name in a single
// environment that is frozen immediately after construction and never
// rebound (§3 Environment, testable property 5).
package prelude

import (
	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/host"
	"github.com/jsl-lang/jsl/internal/value"
)

// Builtin is a prelude operator's Go implementation. args are already
// evaluated (tree evaluator) or popped off the VM stack in argument order;
// either caller passes them the same way. ctx carries the pieces a handful
// of built-ins need beyond their arguments: a way to call back into a
// closure (map/filter/reduce/apply, sort-by, group-by, update) and the
// host dispatcher (not used directly by any built-in today, but kept on
// Context for forward compatibility the way the teacher's Interpreter
// threads a single context struct through its built-in table).
type Builtin struct {
	Name  string
	Arity Arity
	Fn    func(ctx *Context, args []value.Value) (value.Value, error)
}

// Context is passed to every Builtin invocation. Apply lets collection
// built-ins (map, filter, reduce, sort-by, group-by, transform's `update`)
// invoke a closure without the prelude package importing the evaluator
// (which would create an import cycle); the evaluator/VM inject their own
// Apply implementation at construction time.
type Context struct {
	Apply func(fn value.Value, args []value.Value) (value.Value, error)
	Host  *host.Dispatcher
}

// Arity describes a built-in's accepted argument count.
type Arity struct {
	Min int // inclusive
	Max int // inclusive; -1 means unbounded (variadic)
}

// Fixed returns an Arity accepting exactly n arguments.
func Fixed(n int) Arity { return Arity{Min: n, Max: n} }

// Range returns an Arity accepting between min and max arguments inclusive.
func Range(min, max int) Arity { return Arity{Min: min, Max: max} }

// Variadic returns an Arity accepting at least min arguments.
func Variadic(min int) Arity { return Arity{Min: min, Max: -1} }

// Accepts reports whether n arguments satisfy the arity contract.
func (a Arity) Accepts(n int) bool {
	if n < a.Min {
		return false
	}
	if a.Max == -1 {
		return true
	}
	return n <= a.Max
}

// table holds every registered builtin by name, built once at init time.
var table = buildTable()

// New builds a fresh frozen root Environment binding every prelude builtin,
// wrapped as value.Value so it can be resolved exactly like any other
// variable by the evaluator/VM's symbol lookup. Built-ins are not
// serializable (§4.2): the CAS serializer never emits them, and
// deserialization re-attaches this exact table as the final ancestor.
func New() *env.Environment {
	root := env.New()
	for name, b := range table {
		root.DefineUnchecked(name, builtinValue(b))
	}
	root.Freeze()
	return root
}

// Lookup returns the named builtin and whether it exists, used by the
// serializer/deserializer to recognize and skip/re-attach prelude bindings.
func Lookup(name string) (Builtin, bool) {
	b, ok := table[name]
	return b, ok
}

// builtinValue boxes a Builtin as a value.Value closure-shaped record. JSL's
// Value sum type (§3) has no dedicated "builtin" kind distinct from
// closure; rather than add one and complicate every switch over value.Kind,
// built-ins are represented as value.Closure whose Env field holds the
// *Builtin itself (type-asserted by the evaluator/VM's apply path) and
// whose Params/Body are unused sentinels. This mirrors the teacher's own
// ValueBuiltin tag (internal/bytecode/bytecode.go) conceptually while
// fitting JSL's narrower Value union.
func builtinValue(b Builtin) value.Value {
	bb := b
	return value.ClosureValue(&value.Closure{Name: bb.Name, Env: &bb})
}

// AsBuiltin type-asserts a value.Value produced by builtinValue back to its
// *Builtin, returning ok=false for ordinary user closures.
func AsBuiltin(v value.Value) (*Builtin, bool) {
	if v.Kind() != value.KindClosure {
		return nil, false
	}
	c := v.AsClosure()
	if c == nil {
		return nil, false
	}
	b, ok := c.Env.(*Builtin)
	return b, ok
}
