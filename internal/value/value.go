// Package value implements the JSL Value sum type: null, bool, number,
// string, list, object, closure, and operation-descriptor. Values are
// immutable once constructed; every operator in the prelude returns a new
// Value rather than mutating one in place.
package value

import "fmt"

// Kind tags the variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
	KindClosure
	KindDescriptor
)

// String returns a human-readable name for the kind, used in TypeError
// messages and the `type-of` builtin.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindClosure:
		return "closure"
	case KindDescriptor:
		return "descriptor"
	default:
		return "unknown"
	}
}

// Closure is a function value: an ordered parameter list, an unevaluated
// body expression, and the environment in which it was created. The Env
// field is an opaque reference (interface{}) to break the import cycle
// between value and env; callers type-assert it to *env.Environment.
type Closure struct {
	Params []string
	Body   Value
	Env    any
	Name   string // empty for anonymous lambdas; set by `def` for nicer errors

	// Compiled caches the VM's lowering of Body to a *compiler.Program,
	// set by the VM's closure-creating instruction, or populated lazily on
	// first call for closures that arrive without one, and reused after.
	// Opaque (interface{}) for the same reason Env is: compiler already
	// imports value, so value cannot import compiler back.
	Compiled any
}

// Descriptor is the opaque tagged list returned by a transform-operator
// helper (pick, omit, assign, rename, default, update). Only the `transform`
// special form interprets it; everywhere else it is an inert value.
type Descriptor struct {
	Op   string
	Args []Value
}

// Value is a tagged union. Exactly one of the payload fields is meaningful,
// selected by Kind. Zero Value is KindNull.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	isInt  bool
	i      int64
	s      string
	list   []Value
	keys   []string // object: insertion order of obj, for deterministic iteration
	obj    map[string]Value
	clo    *Closure
	desc   *Descriptor
}

// Null is the singleton null value.
var Null = Value{kind: KindNull}

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number constructs a float64-backed number Value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Int constructs an integer-subrange number Value. JSL numbers are IEEE-754
// doubles with a 64-bit integer subrange (§3); IsInt reports which form a
// given Number was produced from, but arithmetic always treats both as the
// same Kind.
func Int(i int64) Value { return Value{kind: KindNumber, isInt: true, i: i, n: float64(i)} }

// String constructs a string Value. The `@`-stripping convention is a
// read-time syntactic concern (evaluator), not a Value-level one: by the
// time a Value exists, a string Value is always the literal payload.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List constructs a list Value from the given elements (copied defensively).
func List(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindList, list: cp}
}

// ListFrom wraps a slice without copying; callers must not mutate elems
// afterward (Values are expected to be immutable end to end).
func ListFrom(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindList, list: elems}
}

// Object constructs an object Value from keys (in insertion order) and a
// matching map. Duplicate keys are illegal inputs (§3) and must be rejected
// by the caller (parser/compiler), not by this constructor.
func Object(keys []string, fields map[string]Value) Value {
	ks := make([]string, len(keys))
	copy(ks, keys)
	m := make(map[string]Value, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return Value{kind: KindObject, keys: ks, obj: m}
}

// EmptyObject returns an object Value with no fields.
func EmptyObject() Value {
	return Value{kind: KindObject, keys: []string{}, obj: map[string]Value{}}
}

// ClosureValue wraps a *Closure as a Value.
func ClosureValue(c *Closure) Value { return Value{kind: KindClosure, clo: c} }

// DescriptorValue wraps a *Descriptor as a Value.
func DescriptorValue(d *Descriptor) Value { return Value{kind: KindDescriptor, desc: d} }

// Kind returns the Value's variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload; only meaningful when Kind() == KindBool.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns the float64 payload; only meaningful when Kind() == KindNumber.
func (v Value) AsNumber() float64 { return v.n }

// IsInt reports whether this number was constructed via Int (an integer
// literal), as opposed to Number (a float literal). Both compare equal by
// value per §4.1 (`=` compares numbers "regardless of integer/float
// representation").
func (v Value) IsInt() bool { return v.kind == KindNumber && v.isInt }

// AsInt returns the integer payload, truncating a float-constructed number
// if necessary. Only meaningful when Kind() == KindNumber.
func (v Value) AsInt() int64 {
	if v.isInt {
		return v.i
	}
	return int64(v.n)
}

// AsString returns the string payload; only meaningful when Kind() == KindString.
func (v Value) AsString() string { return v.s }

// AsList returns the element slice; only meaningful when Kind() == KindList.
// The returned slice must be treated as read-only.
func (v Value) AsList() []Value { return v.list }

// ObjectKeys returns the object's keys in insertion order; only meaningful
// when Kind() == KindObject.
func (v Value) ObjectKeys() []string { return v.keys }

// ObjectGet returns the field named key and whether it is present; only
// meaningful when Kind() == KindObject.
func (v Value) ObjectGet(key string) (Value, bool) {
	val, ok := v.obj[key]
	return val, ok
}

// AsClosure returns the closure payload; only meaningful when Kind() == KindClosure.
func (v Value) AsClosure() *Closure { return v.clo }

// AsDescriptor returns the descriptor payload; only meaningful when
// Kind() == KindDescriptor.
func (v Value) AsDescriptor() *Descriptor { return v.desc }

// Truthy implements the truthiness rule of §4.1: false, null, 0, "", [],
// {} are falsy; everything else is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) != 0
	case KindObject:
		return len(v.keys) != 0
	default:
		return true
	}
}

// Equal implements structural equality (§4.1 `=`): numbers compare by
// value regardless of int/float representation, lists and objects
// recursively, closures and descriptors by identity of their payload
// pointer (they are not meaningfully data-comparable).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		// A number is a number regardless of IsInt; no other kind mismatch
		// is ever equal.
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindClosure:
		return a.clo == b.clo
	case KindDescriptor:
		return a.desc == b.desc
	default:
		return false
	}
}

// String renders a Value for diagnostics (error messages, `to-string`).
// It is not the JSON encoding; see the serialize package for that.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		if v.isInt {
			return fmt.Sprintf("%d", v.i)
		}
		return fmt.Sprintf("%g", v.n)
	case KindString:
		return v.s
	case KindList:
		return fmt.Sprintf("<list:%d>", len(v.list))
	case KindObject:
		return fmt.Sprintf("<object:%d>", len(v.keys))
	case KindClosure:
		name := v.clo.Name
		if name == "" {
			name = "anonymous"
		}
		return fmt.Sprintf("<closure:%s/%d>", name, len(v.clo.Params))
	case KindDescriptor:
		return fmt.Sprintf("<descriptor:%s>", v.desc.Op)
	default:
		return "<unknown>"
	}
}
