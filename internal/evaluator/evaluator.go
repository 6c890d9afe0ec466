// Package evaluator implements the tree-walking reference evaluator (§2
// "Evaluator (tree)... Definitive semantics", §9 Open Questions: "The tree
// walker's pedagogical role can be preserved as a reference test oracle
// only" — the VM's step accounting is the canonical measurement; this
// package exists to cross-check the VM's results on the same programs, the
// way the teacher keeps two interpreters in behavioral-parity lockstep.
package evaluator

import (
	"context"
	"strings"

	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/host"
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/value"
)

// Evaluator recursively evaluates S-expressions against an environment,
// charging a shared resource Budget and routing `host` through a
// Dispatcher. Unlike the VM, it has no notion of an instruction boundary:
// its approximation of "pause" is coarser: gas is charged once on entry to
// Eval, then at each builtin or closure application and each where/transform
// element, rather than once per opcode (documented in DESIGN.md as the
// accepted fidelity gap of the reference oracle).
type Evaluator struct {
	Budget   *jerrors.Budget
	Dispatch *host.Dispatcher
	ctx      context.Context
	pctx     *prelude.Context
}

// New constructs an Evaluator. A nil dispatcher is valid for programs that
// never use `host`.
func New(budget *jerrors.Budget, dispatch *host.Dispatcher) *Evaluator {
	e := &Evaluator{Budget: budget, Dispatch: dispatch, ctx: context.Background()}
	e.pctx = &prelude.Context{Apply: e.applyValue, Host: dispatch}
	return e
}

// Paused is the tree evaluator's frame-boundary pause signal: it carries no
// resumable continuation (unlike vm.Paused), since the reference oracle is
// not required to resume — only to agree with the VM on final results for
// any budget large enough to reach one (testable property 4 is exercised
// against the VM; the tree evaluator only needs to raise this rather than
// silently running unbounded).
type Paused struct{}

func (*Paused) Error() string { return "jsl: tree evaluator paused (gas or step budget exhausted)" }

// Eval evaluates expr in environ. It is the sole public entry point;
// special forms are dispatched on the bare head symbol exactly as the
// compiler's specialForms table does, so the two front ends never
// disagree about which symbols are reserved.
func (e *Evaluator) Eval(expr value.Value, environ *env.Environment) (value.Value, error) {
	if err := e.charge(jerrors.GasVariableLookup, callDepth(environ)); err != nil {
		return value.Null, err
	}
	return e.eval(expr, environ)
}

func (e *Evaluator) charge(gas int, depth int) error {
	if err := e.Budget.CheckTerminal(depth); err != nil {
		return err
	}
	if !e.Budget.Charge(gas) {
		return &Paused{}
	}
	return nil
}

func (e *Evaluator) eval(expr value.Value, environ *env.Environment) (value.Value, error) {
	switch expr.Kind() {
	case value.KindNull, value.KindBool, value.KindNumber:
		return expr, nil

	case value.KindString:
		s := expr.AsString()
		if strings.HasPrefix(s, "@") {
			return value.String(s[1:]), nil
		}
		return environ.Lookup(s)

	case value.KindObject:
		return e.evalObject(expr, environ)

	case value.KindList:
		elems := expr.AsList()
		if len(elems) == 0 {
			return expr, nil
		}
		return e.evalApplication(elems, environ)

	default:
		return value.Null, jerrors.New(jerrors.KindSyntax, "cannot evaluate value of kind %s", expr.Kind())
	}
}

// evalObject implements §4.1 rule 1: every key is itself evaluated (an
// `@name` literal strips to `name`; a bare name resolves to a field-name
// string), every value is evaluated in order.
func (e *Evaluator) evalObject(obj value.Value, environ *env.Environment) (value.Value, error) {
	keys := obj.ObjectKeys()
	outKeys := make([]string, 0, len(keys))
	fields := make(map[string]value.Value, len(keys))
	for _, k := range keys {
		keyName, err := e.evalObjectKey(k, environ)
		if err != nil {
			return value.Null, err
		}
		rawVal, _ := obj.ObjectGet(k)
		v, err := e.eval(rawVal, environ)
		if err != nil {
			return value.Null, err
		}
		if _, dup := fields[keyName]; !dup {
			outKeys = append(outKeys, keyName)
		}
		fields[keyName] = v
	}
	return value.Object(outKeys, fields), nil
}

func (e *Evaluator) evalObjectKey(key string, environ *env.Environment) (string, error) {
	if strings.HasPrefix(key, "@") {
		return key[1:], nil
	}
	v, err := environ.Lookup(key)
	if err != nil {
		return "", err
	}
	if v.Kind() != value.KindString {
		return "", jerrors.TypeErrorf("object key", "string", v.Kind().String())
	}
	return v.AsString(), nil
}

func (e *Evaluator) evalApplication(elems []value.Value, environ *env.Environment) (value.Value, error) {
	head := elems[0]
	args := elems[1:]

	if head.Kind() == value.KindString {
		name := head.AsString()
		if !strings.HasPrefix(name, "@") {
			if fn, ok := specialForms[name]; ok {
				return fn(e, args, environ)
			}
			fnVal, err := environ.Lookup(name)
			if err != nil {
				return value.Null, err
			}
			return e.applyEvaluated(fnVal, args, environ)
		}
	}

	fnVal, err := e.eval(head, environ)
	if err != nil {
		return value.Null, err
	}
	return e.applyEvaluated(fnVal, args, environ)
}

func (e *Evaluator) applyEvaluated(fnVal value.Value, argExprs []value.Value, environ *env.Environment) (value.Value, error) {
	args := make([]value.Value, len(argExprs))
	for i, a := range argExprs {
		v, err := e.eval(a, environ)
		if err != nil {
			return value.Null, err
		}
		args[i] = v
	}
	return e.applyValue(fnVal, args)
}

// applyValue applies an already-evaluated function value to already-
// evaluated arguments; it is also handed to the prelude as Context.Apply.
func (e *Evaluator) applyValue(fnVal value.Value, args []value.Value) (value.Value, error) {
	if b, ok := prelude.AsBuiltin(fnVal); ok {
		if !b.Arity.Accepts(len(args)) {
			return value.Null, jerrors.ArityRangeErrorf(b.Name, b.Arity.Min, b.Arity.Max, len(args))
		}
		if err := e.charge(jerrors.GasForNary(len(args)), 0); err != nil {
			return value.Null, err
		}
		return b.Fn(e.pctx, args)
	}
	if fnVal.Kind() != value.KindClosure {
		return value.Null, jerrors.TypeErrorf("apply", "closure or builtin", fnVal.Kind().String())
	}
	c := fnVal.AsClosure()
	if len(args) != len(c.Params) {
		name := c.Name
		if name == "" {
			name = "lambda"
		}
		return value.Null, jerrors.ArityErrorf(name, len(c.Params), len(args))
	}
	parent, ok := c.Env.(*env.Environment)
	if !ok {
		return value.Null, jerrors.New(jerrors.KindTypeError, "closure has no valid capture environment")
	}
	bindings := make(map[string]value.Value, len(args))
	for i, p := range c.Params {
		bindings[p] = args[i]
	}
	callEnv := parent.ExtendWith(bindings)
	if err := e.charge(jerrors.GasCallBase, callDepth(callEnv)); err != nil {
		return value.Null, err
	}
	return e.eval(c.Body, callEnv)
}

// hostErrAsJSL converts a dispatcher failure into the core's error
// representation (§4.8), mirroring vm.hostErrAsJSL.
func hostErrAsJSL(err error) error {
	if he, ok := err.(*host.HostError); ok {
		return jerrors.HostErrorFrom(he.Type, he.Message, he.Details)
	}
	return jerrors.HostErrorFrom("HostError", err.Error(), nil)
}

func callDepth(e *env.Environment) int {
	depth := 0
	for cur := e; cur.Parent() != nil; cur = cur.Parent() {
		depth++
	}
	return depth
}
