package vm

import (
	"github.com/jsl-lang/jsl/internal/compiler"
	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/value"
)

// extendEnv implements the implicit item-binding rule shared by `where`
// and `transform` (§4.7): an object's own fields become bindings
// (shadowing any outer binding of the same name); any other kind of
// element binds only `it` to itself.
func extendEnv(parent *env.Environment, e value.Value) *env.Environment {
	if e.Kind() == value.KindObject {
		bindings := make(map[string]value.Value, len(e.ObjectKeys()))
		for _, k := range e.ObjectKeys() {
			v, _ := e.ObjectGet(k)
			bindings[k] = v
		}
		return parent.ExtendWith(bindings)
	}
	return parent.ExtendWith(map[string]value.Value{"it": e})
}

// execWhere implements §4.7 `where`: filter col by evaluating the
// condition chunk once per element in its item-extended environment,
// preserving input order. Each element's evaluation runs to completion via
// runChunk before the next begins — where/transform are bounded
// item-iteration primitives (§4.3), not themselves a pause point between
// elements.
func (m *VM) execWhere(col value.Value, cond *compiler.Program) (value.Value, error) {
	if col.Kind() != value.KindList {
		return value.Null, jerrors.TypeErrorf("where", "list", col.Kind().String())
	}
	out := make([]value.Value, 0, len(col.AsList()))
	for _, raw := range col.AsList() {
		m.budget.Charge(jerrors.GasListElem)
		if m.budget.Exhausted() {
			return value.Null, &Paused{State: m.snapshot()}
		}
		e := prelude.Dequote(raw)
		itemEnv := extendEnv(m.environ, e)
		result, err := m.runChunk(cond, itemEnv)
		if err != nil {
			return value.Null, err
		}
		if result.Truthy() {
			out = append(out, e)
		}
	}
	return value.ListFrom(out), nil
}

// execTransform implements §4.7 `transform`: if data is a list, apply the
// operator pipeline to each element; otherwise apply once to data itself.
// Each stage evaluates its operator expression in the element-extended
// environment to obtain a descriptor, then interprets it against the
// running element.
func (m *VM) execTransform(data value.Value, ops []*compiler.Program) (value.Value, error) {
	if data.Kind() == value.KindList {
		out := make([]value.Value, 0, len(data.AsList()))
		for _, e := range data.AsList() {
			m.budget.Charge(jerrors.GasListElem)
			if m.budget.Exhausted() {
				return value.Null, &Paused{State: m.snapshot()}
			}
			transformed, err := m.transformOne(e, ops)
			if err != nil {
				return value.Null, err
			}
			out = append(out, transformed)
		}
		return value.ListFrom(out), nil
	}
	return m.transformOne(data, ops)
}

func (m *VM) transformOne(e value.Value, ops []*compiler.Program) (value.Value, error) {
	cur := prelude.Dequote(e)
	for _, op := range ops {
		itemEnv := extendEnv(m.environ, cur)
		descVal, err := m.runChunk(op, itemEnv)
		if err != nil {
			return value.Null, err
		}
		if descVal.Kind() != value.KindDescriptor {
			return value.Null, jerrors.TypeErrorf("transform", "operation-descriptor", descVal.Kind().String())
		}
		cur, err = prelude.ApplyDescriptor(m.pctx, cur, descVal.AsDescriptor())
		if err != nil {
			return value.Null, err
		}
	}
	return cur, nil
}
