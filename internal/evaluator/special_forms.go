package evaluator

import (
	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/value"
)

// specialFormFn implements one reserved-head form directly against
// unevaluated argument expressions, mirroring compiler.compileSpecialForm's
// dispatch table one-for-one so the tree evaluator and the VM never
// disagree about which symbols are reserved or what they mean.
type specialFormFn func(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error)

var specialForms = map[string]specialFormFn{
	"def":       evalDef,
	"lambda":    evalLambda,
	"if":        evalIf,
	"do":        evalDo,
	"let":       evalLet,
	"quote":     evalQuote,
	"@":         evalQuote,
	"try":       evalTry,
	"host":      evalHost,
	"where":     evalWhere,
	"transform": evalTransform,
}

func evalDef(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, jerrors.ArityErrorf("def", 2, len(args))
	}
	name, err := bareName("def", args[0])
	if err != nil {
		return value.Null, err
	}
	v, err := e.eval(args[1], environ)
	if err != nil {
		return value.Null, err
	}
	if v.Kind() == value.KindClosure {
		if c := v.AsClosure(); c.Name == "" {
			if _, isBuiltin := c.Env.(*prelude.Builtin); !isBuiltin {
				c.Name = name
			}
		}
	}
	if err := environ.Define(name, v); err != nil {
		return value.Null, err
	}
	return v, nil
}

func evalLambda(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, jerrors.ArityErrorf("lambda", 2, len(args))
	}
	if args[0].Kind() != value.KindList {
		return value.Null, jerrors.TypeErrorf("lambda", "list of parameter names", args[0].Kind().String())
	}
	params := make([]string, 0, len(args[0].AsList()))
	for _, p := range args[0].AsList() {
		n, err := bareName("lambda", p)
		if err != nil {
			return value.Null, err
		}
		params = append(params, n)
	}
	return value.ClosureValue(&value.Closure{Params: params, Body: args[1], Env: environ}), nil
}

func evalIf(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) != 3 {
		return value.Null, jerrors.ArityErrorf("if", 3, len(args))
	}
	cond, err := e.eval(args[0], environ)
	if err != nil {
		return value.Null, err
	}
	if cond.Truthy() {
		return e.eval(args[1], environ)
	}
	return e.eval(args[2], environ)
}

func evalDo(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) == 0 {
		return value.Null, nil
	}
	var result value.Value
	for _, a := range args {
		v, err := e.eval(a, environ)
		if err != nil {
			return value.Null, err
		}
		result = v
	}
	return result, nil
}

func evalLet(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, jerrors.ArityErrorf("let", 2, len(args))
	}
	if args[0].Kind() != value.KindList {
		return value.Null, jerrors.TypeErrorf("let", "list of (name value) bindings", args[0].Kind().String())
	}
	scope := environ.Extend()
	for _, binding := range args[0].AsList() {
		if binding.Kind() != value.KindList || len(binding.AsList()) != 2 {
			return value.Null, jerrors.New(jerrors.KindSyntax, "let: each binding must be a (name value) pair")
		}
		pair := binding.AsList()
		name, err := bareName("let", pair[0])
		if err != nil {
			return value.Null, err
		}
		v, err := e.eval(pair[1], scope)
		if err != nil {
			return value.Null, err
		}
		if err := scope.Define(name, v); err != nil {
			return value.Null, err
		}
	}
	return e.eval(args[1], scope)
}

func evalQuote(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) != 1 {
		return value.Null, jerrors.ArityErrorf("quote", 1, len(args))
	}
	return args[0], nil
}

// evalTry evaluates the body; on a caught *jerrors.JSLError (anything but
// ResourceExhausted, which is terminal per §4.6), it evaluates the handler
// expression and applies the resulting function to the error record.
func evalTry(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, jerrors.ArityErrorf("try", 2, len(args))
	}
	v, err := e.eval(args[0], environ)
	if err == nil {
		return v, nil
	}
	if _, isPause := err.(*Paused); isPause {
		return value.Null, err
	}
	jerr, ok := err.(*jerrors.JSLError)
	if !ok || jerr.Kind == jerrors.KindResourceExhausted {
		return value.Null, err
	}
	handlerVal, herr := e.eval(args[1], environ)
	if herr != nil {
		return value.Null, herr
	}
	kind, message, details := jerr.Record()
	return e.applyValue(handlerVal, []value.Value{errorRecord(kind, message, details)})
}

func errorRecord(kind, message string, details any) value.Value {
	fields := map[string]value.Value{
		"type":    value.String(kind),
		"message": value.String(message),
	}
	keys := []string{"type", "message"}
	if details != nil {
		v, err := value.FromJSON(details)
		if err == nil {
			fields["details"] = v
			keys = append(keys, "details")
		}
	}
	return value.Object(keys, fields)
}

func evalHost(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) == 0 {
		return value.Null, jerrors.ArityRangeErrorf("host", 1, -1, len(args))
	}
	cmdVal, err := e.eval(args[0], environ)
	if err != nil {
		return value.Null, err
	}
	if cmdVal.Kind() != value.KindString {
		return value.Null, jerrors.TypeErrorf("host", "string command id", cmdVal.Kind().String())
	}
	hargs := make([]value.Value, len(args)-1)
	for i, a := range args[1:] {
		v, err := e.eval(a, environ)
		if err != nil {
			return value.Null, err
		}
		hargs[i] = v
	}
	if e.Dispatch == nil {
		return value.Null, jerrors.New(jerrors.KindHostError, "no host dispatcher configured")
	}
	res, herr := e.Dispatch.Dispatch(e.ctx, cmdVal.AsString(), hargs)
	if herr != nil {
		return value.Null, hostErrAsJSL(herr)
	}
	return res, nil
}

func evalWhere(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) != 2 {
		return value.Null, jerrors.ArityErrorf("where", 2, len(args))
	}
	colVal, err := e.eval(args[0], environ)
	if err != nil {
		return value.Null, err
	}
	if colVal.Kind() != value.KindList {
		return value.Null, jerrors.TypeErrorf("where", "list", colVal.Kind().String())
	}
	out := make([]value.Value, 0, len(colVal.AsList()))
	for _, raw := range colVal.AsList() {
		if err := e.charge(jerrors.GasListElem, 0); err != nil {
			return value.Null, err
		}
		item := prelude.Dequote(raw)
		itemEnv := extendEnv(environ, item)
		result, err := e.eval(args[1], itemEnv)
		if err != nil {
			return value.Null, err
		}
		if result.Truthy() {
			out = append(out, item)
		}
	}
	return value.ListFrom(out), nil
}

func evalTransform(e *Evaluator, args []value.Value, environ *env.Environment) (value.Value, error) {
	if len(args) < 1 {
		return value.Null, jerrors.ArityRangeErrorf("transform", 1, -1, len(args))
	}
	dataVal, err := e.eval(args[0], environ)
	if err != nil {
		return value.Null, err
	}
	ops := args[1:]
	if dataVal.Kind() == value.KindList {
		out := make([]value.Value, 0, len(dataVal.AsList()))
		for _, item := range dataVal.AsList() {
			if err := e.charge(jerrors.GasListElem, 0); err != nil {
				return value.Null, err
			}
			t, err := e.transformOne(item, ops, environ)
			if err != nil {
				return value.Null, err
			}
			out = append(out, t)
		}
		return value.ListFrom(out), nil
	}
	return e.transformOne(dataVal, ops, environ)
}

func (e *Evaluator) transformOne(item value.Value, ops []value.Value, environ *env.Environment) (value.Value, error) {
	cur := prelude.Dequote(item)
	for _, opExpr := range ops {
		itemEnv := extendEnv(environ, cur)
		descVal, err := e.eval(opExpr, itemEnv)
		if err != nil {
			return value.Null, err
		}
		if descVal.Kind() != value.KindDescriptor {
			return value.Null, jerrors.TypeErrorf("transform", "operation-descriptor", descVal.Kind().String())
		}
		cur, err = prelude.ApplyDescriptor(e.pctx, cur, descVal.AsDescriptor())
		if err != nil {
			return value.Null, err
		}
	}
	return cur, nil
}

// extendEnv implements the implicit item-binding rule shared by `where` and
// `transform` (§4.7): an object's own fields become bindings (shadowing any
// outer binding of the same name); any other kind of element binds only
// `it` to itself. Mirrors vm.extendEnv exactly.
func extendEnv(parent *env.Environment, item value.Value) *env.Environment {
	if item.Kind() == value.KindObject {
		bindings := make(map[string]value.Value, len(item.ObjectKeys()))
		for _, k := range item.ObjectKeys() {
			v, _ := item.ObjectGet(k)
			bindings[k] = v
		}
		return parent.ExtendWith(bindings)
	}
	return parent.ExtendWith(map[string]value.Value{"it": item})
}

func bareName(op string, v value.Value) (string, error) {
	if v.Kind() != value.KindString {
		return "", jerrors.TypeErrorf(op, "string (a bare name)", v.Kind().String())
	}
	return v.AsString(), nil
}
