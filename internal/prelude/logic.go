package prelude

import "github.com/jsl-lang/jsl/internal/value"

func registerLogic(t table2) {
	// and/or are ordinary (eager) built-ins here, not short-circuiting
	// special forms: by the time a builtin runs, all of its arguments have
	// already been evaluated by the caller (§4.1 dispatch rule 4). Lazy
	// short-circuiting and/or, if a front-end wants it, is expressed with
	// `if`, not these. Zero-arity identities: and=true, or=false (§4.1).
	t.add(Builtin{Name: "and", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		for _, a := range args {
			if !a.Truthy() {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	}})
	t.add(Builtin{Name: "or", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		for _, a := range args {
			if a.Truthy() {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	}})
	t.add(Builtin{Name: "not", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.Bool(!args[0].Truthy()), nil
	}})
}
