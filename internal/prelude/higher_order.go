package prelude

import (
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

func registerHigherOrder(t table2) {
	t.add(Builtin{Name: "map", Arity: Fixed(2), Fn: func(ctx *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("map", args[0])
		if err != nil {
			return value.Null, err
		}
		out := make([]value.Value, len(lst))
		for i, e := range lst {
			r, err := ctx.Apply(args[1], []value.Value{e})
			if err != nil {
				return value.Null, err
			}
			out[i] = r
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "filter", Arity: Fixed(2), Fn: func(ctx *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("filter", args[0])
		if err != nil {
			return value.Null, err
		}
		var out []value.Value
		for _, e := range lst {
			r, err := ctx.Apply(args[1], []value.Value{e})
			if err != nil {
				return value.Null, err
			}
			if r.Truthy() {
				out = append(out, e)
			}
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "reduce", Arity: Range(2, 3), Fn: func(ctx *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("reduce", args[0])
		if err != nil {
			return value.Null, err
		}
		var acc value.Value
		start := 0
		if len(args) == 3 {
			acc = args[2]
		} else {
			if len(lst) == 0 {
				return value.Null, jerrors.ArityRangeErrorf("reduce", 3, 3, len(args))
			}
			acc = lst[0]
			start = 1
		}
		for _, e := range lst[start:] {
			acc, err = ctx.Apply(args[1], []value.Value{acc, e})
			if err != nil {
				return value.Null, err
			}
		}
		return acc, nil
	}})

	t.add(Builtin{Name: "apply", Arity: Fixed(2), Fn: func(ctx *Context, args []value.Value) (value.Value, error) {
		argList, err := listArg("apply", args[1])
		if err != nil {
			return value.Null, err
		}
		return ctx.Apply(args[0], argList)
	}})
}
