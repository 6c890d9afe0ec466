package prelude

import (
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

func listArg(op string, v value.Value) ([]value.Value, error) {
	if v.Kind() != value.KindList {
		return nil, jerrors.TypeErrorf(op, "list", v.Kind().String())
	}
	return v.AsList(), nil
}

func intArg(op string, v value.Value) (int64, error) {
	if v.Kind() != value.KindNumber {
		return 0, jerrors.TypeErrorf(op, "number", v.Kind().String())
	}
	return v.AsInt(), nil
}

func registerList(t table2) {
	t.add(Builtin{Name: "list", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.ListFrom(append([]value.Value{}, args...)), nil
	}})

	t.add(Builtin{Name: "cons", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		rest, err := listArg("cons", args[1])
		if err != nil {
			return value.Null, err
		}
		out := make([]value.Value, 0, len(rest)+1)
		out = append(out, args[0])
		out = append(out, rest...)
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "first", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("first", args[0])
		if err != nil {
			return value.Null, err
		}
		if len(lst) == 0 {
			return value.Null, nil
		}
		return lst[0], nil
	}})

	t.add(Builtin{Name: "rest", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("rest", args[0])
		if err != nil {
			return value.Null, err
		}
		if len(lst) <= 1 {
			return value.ListFrom(nil), nil
		}
		return value.ListFrom(append([]value.Value{}, lst[1:]...)), nil
	}})

	t.add(Builtin{Name: "nth", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("nth", args[0])
		if err != nil {
			return value.Null, err
		}
		idx, err := intArg("nth", args[1])
		if err != nil {
			return value.Null, err
		}
		if idx < 0 || idx >= int64(len(lst)) {
			return value.Null, jerrors.New(jerrors.KindPathError, "nth: index %d out of bounds for list of length %d", idx, len(lst))
		}
		return lst[idx], nil
	}})

	t.add(Builtin{Name: "length", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		switch args[0].Kind() {
		case value.KindList:
			return value.Int(int64(len(args[0].AsList()))), nil
		case value.KindString:
			return value.Int(int64(len([]rune(args[0].AsString())))), nil
		case value.KindObject:
			return value.Int(int64(len(args[0].ObjectKeys()))), nil
		default:
			return value.Null, jerrors.TypeErrorf("length", "list, string, or object", args[0].Kind().String())
		}
	}})

	t.add(Builtin{Name: "append", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("append", args[0])
		if err != nil {
			return value.Null, err
		}
		out := make([]value.Value, 0, len(lst)+1)
		out = append(out, lst...)
		out = append(out, args[1])
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "prepend", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("prepend", args[1])
		if err != nil {
			return value.Null, err
		}
		out := make([]value.Value, 0, len(lst)+1)
		out = append(out, args[0])
		out = append(out, lst...)
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "concat", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		var out []value.Value
		for _, a := range args {
			lst, err := listArg("concat", a)
			if err != nil {
				return value.Null, err
			}
			out = append(out, lst...)
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "reverse", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("reverse", args[0])
		if err != nil {
			return value.Null, err
		}
		out := make([]value.Value, len(lst))
		for i, v := range lst {
			out[len(lst)-1-i] = v
		}
		return value.ListFrom(out), nil
	}})

	t.add(Builtin{Name: "slice", Arity: Fixed(3), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("slice", args[0])
		if err != nil {
			return value.Null, err
		}
		start, err := intArg("slice", args[1])
		if err != nil {
			return value.Null, err
		}
		end, err := intArg("slice", args[2])
		if err != nil {
			return value.Null, err
		}
		start = clampIndex(start, int64(len(lst)))
		end = clampIndex(end, int64(len(lst)))
		if end < start {
			end = start
		}
		return value.ListFrom(append([]value.Value{}, lst[start:end]...)), nil
	}})

	t.add(Builtin{Name: "contains?", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("contains?", args[0])
		if err != nil {
			return value.Null, err
		}
		for _, v := range lst {
			if value.Equal(v, args[1]) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	}})

	t.add(Builtin{Name: "index", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		lst, err := listArg("index", args[0])
		if err != nil {
			return value.Null, err
		}
		for i, v := range lst {
			if value.Equal(v, args[1]) {
				return value.Int(int64(i)), nil
			}
		}
		return value.Int(-1), nil
	}})

	t.add(Builtin{Name: "empty?", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		switch args[0].Kind() {
		case value.KindList:
			return value.Bool(len(args[0].AsList()) == 0), nil
		case value.KindString:
			return value.Bool(args[0].AsString() == ""), nil
		case value.KindObject:
			return value.Bool(len(args[0].ObjectKeys()) == 0), nil
		case value.KindNull:
			return value.Bool(true), nil
		default:
			return value.Bool(false), nil
		}
	}})
}

func clampIndex(i, n int64) int64 {
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}
