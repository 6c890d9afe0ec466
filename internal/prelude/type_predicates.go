package prelude

import "github.com/jsl-lang/jsl/internal/value"

func registerTypePredicates(t table2) {
	pred := func(name string, k value.Kind) {
		t.add(Builtin{Name: name, Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
			return value.Bool(args[0].Kind() == k), nil
		}})
	}
	pred("null?", value.KindNull)
	pred("bool?", value.KindBool)
	pred("number?", value.KindNumber)
	pred("string?", value.KindString)
	pred("list?", value.KindList)
	pred("dict?", value.KindObject)

	t.add(Builtin{Name: "callable?", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.Bool(args[0].Kind() == value.KindClosure), nil
	}})
}
