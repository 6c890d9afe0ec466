package prelude

import (
	"strconv"

	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

func registerConversion(t table2) {
	t.add(Builtin{Name: "to-string", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.String(args[0].String()), nil
	}})

	t.add(Builtin{Name: "to-number", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		switch args[0].Kind() {
		case value.KindNumber:
			return args[0], nil
		case value.KindBool:
			if args[0].AsBool() {
				return value.Number(1), nil
			}
			return value.Number(0), nil
		case value.KindString:
			n, err := strconv.ParseFloat(args[0].AsString(), 64)
			if err != nil {
				return value.Null, jerrors.DomainErrorf("to-number: cannot convert %q to a number", args[0].AsString())
			}
			return value.Number(n), nil
		default:
			return value.Null, jerrors.TypeErrorf("to-number", "bool, number, or string", args[0].Kind().String())
		}
	}})

	t.add(Builtin{Name: "type-of", Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.String(args[0].Kind().String()), nil
	}})
}
