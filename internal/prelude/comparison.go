package prelude

import (
	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// chainCompare implements the n-ary chained comparison rule of §4.1: "the
// chain is true iff every adjacent pair satisfies the relation."
func chainCompare(op string, rel func(a, b float64) bool) func(*Context, []value.Value) (value.Value, error) {
	return func(_ *Context, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return value.Null, jerrors.ArityRangeErrorf(op, 2, -1, len(args))
		}
		for i := 0; i+1 < len(args); i++ {
			a, err := numArg(op, args[i])
			if err != nil {
				return value.Null, err
			}
			b, err := numArg(op, args[i+1])
			if err != nil {
				return value.Null, err
			}
			if !rel(a, b) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	}
}

func registerComparison(t table2) {
	t.add(Builtin{Name: "=", Arity: Variadic(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		for i := 0; i+1 < len(args); i++ {
			if !value.Equal(args[i], args[i+1]) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	}})
	t.add(Builtin{Name: "!=", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		return value.Bool(!value.Equal(args[0], args[1])), nil
	}})
	t.add(Builtin{Name: "<", Arity: Variadic(2), Fn: chainCompare("<", func(a, b float64) bool { return a < b })})
	t.add(Builtin{Name: ">", Arity: Variadic(2), Fn: chainCompare(">", func(a, b float64) bool { return a > b })})
	t.add(Builtin{Name: "<=", Arity: Variadic(2), Fn: chainCompare("<=", func(a, b float64) bool { return a <= b })})
	t.add(Builtin{Name: ">=", Arity: Variadic(2), Fn: chainCompare(">=", func(a, b float64) bool { return a >= b })})
}
