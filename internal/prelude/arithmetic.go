package prelude

import (
	"math"

	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

// numArg extracts a number argument, raising TypeError with the operator
// name as context on a mismatch.
func numArg(op string, v value.Value) (float64, error) {
	if v.Kind() != value.KindNumber {
		return 0, jerrors.TypeErrorf(op, "number", v.Kind().String())
	}
	return v.AsNumber(), nil
}

func registerArithmetic(t table2) {
	// Zero-arity identities per §4.1: +=0, *=1, -=0, /=1, min=+inf, max=-inf.
	t.add(Builtin{Name: "+", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		sum := 0.0
		for _, a := range args {
			n, err := numArg("+", a)
			if err != nil {
				return value.Null, err
			}
			sum += n
		}
		return value.Number(sum), nil
	}})

	t.add(Builtin{Name: "-", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(0), nil
		}
		first, err := numArg("-", args[0])
		if err != nil {
			return value.Null, err
		}
		if len(args) == 1 {
			return value.Number(-first), nil
		}
		acc := first
		for _, a := range args[1:] {
			n, err := numArg("-", a)
			if err != nil {
				return value.Null, err
			}
			acc -= n
		}
		return value.Number(acc), nil
	}})

	t.add(Builtin{Name: "*", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		prod := 1.0
		for _, a := range args {
			n, err := numArg("*", a)
			if err != nil {
				return value.Null, err
			}
			prod *= n
		}
		return value.Number(prod), nil
	}})

	t.add(Builtin{Name: "/", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Number(1), nil
		}
		first, err := numArg("/", args[0])
		if err != nil {
			return value.Null, err
		}
		if len(args) == 1 {
			if first == 0 {
				return value.Null, jerrors.DivisionByZero("/")
			}
			return value.Number(1 / first), nil
		}
		acc := first
		for _, a := range args[1:] {
			n, err := numArg("/", a)
			if err != nil {
				return value.Null, err
			}
			if n == 0 {
				return value.Null, jerrors.DivisionByZero("/")
			}
			acc /= n
		}
		return value.Number(acc), nil
	}})

	t.add(Builtin{Name: "%", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		a, err := numArg("%", args[0])
		if err != nil {
			return value.Null, err
		}
		b, err := numArg("%", args[1])
		if err != nil {
			return value.Null, err
		}
		if b == 0 {
			return value.Null, jerrors.DivisionByZero("%")
		}
		return value.Number(math.Mod(a, b)), nil
	}})

	t.add(Builtin{Name: "min", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		acc := math.Inf(1)
		for _, a := range args {
			n, err := numArg("min", a)
			if err != nil {
				return value.Null, err
			}
			if n < acc {
				acc = n
			}
		}
		return value.Number(acc), nil
	}})

	t.add(Builtin{Name: "max", Arity: Variadic(0), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		acc := math.Inf(-1)
		for _, a := range args {
			n, err := numArg("max", a)
			if err != nil {
				return value.Null, err
			}
			if n > acc {
				acc = n
			}
		}
		return value.Number(acc), nil
	}})

	unary := func(name string, fn func(float64) (float64, error)) {
		t.add(Builtin{Name: name, Arity: Fixed(1), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
			n, err := numArg(name, args[0])
			if err != nil {
				return value.Null, err
			}
			r, err := fn(n)
			if err != nil {
				return value.Null, err
			}
			return value.Number(r), nil
		}})
	}

	unary("abs", func(n float64) (float64, error) { return math.Abs(n), nil })
	unary("round", func(n float64) (float64, error) { return math.Round(n), nil })
	unary("sqrt", func(n float64) (float64, error) {
		if n < 0 {
			return 0, jerrors.DomainErrorf("sqrt of negative number %g", n)
		}
		return math.Sqrt(n), nil
	})
	unary("log", func(n float64) (float64, error) {
		if n <= 0 {
			return 0, jerrors.DomainErrorf("log of non-positive number %g", n)
		}
		return math.Log(n), nil
	})
	unary("exp", func(n float64) (float64, error) { return math.Exp(n), nil })
	unary("sin", func(n float64) (float64, error) { return math.Sin(n), nil })
	unary("cos", func(n float64) (float64, error) { return math.Cos(n), nil })
	unary("tan", func(n float64) (float64, error) { return math.Tan(n), nil })

	t.add(Builtin{Name: "pow", Arity: Fixed(2), Fn: func(_ *Context, args []value.Value) (value.Value, error) {
		base, err := numArg("pow", args[0])
		if err != nil {
			return value.Null, err
		}
		exp, err := numArg("pow", args[1])
		if err != nil {
			return value.Null, err
		}
		return value.Number(math.Pow(base, exp)), nil
	}})
}
