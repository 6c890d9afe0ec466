package evaluator

import (
	"testing"

	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/value"
)

func eval(t *testing.T, src string) value.Value {
	t.Helper()
	expr, err := value.ParseJSON([]byte(src))
	if err != nil {
		t.Fatalf("ParseJSON(%s): %v", src, err)
	}
	e := New(jerrors.NewBudget(1_000_000, 1_000_000), nil)
	root := prelude.New()
	got, err := e.Eval(expr, root.Extend())
	if err != nil {
		t.Fatalf("Eval(%s): %v", src, err)
	}
	return got
}

func TestEvalArithmetic(t *testing.T) {
	if got := eval(t, `["+", 1, 2, 3]`); got.AsNumber() != 6 {
		t.Errorf("+ = %v, want 6", got.AsNumber())
	}
}

func TestEvalIf(t *testing.T) {
	if got := eval(t, `["if", true, 1, 2]`); got.AsInt() != 1 {
		t.Errorf("if true = %v, want 1", got.AsInt())
	}
	if got := eval(t, `["if", false, 1, 2]`); got.AsInt() != 2 {
		t.Errorf("if false = %v, want 2", got.AsInt())
	}
}

func TestEvalLambdaApplication(t *testing.T) {
	got := eval(t, `[["lambda", ["x", "y"], ["+", "x", "y"]], 3, 4]`)
	if got.AsNumber() != 7 {
		t.Errorf("((lambda (x y) (+ x y)) 3 4) = %v, want 7", got.AsNumber())
	}
}

func TestEvalLetSequentialBindings(t *testing.T) {
	got := eval(t, `["let", [["x", 1], ["y", ["+", "x", 1]]], ["+", "x", "y"]]`)
	if got.AsNumber() != 3 {
		t.Errorf("let = %v, want 3", got.AsNumber())
	}
}

func TestEvalQuoteReturnsUnevaluated(t *testing.T) {
	got := eval(t, `["quote", ["+", 1, 2]]`)
	if got.Kind() != value.KindList {
		t.Fatalf("Kind() = %v, want KindList", got.Kind())
	}
	if got.AsList()[0].AsString() != "+" {
		t.Errorf("quoted list head = %v, want the bare string '+'", got.AsList()[0])
	}
}

func TestEvalObjectKeyAndAtLiteralStripping(t *testing.T) {
	got := eval(t, `{"@x": 1, "@y": "@literal"}`)
	x, ok := got.ObjectGet("x")
	if !ok || x.AsInt() != 1 {
		t.Errorf("x = %v ok=%v, want 1", x, ok)
	}
	y, ok := got.ObjectGet("y")
	if !ok || y.AsString() != "literal" {
		t.Errorf("y = %v ok=%v, want %q", y, ok, "literal")
	}
}

func TestEvalTryHandlesTypeError(t *testing.T) {
	got := eval(t, `["try", ["+", 1, "@x"], ["lambda", ["err"], "err"]]`)
	kind, ok := got.ObjectGet("type")
	if !ok || kind.AsString() != string(jerrors.KindTypeError) {
		t.Errorf("caught error record type = %v ok=%v, want %q", kind, ok, jerrors.KindTypeError)
	}
}

func TestEvalTryPassesThroughOnSuccess(t *testing.T) {
	got := eval(t, `["try", ["+", 1, 2], ["lambda", ["err"], -1]]`)
	if got.AsNumber() != 3 {
		t.Errorf("try on success = %v, want 3", got.AsNumber())
	}
}

func TestEvalWhereDequotesQuotedData(t *testing.T) {
	got := eval(t, `["where", ["@", [{"@age": 30, "@role": "@admin"}, {"@age": 20, "@role": "@user"}]], ["and", [">", "age", 25], ["=", "role", "@admin"]]]`)
	if got.Kind() != value.KindList || len(got.AsList()) != 1 {
		t.Fatalf("where result = %v, want one-element list", got)
	}
	role, _ := got.AsList()[0].ObjectGet("role")
	if role.AsString() != "admin" {
		t.Errorf("role = %q, want %q", role.AsString(), "admin")
	}
}

func TestEvalDefRejectsPreludeTarget(t *testing.T) {
	root := prelude.New()
	e := New(jerrors.NewBudget(1000, 1000), nil)
	expr, _ := value.ParseJSON([]byte(`["def", "+", 0]`))
	_, err := e.Eval(expr, root)
	jerr, ok := err.(*jerrors.JSLError)
	if !ok || jerr.Kind != jerrors.KindImmutablePrelude {
		t.Errorf("def on frozen root = %v, want ImmutablePrelude", err)
	}
}

func TestEvalBudgetExhaustionPauses(t *testing.T) {
	e := New(jerrors.NewBudget(1, 1), nil)
	root := prelude.New()
	expr, _ := value.ParseJSON([]byte(`["+", 1, 2, 3, 4, 5, 6, 7, 8]`))
	_, err := e.Eval(expr, root.Extend())
	if _, ok := err.(*Paused); !ok {
		t.Errorf("Eval with a 1-gas budget = %v, want *Paused", err)
	}
}
