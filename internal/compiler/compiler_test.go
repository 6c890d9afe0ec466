package compiler

import (
	"testing"

	"github.com/jsl-lang/jsl/internal/value"
)

// roundTrip compiles v, decompiles the result, and returns the reconstructed
// expression — the vehicle for testable property 2 (compile/decompile
// round-trip, §8).
func roundTrip(t *testing.T, v value.Value) value.Value {
	t.Helper()
	prog, err := Compile(v)
	if err != nil {
		t.Fatalf("Compile(%v): %v", v, err)
	}
	got, err := Decompile(prog)
	if err != nil {
		t.Fatalf("Decompile: %v", err)
	}
	return got
}

func assertRoundTrips(t *testing.T, v value.Value) {
	t.Helper()
	got := roundTrip(t, v)
	if !value.Equal(got, v) {
		t.Errorf("round trip mismatch:\n  in:  %v\n  out: %v", v, got)
	}
}

func TestRoundTripLiteralsAndCalls(t *testing.T) {
	assertRoundTrips(t, value.Int(5))
	assertRoundTrips(t, value.Bool(true))
	assertRoundTrips(t, value.Null)
	assertRoundTrips(t, value.List(value.String("+"), value.Int(1), value.Int(2)))
}

func TestRoundTripIf(t *testing.T) {
	v := value.List(value.String("if"),
		value.List(value.String("<="), value.String("n"), value.Int(1)),
		value.Int(1),
		value.List(value.String("*"), value.String("n"), value.Int(2)))
	assertRoundTrips(t, v)
}

func TestRoundTripLambdaAndLet(t *testing.T) {
	lambda := value.List(value.String("lambda"),
		value.List(value.String("x")),
		value.List(value.String("+"), value.String("x"), value.Int(1)))
	assertRoundTrips(t, lambda)

	let := value.List(value.String("let"),
		value.List(value.List(value.String("x"), value.Int(1))),
		value.List(value.String("+"), value.String("x"), value.Int(1)))
	assertRoundTrips(t, let)
}

func TestRoundTripQuoteOfCompoundData(t *testing.T) {
	quoted := value.List(value.String("@"), value.List(value.Int(1), value.Int(2)))
	assertRoundTrips(t, quoted)
}

func TestRoundTripQuoteOfScalarCollapsesToBareLiteral(t *testing.T) {
	// quoting a bare scalar compiles identically to the scalar itself
	// (§4.3), so decompilation reconstructs the simpler unquoted form.
	quoted := value.List(value.String("quote"), value.Int(5))
	got := roundTrip(t, quoted)
	if !value.Equal(got, value.Int(5)) {
		t.Errorf("decompile(compile(quote 5)) = %v, want 5", got)
	}
}

func TestRoundTripTry(t *testing.T) {
	v := value.List(value.String("try"),
		value.List(value.String("/"), value.Int(1), value.Int(0)),
		value.List(value.String("lambda"), value.List(value.String("err")), value.String("err")))
	assertRoundTrips(t, v)
}

func TestRoundTripHost(t *testing.T) {
	v := value.List(value.String("host"), value.String("@log/info"), value.String("@hi"))
	assertRoundTrips(t, v)
}

func TestRoundTripWhereAndTransform(t *testing.T) {
	where := value.List(value.String("where"),
		value.String("items"),
		value.List(value.String(">"), value.String("age"), value.Int(25)))
	assertRoundTrips(t, where)

	transform := value.List(value.String("transform"),
		value.String("items"),
		value.List(value.String("pick"), value.String("@name")))
	assertRoundTrips(t, transform)
}

func TestRoundTripObject(t *testing.T) {
	obj := value.Object([]string{"@x", "y"}, map[string]value.Value{
		"@x": value.Int(1),
		"y":  value.String("z"),
	})
	assertRoundTrips(t, obj)
}

func TestRoundTripDo(t *testing.T) {
	v := value.List(value.String("do"),
		value.List(value.String("def"), value.String("x"), value.Int(1)),
		value.String("x"))
	assertRoundTrips(t, v)
}

func TestRoundTripNestedApply(t *testing.T) {
	// __apply__ path: the head itself is an expression, not a bare name.
	v := value.List(
		value.List(value.String("lambda"), value.List(value.String("x")), value.String("x")),
		value.Int(7))
	assertRoundTrips(t, v)
}

func TestCompileUnknownSpecialFormNameIsOrdinaryCall(t *testing.T) {
	// "foo" is not in the reserved set, so it compiles as a call, not an error.
	v := value.List(value.String("foo"), value.Int(1))
	if _, err := Compile(v); err != nil {
		t.Errorf("Compile(unreserved head) failed: %v", err)
	}
}

func TestCompileEmptyListSelfEvaluates(t *testing.T) {
	assertRoundTrips(t, value.ListFrom(nil))
}
