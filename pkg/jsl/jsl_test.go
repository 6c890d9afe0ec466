package jsl

import (
	"context"
	"testing"

	"github.com/jsl-lang/jsl/internal/host"
	"github.com/jsl-lang/jsl/internal/value"
)

func mustParse(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%s): %v", src, err)
	}
	return v
}

// TestFactorial is the first seed scenario of §8.
func TestFactorial(t *testing.T) {
	r := New(Options{})
	expr := mustParse(t, `["let", [["fact", ["lambda", ["n"], ["if", ["<=", "n", 1], 1, ["*", "n", ["fact", ["-", "n", 1]]]]]]], ["fact", 5]]`)
	got, err := r.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.AsNumber() != 120 {
		t.Errorf("fact(5) = %v, want 120", got.AsNumber())
	}
}

// TestFactorialTreeEvaluatorAgreesWithVM covers testable property 1.
func TestFactorialTreeEvaluatorAgreesWithVM(t *testing.T) {
	r := New(Options{})
	expr := mustParse(t, `["let", [["fact", ["lambda", ["n"], ["if", ["<=", "n", 1], 1, ["*", "n", ["fact", ["-", "n", 1]]]]]]], ["fact", 5]]`)
	viaVM, err := r.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate (vm): %v", err)
	}
	viaTree, err := r.EvaluateTree(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("EvaluateTree: %v", err)
	}
	if !value.Equal(viaVM, viaTree) {
		t.Errorf("evaluator_tree(e) = %v, vm(compile(e)) = %v, want equal", viaTree, viaVM)
	}
}

// TestRecursiveClosureSurvivesSerialization is the second seed scenario.
func TestRecursiveClosureSurvivesSerialization(t *testing.T) {
	r := New(Options{})
	expr := mustParse(t, `["do", ["def", "inc", ["lambda", ["x"], ["+", "x", 1]]], "inc"]`)
	closureVal, err := r.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if closureVal.Kind() != value.KindClosure {
		t.Fatalf("Kind() = %v, want KindClosure", closureVal.Kind())
	}

	data, err := Serialize(closureVal)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	fresh := New(Options{})
	restored, err := fresh.Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if restored.Kind() != value.KindClosure {
		t.Fatalf("restored Kind() = %v, want KindClosure", restored.Kind())
	}

	result, err := fresh.Apply(restored, []value.Value{value.Int(41)}, DefaultBudget())
	if err != nil {
		t.Fatalf("Apply(restored closure, 41): %v", err)
	}
	if result.AsNumber() != 42 {
		t.Errorf("inc(41) after round trip = %v, want 42", result.AsNumber())
	}
}

// TestWhereWithAutoBinding is the third seed scenario, and depends on the
// quoted-data dequoting convention (§4.1 "String literal convention inside
// quoted data").
func TestWhereWithAutoBinding(t *testing.T) {
	r := New(Options{})
	expr := mustParse(t, `["where", ["@", [{"@age": 30, "@role": "@admin"}, {"@age": 20, "@role": "@user"}]], ["and", [">", "age", 25], ["=", "role", "@admin"]]]`)
	got, err := r.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Kind() != value.KindList || len(got.AsList()) != 1 {
		t.Fatalf("where result = %v, want a one-element list", got)
	}
	obj := got.AsList()[0]
	age, _ := obj.ObjectGet("age")
	role, _ := obj.ObjectGet("role")
	if age.AsNumber() != 30 {
		t.Errorf("age = %v, want 30", age.AsNumber())
	}
	if role.AsString() != "admin" {
		t.Errorf("role = %q, want %q (the @ must be stripped)", role.AsString(), "admin")
	}
}

func TestWhereWithAutoBindingTreeEvaluatorAgrees(t *testing.T) {
	r := New(Options{})
	expr := mustParse(t, `["where", ["@", [{"@age": 30, "@role": "@admin"}, {"@age": 20, "@role": "@user"}]], ["and", [">", "age", 25], ["=", "role", "@admin"]]]`)
	viaVM, err := r.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	viaTree, err := r.EvaluateTree(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("EvaluateTree: %v", err)
	}
	if !value.Equal(viaVM, viaTree) {
		t.Errorf("evaluator_tree = %v, vm = %v, want equal", viaTree, viaVM)
	}
}

// TestTransformPipeline is the fourth seed scenario.
func TestTransformPipeline(t *testing.T) {
	r := New(Options{})
	expr := mustParse(t, `["transform", ["@", [{"@name": "@a", "@price": 100}]], ["assign", "@discounted", ["*", "price", 0.9]], ["pick", "@name", "@discounted"]]`)
	got, err := r.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Kind() != value.KindList || len(got.AsList()) != 1 {
		t.Fatalf("transform result = %v, want a one-element list", got)
	}
	obj := got.AsList()[0]
	name, ok := obj.ObjectGet("name")
	if !ok || name.AsString() != "a" {
		t.Errorf("name = %v, ok=%v, want %q", name, ok, "a")
	}
	discounted, ok := obj.ObjectGet("discounted")
	if !ok || discounted.AsNumber() != 90 {
		t.Errorf("discounted = %v, ok=%v, want 90", discounted, ok)
	}
	if _, ok := obj.ObjectGet("price"); ok {
		t.Errorf("price field should have been dropped by pick")
	}
}

// TestPauseResumeSumTo1000 is the fifth seed scenario: a budget sufficient
// for only half the work pauses; resuming with a fresh budget finishes it
// with the same result as running uninterrupted (testable property 4).
func TestPauseResumeSumTo1000(t *testing.T) {
	expr := mustParse(t, `["let", [["sum", ["lambda", ["n", "acc"], ["if", ["<=", "n", 0], "acc", ["sum", ["-", "n", 1], ["+", "acc", "n"]]]]]], ["sum", 1000, 0]]`)

	full := New(Options{})
	want, err := full.Evaluate(expr, Budget{Gas: 10_000_000, Steps: 10_000_000, MaxStackDepth: 100_000})
	if err != nil {
		t.Fatalf("uninterrupted Evaluate: %v", err)
	}
	if want.AsNumber() != 500500 {
		t.Fatalf("sanity: sum 1..1000 = %v, want 500500", want.AsNumber())
	}

	r := New(Options{})
	tight := Budget{Gas: 17_500, Steps: 5_000, MaxStackDepth: 100_000}
	_, err = r.Evaluate(expr, tight)
	paused, ok := err.(*Paused)
	if !ok {
		t.Fatalf("Evaluate with a tight budget = %v, want *Paused", err)
	}

	resumed, err := r.Resume(paused, Budget{Gas: 10_000_000, Steps: 10_000_000, MaxStackDepth: 100_000})
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if resumed.AsNumber() != 500500 {
		t.Errorf("resumed result = %v, want 500500", resumed.AsNumber())
	}
}

// TestHostEffectReification is the sixth seed scenario.
func TestHostEffectReification(t *testing.T) {
	r := New(Options{})
	var gotCmd string
	var gotArgs []value.Value
	calls := 0
	r.RegisterHostCommand("log/info", host.ManifestEntry{Description: "log a message", MinArgs: 1, MaxArgs: 1},
		func(ctx context.Context, args []value.Value) (value.Value, error) {
			calls++
			gotCmd = "log/info"
			gotArgs = args
			return value.String("logged"), nil
		})

	expr := mustParse(t, `["host", "@log/info", "@hi"]`)
	result, err := r.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if calls != 1 {
		t.Errorf("dispatcher called %d times, want exactly 1", calls)
	}
	if gotCmd != "log/info" {
		t.Errorf("cmd = %q, want %q", gotCmd, "log/info")
	}
	if len(gotArgs) != 1 || gotArgs[0].AsString() != "hi" {
		t.Errorf("args = %v, want [\"hi\"]", gotArgs)
	}
	if result.AsString() != "logged" {
		t.Errorf("result = %q, want %q", result.AsString(), "logged")
	}
}

// TestPreludeImmutability covers testable property 5.
func TestPreludeImmutability(t *testing.T) {
	r := New(Options{})
	expr := mustParse(t, `["def", "+", 0]`)
	_, err := r.Evaluate(expr, DefaultBudget())
	if err == nil {
		t.Fatalf("redefining a prelude builtin succeeded, want ImmutablePrelude")
	}
}

// TestDeterminismWithoutHostCalls covers testable property 9.
func TestDeterminismWithoutHostCalls(t *testing.T) {
	expr := mustParse(t, `["let", [["fact", ["lambda", ["n"], ["if", ["<=", "n", 1], 1, ["*", "n", ["fact", ["-", "n", 1]]]]]]], ["fact", 6]]`)
	r1 := New(Options{})
	r2 := New(Options{})
	v1, err := r1.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate r1: %v", err)
	}
	v2, err := r2.Evaluate(expr, DefaultBudget())
	if err != nil {
		t.Fatalf("Evaluate r2: %v", err)
	}
	if !value.Equal(v1, v2) {
		t.Errorf("two independent runs diverged: %v vs %v", v1, v2)
	}
}

func TestHostManifestLists(t *testing.T) {
	r := New(Options{})
	r.RegisterHostCommand("ping", host.ManifestEntry{Description: "ping", MinArgs: 0, MaxArgs: 0},
		func(ctx context.Context, args []value.Value) (value.Value, error) { return value.Null, nil })
	manifest := r.HostManifest()
	if len(manifest) != 1 || manifest[0].ID != "ping" {
		t.Errorf("HostManifest() = %+v, want a single 'ping' entry", manifest)
	}
}
