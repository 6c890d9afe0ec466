package serialize

import (
	"strings"
	"testing"

	"github.com/jsl-lang/jsl/internal/env"
	"github.com/jsl-lang/jsl/internal/prelude"
	"github.com/jsl-lang/jsl/internal/value"
)

func TestSerializeSimplePathForPlainData(t *testing.T) {
	v := value.Object([]string{"a", "b"}, map[string]value.Value{
		"a": value.Int(1),
		"b": value.List(value.String("x"), value.Bool(true)),
	})
	data, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if strings.Contains(string(data), "__cas_version__") {
		t.Errorf("plain data serialized through the CAS envelope, want direct JSON: %s", data)
	}
}

// TestSerializationRoundTripPlainData covers testable property 3 for closure-free
// values.
func TestSerializationRoundTripPlainData(t *testing.T) {
	v := value.Object([]string{"a", "b"}, map[string]value.Value{
		"a": value.Int(1),
		"b": value.List(value.String("x"), value.Null, value.Bool(false)),
	})
	data, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Deserialize(data, prelude.New())
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !value.Equal(got, v) {
		t.Errorf("round trip mismatch: got %v, want %v", got, v)
	}
}

func TestSerializeClosureUsesCASEnvelope(t *testing.T) {
	root := prelude.New()
	closureEnv := root.Extend()
	closureEnv.DefineUnchecked("captured", value.Int(99))
	c := &value.Closure{Params: []string{"x"}, Body: value.List(value.String("+"), value.String("x"), value.String("captured")), Env: closureEnv}
	v := value.ClosureValue(c)

	data, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(data), "__cas_version__") {
		t.Errorf("closure did not serialize through the CAS envelope: %s", data)
	}
	if !strings.Contains(string(data), "captured") {
		t.Errorf("captured binding missing from CAS envelope: %s", data)
	}
}

func TestSerializeDoesNotEmitPreludeAncestors(t *testing.T) {
	root := prelude.New()
	c := &value.Closure{Params: []string{"x"}, Body: value.String("x"), Env: root.Extend()}
	data, err := Serialize(value.ClosureValue(c))
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// Every prelude builtin name would appear verbatim if the frozen root
	// were walked and its bindings emitted; none should be present.
	if strings.Contains(string(data), `"sqrt"`) {
		t.Errorf("serialized output embeds prelude bindings, want truncation at the frozen root: %s", data)
	}
}

func TestClosureRoundTripAppliesCorrectly(t *testing.T) {
	root := prelude.New()
	scope := root.Extend()
	c := &value.Closure{Name: "inc", Params: []string{"x"}, Body: value.List(value.String("+"), value.String("x"), value.Int(1)), Env: scope}
	v := value.ClosureValue(c)

	data, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	freshRoot := prelude.New()
	restored, err := Deserialize(data, freshRoot)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if restored.Kind() != value.KindClosure {
		t.Fatalf("restored Kind() = %v, want KindClosure", restored.Kind())
	}
	rc := restored.AsClosure()
	if rc.Name != "inc" || len(rc.Params) != 1 || rc.Params[0] != "x" {
		t.Errorf("restored closure shape = %+v", rc)
	}
	// The restored closure's captured environment must chain up to the
	// *fresh* prelude root, not the original one.
	capturedEnv, ok := rc.Env.(*env.Environment)
	if !ok {
		t.Fatalf("restored closure Env is %T, want *env.Environment", rc.Env)
	}
	if capturedEnv.Root() != freshRoot {
		t.Errorf("restored closure's environment chain does not terminate at the fresh prelude root")
	}
}

func TestBuiltinIsNotFullySerialized(t *testing.T) {
	root := prelude.New()
	plusVal, err := root.Lookup("+")
	if err != nil {
		t.Fatalf("Lookup(+): %v", err)
	}
	data, err := Serialize(plusVal)
	if err != nil {
		t.Fatalf("Serialize(+): %v", err)
	}
	restored, err := Deserialize(data, root)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	b, ok := prelude.AsBuiltin(restored)
	if !ok || b.Name != "+" {
		t.Errorf("restored value is not the '+' builtin: %+v ok=%v", restored, ok)
	}
}
