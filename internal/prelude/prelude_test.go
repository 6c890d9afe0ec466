package prelude

import (
	"testing"

	"github.com/jsl-lang/jsl/internal/value"
)

func call(t *testing.T, name string, args ...value.Value) value.Value {
	t.Helper()
	b, ok := Lookup(name)
	if !ok {
		t.Fatalf("builtin %q not registered", name)
	}
	v, err := b.Fn(&Context{}, args)
	if err != nil {
		t.Fatalf("%s%v: %v", name, args, err)
	}
	return v
}

// TestZeroArityIdentities covers testable property 7 (§4.1).
func TestZeroArityIdentities(t *testing.T) {
	if got := call(t, "+"); got.AsNumber() != 0 {
		t.Errorf("+() = %v, want 0", got.AsNumber())
	}
	if got := call(t, "*"); got.AsNumber() != 1 {
		t.Errorf("*() = %v, want 1", got.AsNumber())
	}
	if got := call(t, "-"); got.AsNumber() != 0 {
		t.Errorf("-() = %v, want 0", got.AsNumber())
	}
	if got := call(t, "/"); got.AsNumber() != 1 {
		t.Errorf("/() = %v, want 1", got.AsNumber())
	}
	if got := call(t, "min"); got.AsNumber() <= 1e300 {
		t.Errorf("min() = %v, want +Inf", got.AsNumber())
	}
	if got := call(t, "max"); got.AsNumber() >= -1e300 {
		t.Errorf("max() = %v, want -Inf", got.AsNumber())
	}
	if got := call(t, "and"); !got.AsBool() {
		t.Errorf("and() = %v, want true", got.AsBool())
	}
	if got := call(t, "or"); got.AsBool() {
		t.Errorf("or() = %v, want false", got.AsBool())
	}
}

func TestNew_FreezesAndBindsAllBuiltins(t *testing.T) {
	root := New()
	if !root.Frozen() {
		t.Fatalf("New() prelude root not frozen")
	}
	if err := root.Define("+", value.Int(0)); err == nil {
		t.Errorf("Define on frozen prelude succeeded, want ImmutablePrelude")
	}
	v, err := root.Lookup("+")
	if err != nil {
		t.Fatalf("Lookup(+): %v", err)
	}
	if v.Kind() != value.KindClosure {
		t.Errorf("builtin '+' bound as %v, want KindClosure", v.Kind())
	}
}

func TestAsBuiltinRoundTrip(t *testing.T) {
	root := New()
	v, _ := root.Lookup("+")
	b, ok := AsBuiltin(v)
	if !ok {
		t.Fatalf("AsBuiltin() ok=false for a prelude builtin")
	}
	if b.Name != "+" {
		t.Errorf("Name = %q, want %q", b.Name, "+")
	}
}

func TestAsBuiltinRejectsOrdinaryClosure(t *testing.T) {
	v := value.ClosureValue(&value.Closure{Params: []string{"x"}, Body: value.Int(1)})
	if _, ok := AsBuiltin(v); ok {
		t.Errorf("AsBuiltin() ok=true for an ordinary closure, want false")
	}
}

// TestApplyDescriptorIdempotence covers testable property 8 (§8).
func TestApplyDescriptorIdempotence(t *testing.T) {
	obj := value.Object([]string{"a", "b"}, map[string]value.Value{
		"a": value.Int(1), "b": value.Int(2),
	})
	pickAll := &value.Descriptor{Op: "pick", Args: []value.Value{value.String("a"), value.String("b")}}
	got, err := ApplyDescriptor(&Context{}, obj, pickAll)
	if err != nil {
		t.Fatalf("ApplyDescriptor(pick all keys): %v", err)
	}
	if !value.Equal(got, obj) {
		t.Errorf("transform(o, pick K) != o")
	}

	omitNone := &value.Descriptor{Op: "omit", Args: nil}
	got2, err := ApplyDescriptor(&Context{}, obj, omitNone)
	if err != nil {
		t.Fatalf("ApplyDescriptor(omit none): %v", err)
	}
	if !value.Equal(got2, obj) {
		t.Errorf("transform(o, omit empty) != o")
	}
}

func TestApplyDescriptorRename(t *testing.T) {
	obj := value.Object([]string{"a"}, map[string]value.Value{"a": value.Int(1)})
	got, err := ApplyDescriptor(&Context{}, obj, &value.Descriptor{Op: "rename", Args: []value.Value{value.String("a"), value.String("b")}})
	if err != nil {
		t.Fatalf("ApplyDescriptor(rename): %v", err)
	}
	v, ok := got.ObjectGet("b")
	if !ok || v.AsInt() != 1 {
		t.Errorf("rename result = %v", got)
	}
	if _, ok := got.ObjectGet("a"); ok {
		t.Errorf("old key still present after rename")
	}
}

func TestApplyDescriptorRenameMissingKeyIsNoOp(t *testing.T) {
	obj := value.Object([]string{"a"}, map[string]value.Value{"a": value.Int(1)})
	got, err := ApplyDescriptor(&Context{}, obj, &value.Descriptor{Op: "rename", Args: []value.Value{value.String("missing"), value.String("b")}})
	if err != nil {
		t.Fatalf("ApplyDescriptor(rename missing): %v", err)
	}
	if !value.Equal(got, obj) {
		t.Errorf("rename of a missing key mutated the object")
	}
}

// TestSortByOrdersElementsByKeyNotByPosition guards against sorting `out`
// in place while the comparator still indexes keysCache positionally: with
// fewer than 3 elements a single swap can't expose the bug, so this uses 5.
func TestSortByOrdersElementsByKeyNotByPosition(t *testing.T) {
	mk := func(n int64) value.Value {
		return value.Object([]string{"n"}, map[string]value.Value{"n": value.Int(n)})
	}
	lst := value.ListFrom([]value.Value{mk(5), mk(3), mk(1), mk(4), mk(2)})
	got := call(t, "sort-by", lst, value.String("n"))
	elems := got.AsList()
	want := []int64{1, 2, 3, 4, 5}
	if len(elems) != len(want) {
		t.Fatalf("len = %d, want %d", len(elems), len(want))
	}
	for i, w := range want {
		n, ok := elems[i].ObjectGet("n")
		if !ok || n.AsInt() != w {
			t.Errorf("elems[%d].n = %v, want %d (full result: %v)", i, n, w, got)
		}
	}
}

func TestGetSetPath(t *testing.T) {
	obj := value.EmptyObject()
	updated, err := setPath(obj, "a.b", value.Int(5))
	if err != nil {
		t.Fatalf("setPath: %v", err)
	}
	got, ok, err := getPath("get-path", updated, "a.b")
	if err != nil || !ok {
		t.Fatalf("getPath: got=%v ok=%v err=%v", got, ok, err)
	}
	if got.AsInt() != 5 {
		t.Errorf("getPath(a.b) = %v, want 5", got.AsInt())
	}
}

func TestGetPathWildcardFlattensOneLevel(t *testing.T) {
	list := value.ListFrom([]value.Value{
		value.Object([]string{"xs"}, map[string]value.Value{"xs": value.ListFrom([]value.Value{value.Int(1), value.Int(2)})}),
		value.Object([]string{"xs"}, map[string]value.Value{"xs": value.ListFrom([]value.Value{value.Int(3)})}),
	})
	got, ok, err := getPath("get-path", list, "*.xs")
	if err != nil || !ok {
		t.Fatalf("getPath(*.xs): ok=%v err=%v", ok, err)
	}
	want := []int64{1, 2, 3}
	elems := got.AsList()
	if len(elems) != len(want) {
		t.Fatalf("len = %d, want %d", len(elems), len(want))
	}
	for i, w := range want {
		if elems[i].AsInt() != w {
			t.Errorf("elems[%d] = %v, want %d", i, elems[i], w)
		}
	}
}
