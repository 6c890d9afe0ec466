package prelude

import (
	"testing"

	"github.com/jsl-lang/jsl/internal/value"
)

func TestDequoteStripsAtPrefixedStrings(t *testing.T) {
	in := value.String("@admin")
	out := Dequote(in)
	if out.AsString() != "admin" {
		t.Errorf("Dequote(@admin) = %q, want %q", out.AsString(), "admin")
	}
}

func TestDequotePassesThroughBareStrings(t *testing.T) {
	in := value.String("plain")
	out := Dequote(in)
	if out.AsString() != "plain" {
		t.Errorf("Dequote(plain) = %q, want unchanged", out.AsString())
	}
}

func TestDequoteStripsObjectKeysAndValuesRecursively(t *testing.T) {
	in := value.Object([]string{"@age", "@role"}, map[string]value.Value{
		"@age":  value.Int(30),
		"@role": value.String("@admin"),
	})
	out := Dequote(in)
	if out.Kind() != value.KindObject {
		t.Fatalf("Kind() = %v, want KindObject", out.Kind())
	}
	role, ok := out.ObjectGet("role")
	if !ok {
		t.Fatalf("missing dequoted key 'role'")
	}
	if role.AsString() != "admin" {
		t.Errorf("role = %q, want %q", role.AsString(), "admin")
	}
	if _, ok := out.ObjectGet("@role"); ok {
		t.Errorf("original @-prefixed key still present")
	}
}

func TestDequoteRecursesIntoLists(t *testing.T) {
	in := value.List(value.String("@a"), value.List(value.String("@b")))
	out := Dequote(in)
	elems := out.AsList()
	if elems[0].AsString() != "a" {
		t.Errorf("elems[0] = %q, want %q", elems[0].AsString(), "a")
	}
	if elems[1].AsList()[0].AsString() != "b" {
		t.Errorf("nested list element not dequoted")
	}
}

func TestDequotePassesThroughNonStringScalars(t *testing.T) {
	for _, v := range []value.Value{value.Null, value.Bool(true), value.Int(1)} {
		out := Dequote(v)
		if !value.Equal(out, v) {
			t.Errorf("Dequote(%v) = %v, want unchanged", v, out)
		}
	}
}
