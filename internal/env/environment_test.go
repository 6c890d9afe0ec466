package env

import (
	"testing"

	"github.com/jsl-lang/jsl/internal/jerrors"
	"github.com/jsl-lang/jsl/internal/value"
)

func TestDefineAndLookup(t *testing.T) {
	e := New()
	if err := e.Define("x", value.Int(1)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	v, err := e.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v.AsInt() != 1 {
		t.Errorf("Lookup(x) = %v, want 1", v.AsInt())
	}
}

func TestLookupWalksParentChain(t *testing.T) {
	root := New()
	root.DefineUnchecked("shared", value.Int(7))
	child := root.Extend()
	v, err := child.Lookup("shared")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if v.AsInt() != 7 {
		t.Errorf("Lookup(shared) from child = %v, want 7", v.AsInt())
	}
}

func TestLookupMissingReturnsSymbolNotFound(t *testing.T) {
	e := New()
	_, err := e.Lookup("nope")
	jerr, ok := err.(*jerrors.JSLError)
	if !ok || jerr.Kind != jerrors.KindSymbolNotFound {
		t.Errorf("Lookup(missing) err = %v, want KindSymbolNotFound", err)
	}
}

func TestChildShadowsParent(t *testing.T) {
	root := New()
	root.DefineUnchecked("x", value.Int(1))
	child := root.ExtendWith(map[string]value.Value{"x": value.Int(2)})
	v, _ := child.Lookup("x")
	if v.AsInt() != 2 {
		t.Errorf("child shadow lookup = %v, want 2", v.AsInt())
	}
	pv, _ := root.Lookup("x")
	if pv.AsInt() != 1 {
		t.Errorf("parent unaffected by child shadow, got %v, want 1", pv.AsInt())
	}
}

func TestFrozenRefusesDefine(t *testing.T) {
	e := New()
	e.Freeze()
	err := e.Define("x", value.Int(1))
	jerr, ok := err.(*jerrors.JSLError)
	if !ok || jerr.Kind != jerrors.KindImmutablePrelude {
		t.Errorf("Define on frozen env err = %v, want KindImmutablePrelude", err)
	}
}

func TestDefineOnUnfrozenChildRefusesToShadowFrozenAncestorBinding(t *testing.T) {
	root := New()
	root.DefineUnchecked("+", value.Int(0))
	root.Freeze()
	child := root.Extend()
	err := child.Define("+", value.Int(99))
	jerr, ok := err.(*jerrors.JSLError)
	if !ok || jerr.Kind != jerrors.KindImmutablePrelude {
		t.Errorf("Define on unfrozen child shadowing a frozen ancestor binding = %v, want KindImmutablePrelude", err)
	}
	v, lerr := root.Lookup("+")
	if lerr != nil || v.AsInt() != 0 {
		t.Errorf("frozen ancestor binding mutated: v=%v err=%v", v, lerr)
	}
}

func TestDefineOnUnfrozenChildAllowsNewName(t *testing.T) {
	root := New()
	root.DefineUnchecked("+", value.Int(0))
	root.Freeze()
	child := root.Extend()
	if err := child.Define("x", value.Int(1)); err != nil {
		t.Errorf("Define(x) on a name absent from the frozen ancestor = %v, want nil", err)
	}
}

func TestDefineUncheckedBypassesFreeze(t *testing.T) {
	e := New()
	e.Freeze()
	e.DefineUnchecked("x", value.Int(5))
	v, err := e.Lookup("x")
	if err != nil || v.AsInt() != 5 {
		t.Errorf("DefineUnchecked on frozen env failed: v=%v err=%v", v, err)
	}
}

func TestLookupLocalDoesNotWalkParents(t *testing.T) {
	root := New()
	root.DefineUnchecked("x", value.Int(1))
	child := root.Extend()
	if _, ok := child.LookupLocal("x"); ok {
		t.Errorf("LookupLocal found parent binding, want miss")
	}
	if _, ok := root.LookupLocal("x"); !ok {
		t.Errorf("LookupLocal missed own binding")
	}
}

func TestRootWalksToOutermostAncestor(t *testing.T) {
	root := New()
	a := root.Extend()
	b := a.Extend()
	if b.Root() != root {
		t.Errorf("Root() did not return the outermost ancestor")
	}
}

func TestParentNilAtRoot(t *testing.T) {
	root := New()
	if root.Parent() != nil {
		t.Errorf("Parent() on root = %v, want nil", root.Parent())
	}
}

func TestHas(t *testing.T) {
	root := New()
	root.DefineUnchecked("x", value.Int(1))
	child := root.Extend()
	if !child.Has("x") {
		t.Errorf("Has(x) = false, want true")
	}
	if child.Has("nope") {
		t.Errorf("Has(nope) = true, want false")
	}
}

func TestLenAndRange(t *testing.T) {
	e := New()
	e.DefineUnchecked("a", value.Int(1))
	e.DefineUnchecked("b", value.Int(2))
	if e.Len() != 2 {
		t.Errorf("Len() = %d, want 2", e.Len())
	}
	seen := map[string]bool{}
	e.Range(func(name string, v value.Value) bool {
		seen[name] = true
		return true
	})
	if !seen["a"] || !seen["b"] {
		t.Errorf("Range did not visit all bindings: %v", seen)
	}
}
