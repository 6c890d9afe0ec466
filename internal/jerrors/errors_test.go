package jerrors

import "testing"

func TestErrorMessageFormat(t *testing.T) {
	err := SymbolNotFound("foo")
	if err.Error() != "SymbolNotFound: symbol not found: foo" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestTypeErrorfDetails(t *testing.T) {
	err := TypeErrorf("get", "list", "number")
	if err.Kind != KindTypeError {
		t.Errorf("Kind = %v, want KindTypeError", err.Kind)
	}
	details, ok := err.Details.(map[string]any)
	if !ok {
		t.Fatalf("Details = %T, want map[string]any", err.Details)
	}
	if details["expected"] != "list" || details["got"] != "number" {
		t.Errorf("Details = %v", details)
	}
}

func TestArityErrorfAndRangeVariant(t *testing.T) {
	e1 := ArityErrorf("if", 3, 2)
	if e1.Kind != KindArityError {
		t.Errorf("Kind = %v, want KindArityError", e1.Kind)
	}
	e2 := ArityRangeErrorf("host", 1, -1, 0)
	if e2.Kind != KindArityError {
		t.Errorf("Kind = %v, want KindArityError", e2.Kind)
	}
}

func TestWithDetailsChains(t *testing.T) {
	err := New(KindDomainError, "bad").WithDetails(42)
	if err.Details != 42 {
		t.Errorf("Details = %v, want 42", err.Details)
	}
}

func TestHostErrorFromAttachesHostType(t *testing.T) {
	err := HostErrorFrom("net/timeout", "timed out", nil)
	details, ok := err.Details.(map[string]any)
	if !ok || details["hostType"] != "net/timeout" {
		t.Errorf("Details = %v", err.Details)
	}
}

func TestRecordShape(t *testing.T) {
	err := DivisionByZero("/")
	kind, message, _ := err.Record()
	if kind != string(KindDivisionByZero) {
		t.Errorf("kind = %q", kind)
	}
	if message == "" {
		t.Errorf("message empty")
	}
}

func TestImmutablePreludeKind(t *testing.T) {
	err := ImmutablePrelude("x")
	if err.Kind != KindImmutablePrelude {
		t.Errorf("Kind = %v, want KindImmutablePrelude", err.Kind)
	}
}
