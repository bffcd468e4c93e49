package viewstate

import (
	"errors"
	"testing"
)

func TestWrapSelectionErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapSelectionError("expr", "pending && missing", "screen/abc", base)

	var selErr *SelectorError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected SelectorError, got %T", err)
	}
	if selErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", selErr.Engine)
	}
	if selErr.Expr != "pending && missing" {
		t.Fatalf("expected expression metadata, got %q", selErr.Expr)
	}
	if selErr.Scope != "screen/abc" {
		t.Fatalf("expected scope metadata, got %q", selErr.Scope)
	}
	if !errors.Is(selErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapSelectionErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &SelectorError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapSelectionError("cel", "rule", "host/main", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Scope != "host/main" {
		t.Fatalf("scope should be filled, got %q", existing.Scope)
	}
}
