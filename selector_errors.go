package viewstate

import (
	"errors"
	"fmt"
	"strings"
)

// SelectorError captures engine metadata alongside the originating error.
type SelectorError struct {
	Engine string
	Expr   string
	Scope  string
	Err    error
}

func (e *SelectorError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("viewstate: %s selector %s scope=%s: %v", e.Engine, describeExpression(e.Expr), e.Scope, e.Err)
}

func (e *SelectorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapSelectorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var selErr *SelectorError
	if errors.As(err, &selErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "viewstate:") {
		return err
	}
	return fmt.Errorf("viewstate: %s selector: %w", engine, err)
}

func wrapSelectionError(engine, expr, scope string, err error) error {
	if err == nil {
		return nil
	}

	var selErr *SelectorError
	if errors.As(err, &selErr) {
		if selErr.Engine == "" {
			selErr.Engine = engine
		}
		if selErr.Expr == "" {
			selErr.Expr = expr
		}
		if selErr.Scope == "" {
			selErr.Scope = scope
		}
		return selErr
	}

	return &SelectorError{
		Engine: engine,
		Expr:   expr,
		Scope:  scope,
		Err:    err,
	}
}
