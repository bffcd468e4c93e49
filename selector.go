package viewstate

import (
	"encoding/json"
	"fmt"
	"time"
)

// SelectorContext carries the inputs a selector expression evaluates
// against. State is the container value being selected from; Args and
// Metadata are caller-supplied extras exposed to the expression environment.
type SelectorContext struct {
	State    any
	Args     any
	Metadata map[string]any
	Now      time.Time
	Scope    string
}

func (c SelectorContext) withDefaultNow() SelectorContext {
	if c.Now.IsZero() {
		c.Now = time.Now().UTC()
	}
	return c
}

func (c SelectorContext) withDefaultMaps() SelectorContext {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	return c
}

func (c SelectorContext) timestamp() time.Time {
	if c.Now.IsZero() {
		return time.Now().UTC()
	}
	return c.Now
}

// Engine evaluates selector expressions against a context.
type Engine interface {
	Evaluate(ctx SelectorContext, expression string) (any, error)
	Compile(expression string, opts ...CompileOption) (CompiledSelector, error)
}

// CompiledSelector is a selector prepared for repeated evaluation.
type CompiledSelector interface {
	Evaluate(ctx SelectorContext) (any, error)
}

// CompileOption reserves room for engine-specific compile knobs.
type CompileOption func(any)

// Select evaluates a read-only selector expression against the current
// container value using the store's configured engine. Selectors derive
// values; they never mutate state.
func (r *Ref[T]) Select(expression string) (any, error) {
	return r.SelectWith(SelectorContext{}, expression)
}

// SelectWith evaluates expression with ctx, filling ctx.State from the
// current container value when the caller leaves it nil.
func (r *Ref[T]) SelectWith(ctx SelectorContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	engine, err := r.store.resolveEngine()
	if err != nil {
		return nil, err
	}
	if ctx.State == nil {
		ctx.State = r.current
	}
	if ctx.Scope == "" {
		ctx.Scope = r.store.key.Identifier()
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()

	engineName := selectorEngineName(engine)
	start := time.Now()
	value, evalErr := engine.Evaluate(ctx, expression)
	duration := time.Since(start)
	evalErr = wrapSelectionError("", expression, ctx.Scope, evalErr)
	r.store.selectorLogger().LogSelection(SelectorLogEvent{
		Engine:    engineName,
		Expr:      expression,
		Container: r.container,
		Scope:     ctx.Scope,
		Duration:  duration,
		Err:       evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

func selectorEngineName(e Engine) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*viewstate.exprEngine":
		return "expr"
	case "*viewstate.celEngine":
		return "cel"
	default:
		return "custom"
	}
}

// stateAsMap normalizes an arbitrary container value into the map form the
// engines expose to expressions. Struct containers go through a JSON round
// trip so field visibility matches their serialized shape.
func stateAsMap(value any) map[string]any {
	if value == nil {
		return map[string]any{}
	}
	if m, ok := value.(map[string]any); ok {
		return m
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
