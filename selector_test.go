package viewstate

import (
	"errors"
	"testing"
)

type queueState struct {
	Pending int      `json:"pending"`
	Done    int      `json:"done"`
	Labels  []string `json:"labels"`
}

func selectorRef(t *testing.T, opts ...StoreOption) *Ref[queueState] {
	t.Helper()
	store := NewStore(NewScreenKey(), opts...)
	if err := store.RestoreViewModels(&plainOwner{store: store}, nil); err != nil {
		t.Fatalf("restore: %v", err)
	}
	ref, err := Get(store, DefaultFactory[queueState](func() queueState {
		return queueState{Pending: 3, Done: 1, Labels: []string{"inbox"}}
	}))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return ref
}

func TestSelectWithDefaultExprEngine(t *testing.T) {
	ref := selectorRef(t)

	got, err := ref.Select("pending + done")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != float64(4) {
		t.Fatalf("expected 4, got %v (%T)", got, got)
	}
}

func TestSelectExposesStateBinding(t *testing.T) {
	ref := selectorRef(t)

	got, err := ref.Select(`state.pending > state.done`)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestSelectWithCELEngine(t *testing.T) {
	ref := selectorRef(t, WithSelectorEngine(NewCELEngine()))

	got, err := ref.Select("pending >= 2 && labels.size() == 1")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestSelectWithCELEngineCallsRegisteredFunction(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("flagged", func(args ...any) (any, error) {
		return true, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	ref := selectorRef(t, WithSelectorEngine(NewCELEngine(CELWithFunctionRegistry(registry))))

	got, err := ref.Select(`call("flagged")`)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != true {
		t.Fatalf("expected true, got %v (%T)", got, got)
	}
}

func TestSelectCallsRegisteredFunction(t *testing.T) {
	ref := selectorRef(t, WithSelectorFunction("remaining", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, errors.New("remaining expects two arguments")
		}
		return args[0].(float64) - args[1].(float64), nil
	}))

	got, err := ref.Select("remaining(pending, done)")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if got != float64(2) {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestSelectPopulatesProgramCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	ref := selectorRef(t, WithProgramCache(cache))

	if _, err := ref.Select("pending"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, ok := cache.Get("pending"); !ok {
		t.Fatal("expected compiled program in cache")
	}
	if _, err := ref.Select("pending"); err != nil {
		t.Fatalf("cached select: %v", err)
	}
}

func TestSelectLogsEvaluations(t *testing.T) {
	var events []SelectorLogEvent
	ref := selectorRef(t, WithSelectorLogger(SelectorLoggerFunc(func(event SelectorLogEvent) {
		events = append(events, event)
	})))

	if _, err := ref.Select("done"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one log event, got %d", len(events))
	}
	event := events[0]
	if event.Engine != "expr" || event.Expr != "done" || event.Err != nil {
		t.Fatalf("unexpected log event: %+v", event)
	}
	if event.Container != "viewstate.queueState" {
		t.Fatalf("unexpected container: %q", event.Container)
	}
}

func TestSelectWrapsEngineFailures(t *testing.T) {
	ref := selectorRef(t)

	_, err := ref.Select("pending +")
	if err == nil {
		t.Fatal("expected a selector error for a broken expression")
	}
	var selErr *SelectorError
	if !errors.As(err, &selErr) {
		t.Fatalf("expected *SelectorError, got %T", err)
	}
	if selErr.Engine != "expr" || selErr.Expr != "pending +" {
		t.Fatalf("unexpected error metadata: %+v", selErr)
	}
}

func TestSelectRejectsEmptyExpression(t *testing.T) {
	ref := selectorRef(t)
	if _, err := ref.Select(""); err == nil {
		t.Fatal("expected error for empty expression")
	}
}

func TestSelectWithOverridesState(t *testing.T) {
	ref := selectorRef(t)

	got, err := ref.SelectWith(SelectorContext{
		State: map[string]any{"pending": 10},
	}, "pending")
	if err != nil {
		t.Fatalf("select with: %v", err)
	}
	if got != 10 {
		t.Fatalf("expected caller-supplied state to win, got %v", got)
	}
}

func TestCompiledSelectorReusesProgram(t *testing.T) {
	engine := NewExprEngine(ExprWithProgramCache(NewMemoryProgramCache()))
	compiled, err := engine.Compile("pending * 2")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	got, err := compiled.Evaluate(SelectorContext{State: map[string]any{"pending": 2}})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
	got, err = compiled.Evaluate(SelectorContext{State: map[string]any{"pending": 5}})
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
}
