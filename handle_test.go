package viewstate

import (
	"errors"
	"fmt"
	"testing"
)

type fakeResolver struct {
	screen  *Store
	host    *Store
	args    any
	hasArgs bool
	err     error
	calls   int
}

func (r *fakeResolver) StoreFor(kind ScopeKind) (*Store, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	switch kind {
	case ScreenScope:
		return r.screen, nil
	case HostScope:
		return r.host, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
}

func (r *fakeResolver) Arguments() (any, bool) {
	return r.args, r.hasArgs
}

type tabState struct {
	Active int `json:"active"`
}

type tabArgs struct {
	Active int
}

func TestBindIsLazy(t *testing.T) {
	resolver := &fakeResolver{screen: NewStore(NewScreenKey())}
	handle := Bind[tabState](resolver, ScreenScope)

	if handle.Resolved() {
		t.Fatal("handle must stay unresolved until first dereference")
	}
	if resolver.calls != 0 {
		t.Fatalf("binding must not touch the resolver, got %d calls", resolver.calls)
	}
}

func TestHandleCachesResolution(t *testing.T) {
	resolver := &fakeResolver{screen: NewStore(NewScreenKey())}
	handle := Bind[tabState](resolver, ScreenScope)

	first, err := handle.Get()
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	second, err := handle.Get()
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached instance on repeat dereference")
	}
	if resolver.calls != 1 {
		t.Fatalf("expected one resolver call, got %d", resolver.calls)
	}
	if !handle.Resolved() {
		t.Fatal("handle should report resolved after first get")
	}
}

func TestHandleUsesInitialState(t *testing.T) {
	resolver := &fakeResolver{screen: NewStore(NewScreenKey())}
	handle := Bind(resolver, ScreenScope, WithInitialState(func() tabState {
		return tabState{Active: 2}
	}))

	state, err := handle.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Active != 2 {
		t.Fatalf("expected initializer state, got %+v", state)
	}
}

func TestHandlePrefersArgumentFactory(t *testing.T) {
	resolver := &fakeResolver{
		screen:  NewStore(NewScreenKey()),
		args:    tabArgs{Active: 7},
		hasArgs: true,
	}
	handle := Bind(resolver, ScreenScope,
		WithInitialState(func() tabState { return tabState{} }),
		FromArguments(func(args tabArgs) tabState {
			return tabState{Active: args.Active}
		}),
	)

	state, err := handle.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Active != 7 {
		t.Fatalf("expected argument-derived state, got %+v", state)
	}
}

func TestHandleFallsBackOnArgumentTypeMismatch(t *testing.T) {
	resolver := &fakeResolver{
		screen:  NewStore(NewScreenKey()),
		args:    "not tab args",
		hasArgs: true,
	}
	handle := Bind(resolver, ScreenScope,
		WithInitialState(func() tabState { return tabState{Active: 1} }),
		FromArguments(func(args tabArgs) tabState {
			return tabState{Active: args.Active}
		}),
	)

	state, err := handle.State()
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Active != 1 {
		t.Fatalf("expected default-initializer fallback, got %+v", state)
	}
}

func TestHandlePropagatesResolverFailure(t *testing.T) {
	boom := errors.New("resolver down")
	handle := Bind[tabState](&fakeResolver{err: boom}, ScreenScope)

	if _, err := handle.Get(); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
	if handle.Resolved() {
		t.Fatal("a failed dereference must not cache a resolution")
	}
}

func TestHandlePropagatesOrderingViolation(t *testing.T) {
	resolver := &fakeResolver{host: NewStore(NewHostKey("main"))}
	handle := Bind[tabState](resolver, HostScope)

	_, err := handle.Get()
	if !errors.Is(err, ErrOrderingViolation) {
		t.Fatalf("expected ErrOrderingViolation, got %v", err)
	}
}
