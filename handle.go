package viewstate

import "fmt"

// BindOption configures a Handle at bind time.
type BindOption[T any] func(*bindConfig[T])

type bindConfig[T any] struct {
	initial  DefaultFactory[T]
	fromArgs func(raw any) (Factory[T], bool)
}

// WithInitialState declares the zero-argument initializer used when no
// argument value applies.
func WithInitialState[T any](init func() T) BindOption[T] {
	return func(cfg *bindConfig[T]) {
		cfg.initial = init
	}
}

// FromArguments declares an argument-seeded initializer. It is selected over
// the default initializer only when the screen carries an argument value of
// type A; otherwise construction falls back to the default.
func FromArguments[T, A any](init func(A) T) BindOption[T] {
	return func(cfg *bindConfig[T]) {
		cfg.fromArgs = func(raw any) (Factory[T], bool) {
			args, ok := raw.(A)
			if !ok {
				return nil, false
			}
			return ArgumentFactory[T, A]{Args: args, Init: init}, true
		}
	}
}

// Handle is the consumer-facing accessor for one view-model binding.
// Construction returns an unresolved handle; the first Get resolves the
// target store through the scope resolver, triggers creation with initial
// state when absent, and caches the result for the handle's lifetime.
type Handle[T any] struct {
	resolver ScopeResolver
	kind     ScopeKind
	cfg      bindConfig[T]
	ref      *Ref[T]
}

// Bind declares a view-model binding for the given scope kind without
// resolving it.
func Bind[T any](resolver ScopeResolver, kind ScopeKind, opts ...BindOption[T]) *Handle[T] {
	cfg := bindConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Handle[T]{resolver: resolver, kind: kind, cfg: cfg}
}

// Resolved reports whether the handle has been dereferenced yet.
func (h *Handle[T]) Resolved() bool {
	return h.ref != nil
}

// Get resolves the binding on first use and returns the stable live
// instance. Later calls return the cached resolution without touching the
// resolver again.
func (h *Handle[T]) Get() (*Ref[T], error) {
	if h.ref != nil {
		return h.ref, nil
	}
	if h.resolver == nil {
		return nil, fmt.Errorf("viewstate: handle has no scope resolver")
	}

	store, err := h.resolver.StoreFor(h.kind)
	if err != nil {
		return nil, fmt.Errorf("viewstate: resolve %s store: %w", h.kind, err)
	}

	ref, err := Get(store, h.factory())
	if err != nil {
		return nil, err
	}
	h.ref = ref
	return ref, nil
}

// MustGet is Get for call sites where a failure is a programmer error.
func (h *Handle[T]) MustGet() *Ref[T] {
	ref, err := h.Get()
	if err != nil {
		panic(err)
	}
	return ref
}

// State resolves the handle and returns the current container value.
func (h *Handle[T]) State() (T, error) {
	ref, err := h.Get()
	if err != nil {
		var zero T
		return zero, err
	}
	return ref.State(), nil
}

// factory picks the most specific available initializer: argument-based
// construction when the screen supplied a matching argument value, the
// zero-argument default otherwise.
func (h *Handle[T]) factory() Factory[T] {
	if h.cfg.fromArgs != nil {
		if raw, ok := h.resolver.Arguments(); ok {
			if factory, matched := h.cfg.fromArgs(raw); matched {
				return factory
			}
		}
	}
	return h.cfg.initial
}
