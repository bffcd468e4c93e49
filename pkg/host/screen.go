package host

import (
	"fmt"

	viewstate "github.com/goliatone/go-viewstate"
)

// Screen is a screen-scoped owner. A logical screen keeps one retained
// store across configuration-change recreations; permanent destruction
// discards it. Screens resolve host-wide requests one level up, through the
// container they were opened on.
type Screen struct {
	key       viewstate.ScopeKey
	store     *viewstate.Store
	container *Container
	args      any
	hasArgs   bool
}

// ScreenOption configures a screen at open time.
type ScreenOption func(*screenConfig)

type screenConfig struct {
	args      any
	hasArgs   bool
	storeOpts []viewstate.StoreOption
}

// WithArguments attaches the serializable argument value the screen was
// opened with. Argument-aware bindings derive initial state from it.
func WithArguments(args any) ScreenOption {
	return func(cfg *screenConfig) {
		cfg.args = args
		cfg.hasArgs = true
	}
}

// WithScreenStore forwards store options to the screen's retained store.
func WithScreenStore(opts ...viewstate.StoreOption) ScreenOption {
	return func(cfg *screenConfig) {
		cfg.storeOpts = append(cfg.storeOpts, opts...)
	}
}

// NewScreen constructs a screen owner attached to container, with a fresh
// retained store under a generated screen key.
func NewScreen(container *Container, opts ...ScreenOption) (*Screen, error) {
	if container == nil {
		return nil, fmt.Errorf("host: screen requires a container")
	}
	cfg := screenConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	key := viewstate.NewScreenKey()
	s := &Screen{
		key:       key,
		store:     viewstate.NewStore(key, cfg.storeOpts...),
		container: container,
		args:      cfg.args,
		hasArgs:   cfg.hasArgs,
	}
	// Screen-local state is never process-death durable, so there is no
	// bundle to replay; restoring with nil just registers the owner.
	if err := s.store.RestoreViewModels(s, nil); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the generated screen identity.
func (s *Screen) ID() string {
	return s.key.ID
}

// ViewModelStore implements viewstate.Owner.
func (s *Screen) ViewModelStore() *viewstate.Store {
	return s.store
}

// StoreFor implements viewstate.ScopeResolver. Screen-local requests hit
// the screen's own retained store; host-wide requests resolve to the
// container's store.
func (s *Screen) StoreFor(kind viewstate.ScopeKind) (*viewstate.Store, error) {
	switch kind {
	case viewstate.ScreenScope:
		return s.store, nil
	case viewstate.HostScope:
		return s.container.ViewModelStore(), nil
	default:
		return nil, fmt.Errorf("host: unsupported scope kind %s", kind)
	}
}

// Arguments implements viewstate.ScopeResolver.
func (s *Screen) Arguments() (any, bool) {
	return s.args, s.hasArgs
}

// Recreate models a configuration change: the screen object is rebuilt but
// its retained store, identity, and arguments carry over unchanged.
func (s *Screen) Recreate() (*Screen, error) {
	next := &Screen{
		key:       s.key,
		store:     s.store,
		container: s.container,
		args:      s.args,
		hasArgs:   s.hasArgs,
	}
	if err := next.store.RestoreViewModels(next, nil); err != nil {
		return nil, err
	}
	return next, nil
}

// Destroy drops the screen's view-models without saving. Called when the
// user leaves the screen for good, never on a configuration change.
func (s *Screen) Destroy() {
	s.store.Discard()
}
