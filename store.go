package viewstate

import (
	"context"
	"fmt"

	"github.com/goliatone/go-viewstate/pkg/activity"
	"github.com/goliatone/go-viewstate/pkg/bundle"
	"github.com/goliatone/go-viewstate/pkg/snapshot"
)

// Store owns the live view-model set for one scope: at most one instance per
// state-container type. A store is created once per scope owner, survives
// configuration changes with its entries intact, and is discarded without
// saving when the owner is permanently destroyed.
//
// All store calls for a given scope happen on the host UI's single control
// thread, so the store keeps no internal locking.
type Store struct {
	key     ScopeKey
	entries map[string]*entry
	order   []string
	seeds   map[string]snapshot.Slot
	owner   Owner
	emitter *activity.Emitter

	engine       Engine
	programCache ProgramCache
	functions    *FunctionRegistry
	selLogger    SelectorLogger

	// restored flips when the owner runs RestoreViewModels. Host-wide
	// lookups before that point are ordering violations; screen scopes are
	// exempt because they are never process-death durable.
	restored bool
}

type entry struct {
	container string
	ref       any
	schema    snapshot.Schema
	flatten   func() (snapshot.Slot, error)
}

// StoreOption configures a Store on construction.
type StoreOption func(*storeConfig)

type storeConfig struct {
	hooks   activity.Hooks
	channel string

	engine         Engine
	programCache   ProgramCache
	functions      *FunctionRegistry
	selectorLogger SelectorLogger
}

// WithSelectorEngine installs the engine used by Ref.Select. When omitted,
// the store lazily builds an expr engine on first use.
func WithSelectorEngine(engine Engine) StoreOption {
	return func(cfg *storeConfig) {
		cfg.engine = engine
	}
}

// WithLifecycleHook registers a hook notified on view-model lifecycle
// events.
func WithLifecycleHook(hook activity.Hook) StoreOption {
	return func(cfg *storeConfig) {
		if hook == nil {
			return
		}
		cfg.hooks = append(cfg.hooks, hook)
	}
}

// WithLifecycleChannel overrides the default channel stamped on emitted
// events.
func WithLifecycleChannel(channel string) StoreOption {
	return func(cfg *storeConfig) {
		cfg.channel = channel
	}
}

// NewStore constructs an empty store bound to key.
func NewStore(key ScopeKey, opts ...StoreOption) *Store {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Store{
		key:     key,
		entries: map[string]*entry{},
		seeds:   map[string]snapshot.Slot{},
		emitter: activity.NewEmitter(cfg.hooks, activity.Config{
			Enabled: cfg.hooks.Enabled(),
			Channel: cfg.channel,
		}),
		engine:       cfg.engine,
		programCache: cfg.programCache,
		functions:    cfg.functions,
		selLogger:    cfg.selectorLogger,
	}
}

// resolveEngine returns the configured selector engine, building the
// default expr engine on first use so selectors work without setup.
func (s *Store) resolveEngine() (Engine, error) {
	if s.engine != nil {
		return s.engine, nil
	}
	var exprOpts []ExprEngineOption
	if s.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(s.programCache))
	}
	if s.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(s.functions))
	}
	engine := NewExprEngine(exprOpts...)
	if engine == nil {
		return nil, ErrNoEngine
	}
	s.engine = engine
	return engine, nil
}

func (s *Store) selectorLogger() SelectorLogger {
	if s.selLogger == nil {
		return noopSelectorLogger{}
	}
	return s.selLogger
}

// ScopeKey returns the scope this store is bound to.
func (s *Store) ScopeKey() ScopeKey {
	return s.key
}

// Restored reports whether the owner has run RestoreViewModels.
func (s *Store) Restored() bool {
	return s.restored
}

// Len returns the number of live view-model entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Containers returns the container type names with live entries, in
// creation order.
func (s *Store) Containers() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// RestoreViewModels captures the persisted slots addressed to this scope so
// later Get calls can seed initial state from them. The owner must invoke it
// strictly before completing its own creation sequence; the bundle is nil on
// first creation. Only slot values are retained, never the bundle itself.
//
// Restoration is lazy per container type: nothing is decoded into a live
// instance until that type is first requested. Calling restore again on a
// retained store (a configuration-change recreation) leaves live entries
// untouched.
func (s *Store) RestoreViewModels(owner Owner, b bundle.Bundle) error {
	if owner == nil {
		return &ContractError{
			Op:    "restore",
			Scope: s.key,
			Err:   fmt.Errorf("owner must not be nil"),
		}
	}
	s.owner = owner
	s.restored = true
	if b == nil {
		return nil
	}

	prefix := s.key.Identifier() + "/"
	for _, slotKey := range b.Keys() {
		if len(slotKey) <= len(prefix) || slotKey[:len(prefix)] != prefix {
			continue
		}
		payload, ok := b.Get(slotKey)
		if !ok {
			continue
		}
		slot, err := snapshot.Decode(payload)
		if err != nil {
			return &ContractError{
				Op:        "restore",
				Container: slotKey[len(prefix):],
				Scope:     s.key,
				Err:       err,
			}
		}
		s.seeds[slot.Container] = slot
	}
	return nil
}

// SaveViewModels flattens the persisted fields of every live entry into the
// bundle, one slot per (container type, scope) pair. It is a pure read of
// current state: safe to call repeatedly, last write wins.
func (s *Store) SaveViewModels(b bundle.Bundle) error {
	if b == nil {
		return &ContractError{
			Op:    "save",
			Scope: s.key,
			Err:   fmt.Errorf("bundle must not be nil"),
		}
	}
	for _, container := range s.order {
		e := s.entries[container]
		if e == nil || e.schema.Empty() {
			continue
		}
		slot, err := e.flatten()
		if err != nil {
			return &ContractError{Op: "save", Container: container, Scope: s.key, Err: err}
		}
		payload, err := snapshot.Encode(slot)
		if err != nil {
			return &ContractError{Op: "save", Container: container, Scope: s.key, Err: err}
		}
		b.Put(s.key.SlotKey(container), payload)
		s.emit(activity.BuildSavedEvent(activity.LifecycleInput{
			Container:  container,
			Scope:      s.key.Identifier(),
			SnapshotID: slot.SnapshotID,
		}))
	}
	return nil
}

// RequestSave is invoked by host plumbing when the platform asks the scope
// owner to hand off state. Owners implementing Saver receive the bundle
// through their hook; an owner without a hook fails fast the moment durable
// entries would otherwise be lost.
func (s *Store) RequestSave(b bundle.Bundle) error {
	if saver, ok := s.owner.(Saver); ok {
		return saver.SaveViewModels(b)
	}
	if s.key.Kind == HostScope && len(s.entries) > 0 {
		return &ContractError{
			Op:    "save",
			Scope: s.key,
			Err:   ErrMissingSaveHook,
		}
	}
	return nil
}

// Discard drops every live entry without saving. Called when the owning
// scope is permanently destroyed, never on a configuration change.
func (s *Store) Discard() {
	for _, container := range s.order {
		s.emit(activity.BuildDiscardedEvent(activity.LifecycleInput{
			Container: container,
			Scope:     s.key.Identifier(),
		}))
	}
	s.entries = map[string]*entry{}
	s.order = nil
	s.seeds = map[string]snapshot.Slot{}
}

func (s *Store) emit(event activity.Event) {
	// Hooks are observers; their failures never affect store bookkeeping.
	_ = s.emitter.Emit(context.Background(), event)
}

// Get returns the live view-model for container type T, creating it from
// factory on first request. Repeated calls within the same scope lifetime
// return the identical instance without re-running the factory.
//
// When the scope was restored from a persisted bundle, the initial state is
// seeded by overlaying the slot's persisted fields onto the factory-produced
// value before any caller can observe it.
func Get[T any](s *Store, factory Factory[T]) (*Ref[T], error) {
	container := snapshot.ContainerNameFor[T]()

	if s.key.Kind == HostScope && !s.restored {
		return nil, &ContractError{
			Op:        "get",
			Container: container,
			Scope:     s.key,
			Err:       ErrOrderingViolation,
		}
	}

	if e, ok := s.entries[container]; ok {
		ref, ok := e.ref.(*Ref[T])
		if !ok {
			return nil, &ContractError{
				Op:        "get",
				Container: container,
				Scope:     s.key,
				Err:       fmt.Errorf("entry holds %T", e.ref),
			}
		}
		return ref, nil
	}

	if factory == nil {
		factory = DefaultFactory[T](nil)
	}
	initial := factory.New()

	schema, err := snapshot.SchemaFor(initial)
	if err != nil {
		return nil, &ContractError{Op: "get", Container: container, Scope: s.key, Err: err}
	}

	seeded := false
	var snapshotID string
	if slot, ok := s.seeds[container]; ok && !schema.Empty() {
		restored, err := snapshot.Unflatten(slot, initial, schema)
		if err != nil {
			return nil, &ContractError{Op: "get", Container: container, Scope: s.key, Err: err}
		}
		initial = restored
		seeded = true
		snapshotID = slot.SnapshotID
	}

	ref := &Ref[T]{
		store:     s,
		container: container,
		schema:    schema,
		current:   initial,
	}
	s.entries[container] = &entry{
		container: container,
		ref:       ref,
		schema:    schema,
		flatten: func() (snapshot.Slot, error) {
			return snapshot.Flatten(ref.current, schema)
		},
	}
	s.order = append(s.order, container)

	input := activity.LifecycleInput{
		Container:  container,
		Scope:      s.key.Identifier(),
		SnapshotID: snapshotID,
	}
	if seeded {
		s.emit(activity.BuildRestoredEvent(input))
	} else {
		s.emit(activity.BuildCreatedEvent(input))
	}
	return ref, nil
}

// Ref is the stable handle to one live view-model instance. The underlying
// container is an immutable value: reads return the current value and writes
// replace it wholesale.
type Ref[T any] struct {
	store     *Store
	container string
	schema    snapshot.Schema
	current   T
}

// State returns the current container value.
func (r *Ref[T]) State() T {
	return r.current
}

// Scope returns the scope key of the owning store.
func (r *Ref[T]) Scope() ScopeKey {
	return r.store.key
}

// Container returns the container type name.
func (r *Ref[T]) Container() string {
	return r.container
}

// Replace installs next as the current container value. Updates are
// full-value replacements ordered by the caller's single control thread.
func (r *Ref[T]) Replace(next T) {
	r.current = next
	r.store.emit(activity.BuildReplacedEvent(activity.LifecycleInput{
		Container: r.container,
		Scope:     r.store.key.Identifier(),
	}))
}

// Update applies mutate to the current value and installs the result.
func (r *Ref[T]) Update(mutate func(T) T) {
	if mutate == nil {
		return
	}
	r.Replace(mutate(r.current))
}
