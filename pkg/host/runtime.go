package host

import (
	"context"
	"fmt"

	viewstate "github.com/goliatone/go-viewstate"
	"github.com/goliatone/go-viewstate/pkg/bundle"
)

// Runtime drives scope owners through the host lifecycle the way the
// platform would: restore on creation, save on handoff, discard on
// permanent destruction. One Runtime models one process; the warehouse it
// saves into outlives it.
type Runtime struct {
	hostID    string
	warehouse bundle.Warehouse
	hostOpts  []viewstate.StoreOption

	container *Container
	screens   map[string]*Screen
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithWarehouse swaps the storage saved bundles are parked in. Defaults to
// an in-memory warehouse.
func WithWarehouse(w bundle.Warehouse) RuntimeOption {
	return func(r *Runtime) {
		if w != nil {
			r.warehouse = w
		}
	}
}

// WithHostStore forwards store options to the host-wide store created on
// launch.
func WithHostStore(opts ...viewstate.StoreOption) RuntimeOption {
	return func(r *Runtime) {
		r.hostOpts = append(r.hostOpts, opts...)
	}
}

// NewRuntime constructs an idle runtime for hostID.
func NewRuntime(hostID string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		hostID:    hostID,
		warehouse: bundle.NewMemoryWarehouse(),
		screens:   map[string]*Screen{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Container returns the running host container, nil before Launch.
func (r *Runtime) Container() *Container {
	return r.container
}

// Launch creates the host container and replays whatever bundle the
// warehouse holds for this host. A fresh launch finds nothing and starts
// empty.
func (r *Runtime) Launch(ctx context.Context) (*Container, error) {
	if r.container != nil {
		return r.container, nil
	}
	container := NewContainer(r.hostID, r.hostOpts...)
	var saved bundle.Bundle
	if b, _, ok, err := r.warehouse.Load(ctx, r.hostID); err != nil {
		return nil, fmt.Errorf("host: load saved state: %w", err)
	} else if ok {
		saved = b
	}
	if err := container.Start(saved); err != nil {
		return nil, err
	}
	r.container = container
	return container, nil
}

// OpenScreen creates a screen owner attached to the running container.
func (r *Runtime) OpenScreen(opts ...ScreenOption) (*Screen, error) {
	if r.container == nil {
		return nil, fmt.Errorf("host: runtime not launched")
	}
	screen, err := NewScreen(r.container, opts...)
	if err != nil {
		return nil, err
	}
	r.screens[screen.ID()] = screen
	return screen, nil
}

// RecreateScreen replays a configuration change for one screen: the screen
// object is rebuilt, its retained store survives.
func (r *Runtime) RecreateScreen(id string) (*Screen, error) {
	screen, ok := r.screens[id]
	if !ok {
		return nil, fmt.Errorf("host: screen %q not open", id)
	}
	next, err := screen.Recreate()
	if err != nil {
		return nil, err
	}
	r.screens[id] = next
	return next, nil
}

// CloseScreen permanently destroys a screen and discards its store.
func (r *Runtime) CloseScreen(id string) {
	if screen, ok := r.screens[id]; ok {
		screen.Destroy()
		delete(r.screens, id)
	}
}

// SaveState asks the container to hand off state and parks the resulting
// bundle in the warehouse. Screen-local stores are deliberately skipped:
// their contents do not survive the process.
func (r *Runtime) SaveState(ctx context.Context) error {
	if r.container == nil {
		return fmt.Errorf("host: runtime not launched")
	}
	b := bundle.NewMemory()
	if err := r.container.ViewModelStore().RequestSave(b); err != nil {
		return err
	}
	if _, err := r.warehouse.Save(ctx, r.hostID, b, bundle.Meta{}); err != nil {
		return fmt.Errorf("host: park saved state: %w", err)
	}
	return nil
}

// Terminate models process death: every live store vanishes with the
// process while the warehouse keeps whatever SaveState parked. Launch can
// run again afterwards and restore from it.
func (r *Runtime) Terminate() {
	r.container = nil
	r.screens = map[string]*Screen{}
}

// Shutdown models orderly, permanent destruction: every store is discarded
// without saving.
func (r *Runtime) Shutdown() {
	for _, screen := range r.screens {
		screen.Destroy()
	}
	r.screens = map[string]*Screen{}
	if r.container != nil {
		r.container.Destroy()
		r.container = nil
	}
}
