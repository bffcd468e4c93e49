package host

import (
	viewstate "github.com/goliatone/go-viewstate"
	"github.com/goliatone/go-viewstate/pkg/bundle"
)

// Container is the host-wide scope owner: one per logical host surface,
// retained across configuration changes, restored before any consumer code
// can request a view-model.
type Container struct {
	id    string
	store *viewstate.Store
}

// NewContainer constructs a container with a fresh host-wide store.
func NewContainer(id string, opts ...viewstate.StoreOption) *Container {
	return &Container{
		id:    id,
		store: viewstate.NewStore(viewstate.NewHostKey(id), opts...),
	}
}

// ID returns the host identity this container is keyed by.
func (c *Container) ID() string {
	return c.id
}

// ViewModelStore implements viewstate.Owner.
func (c *Container) ViewModelStore() *viewstate.Store {
	return c.store
}

// Start replays persisted state addressed to this host. It must run before
// consumer code touches the store; b is nil on a fresh launch.
func (c *Container) Start(b bundle.Bundle) error {
	return c.store.RestoreViewModels(c, b)
}

// SaveViewModels implements viewstate.Saver by flattening every live entry
// into b.
func (c *Container) SaveViewModels(b bundle.Bundle) error {
	return c.store.SaveViewModels(b)
}

// Recreate models a configuration change: a new container object adopts the
// retained store and every live view-model survives untouched.
func (c *Container) Recreate() (*Container, error) {
	next := &Container{id: c.id, store: c.store}
	if err := next.store.RestoreViewModels(next, nil); err != nil {
		return nil, err
	}
	return next, nil
}

// Destroy drops every host-wide view-model without saving. Called on
// permanent destruction only, never on a configuration change.
func (c *Container) Destroy() {
	c.store.Discard()
}
