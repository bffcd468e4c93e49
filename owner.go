package viewstate

import "github.com/goliatone/go-viewstate/pkg/bundle"

// Owner is the contract a scope owner (host container or screen) implements
// so its retained store can hook into the owner's lifecycle. An owner that
// wants host-wide scoping must run Store.RestoreViewModels before its own
// creation logic completes, passing whatever persisted bundle it received
// (nil on first creation). Violating that ordering surfaces lazily as
// ErrOrderingViolation on the first host-wide Get.
type Owner interface {
	// ViewModelStore returns the store retained for this owner. The same
	// store must be returned across configuration-change re-creations; a
	// fresh store appears only after permanent destruction.
	ViewModelStore() *Store
}

// Saver is the optional save hook. Owners holding durable view-models must
// implement it to forward the platform's save request into
// Store.SaveViewModels; an owner without the hook fails with
// ErrMissingSaveHook at save time, not at get time.
type Saver interface {
	SaveViewModels(b bundle.Bundle) error
}
