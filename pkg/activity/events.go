package activity

import (
	"strings"
	"time"
)

// Lifecycle verbs emitted by view-model stores.
const (
	VerbCreated   = "viewmodel.created"
	VerbRestored  = "viewmodel.restored"
	VerbSaved     = "viewmodel.saved"
	VerbReplaced  = "viewmodel.replaced"
	VerbDiscarded = "viewmodel.discarded"
)

// LifecycleInput describes the common fields for view-model lifecycle
// events.
type LifecycleInput struct {
	Container  string
	Scope      string
	SnapshotID string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildCreatedEvent constructs a normalized event for first creation of a
// view-model within a scope.
func BuildCreatedEvent(input LifecycleInput) Event {
	return buildLifecycleEvent(VerbCreated, input)
}

// BuildRestoredEvent constructs an event for creation seeded from a
// persisted slot.
func BuildRestoredEvent(input LifecycleInput) Event {
	return buildLifecycleEvent(VerbRestored, input)
}

// BuildSavedEvent constructs an event for one container flattened into a
// bundle slot.
func BuildSavedEvent(input LifecycleInput) Event {
	return buildLifecycleEvent(VerbSaved, input)
}

// BuildReplacedEvent constructs an event for a full-value state replacement.
func BuildReplacedEvent(input LifecycleInput) Event {
	return buildLifecycleEvent(VerbReplaced, input)
}

// BuildDiscardedEvent constructs an event for entries dropped when a scope
// is permanently destroyed.
func BuildDiscardedEvent(input LifecycleInput) Event {
	return buildLifecycleEvent(VerbDiscarded, input)
}

func buildLifecycleEvent(verb string, input LifecycleInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.SnapshotID != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["snapshot_id"] = input.SnapshotID
	}
	return Event{
		Verb:       verb,
		Container:  strings.TrimSpace(input.Container),
		Scope:      strings.TrimSpace(input.Scope),
		SnapshotID: strings.TrimSpace(input.SnapshotID),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
