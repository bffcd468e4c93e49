package activity

import (
	"context"

	"go.uber.org/atomic"
)

// CounterHook counts lifecycle events per verb. It is safe for concurrent
// notification so a single instance can observe stores owned by different
// control threads.
type CounterHook struct {
	created   atomic.Int64
	restored  atomic.Int64
	saved     atomic.Int64
	replaced  atomic.Int64
	discarded atomic.Int64
	other     atomic.Int64
}

// NewCounterHook constructs a zeroed counter hook.
func NewCounterHook() *CounterHook {
	return &CounterHook{}
}

// Notify bumps the counter matching the event verb.
func (h *CounterHook) Notify(_ context.Context, event Event) error {
	switch event.Verb {
	case VerbCreated:
		h.created.Inc()
	case VerbRestored:
		h.restored.Inc()
	case VerbSaved:
		h.saved.Inc()
	case VerbReplaced:
		h.replaced.Inc()
	case VerbDiscarded:
		h.discarded.Inc()
	default:
		h.other.Inc()
	}
	return nil
}

// CounterSnapshot is a point-in-time copy of the counters.
type CounterSnapshot struct {
	Created   int64 `json:"created"`
	Restored  int64 `json:"restored"`
	Saved     int64 `json:"saved"`
	Replaced  int64 `json:"replaced"`
	Discarded int64 `json:"discarded"`
	Other     int64 `json:"other"`
}

// Snapshot returns the current counter values.
func (h *CounterHook) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Created:   h.created.Load(),
		Restored:  h.restored.Load(),
		Saved:     h.saved.Load(),
		Replaced:  h.replaced.Load(),
		Discarded: h.discarded.Load(),
		Other:     h.other.Load(),
	}
}

// Total returns the sum of all counters.
func (s CounterSnapshot) Total() int64 {
	return s.Created + s.Restored + s.Saved + s.Replaced + s.Discarded + s.Other
}
