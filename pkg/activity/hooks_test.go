package activity

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestHooksNotifyFansOut(t *testing.T) {
	first := &CaptureHook{}
	second := &CaptureHook{}
	hooks := Hooks{first, second, nil}

	err := hooks.Notify(context.Background(), Event{
		Verb:      VerbCreated,
		Container: "host.counterState",
		Scope:     "host/main",
	})
	if err != nil {
		t.Fatalf("unexpected notify error: %v", err)
	}
	if len(first.Events) != 1 || len(second.Events) != 1 {
		t.Fatalf("expected both hooks notified, got %d and %d", len(first.Events), len(second.Events))
	}
}

func TestHooksNotifySkipsIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}

	if err := hooks.Notify(context.Background(), Event{Verb: VerbCreated}); err != nil {
		t.Fatalf("unexpected notify error: %v", err)
	}
	if err := hooks.Notify(context.Background(), Event{Container: "x"}); err != nil {
		t.Fatalf("unexpected notify error: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected incomplete events dropped, got %d", len(capture.Events))
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	boom := errors.New("sink unavailable")
	failing := &CaptureHook{Err: boom}
	ok := &CaptureHook{}
	hooks := Hooks{failing, ok}

	err := hooks.Notify(context.Background(), Event{Verb: VerbSaved, Container: "c"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error containing sink failure, got %v", err)
	}
	if len(ok.Events) != 1 {
		t.Fatal("healthy hook should still be notified")
	}
}

func TestNormalizeEvent(t *testing.T) {
	metadata := map[string]any{"key": "value"}
	event := NormalizeEvent(Event{
		Verb:      "  " + VerbRestored + "  ",
		Container: " host.counterState ",
		Metadata:  metadata,
	})

	if event.Verb != VerbRestored {
		t.Fatalf("expected trimmed verb, got %q", event.Verb)
	}
	if event.OccurredAt.IsZero() {
		t.Fatal("expected default timestamp")
	}
	metadata["key"] = "mutated"
	if event.Metadata["key"] != "value" {
		t.Fatal("metadata not detached from caller map")
	}
}

func TestBuildLifecycleEvents(t *testing.T) {
	input := LifecycleInput{
		Container:  "host.counterState",
		Scope:      "screen/abc",
		SnapshotID: "snap-1",
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	cases := []struct {
		build func(LifecycleInput) Event
		verb  string
	}{
		{BuildCreatedEvent, VerbCreated},
		{BuildRestoredEvent, VerbRestored},
		{BuildSavedEvent, VerbSaved},
		{BuildReplacedEvent, VerbReplaced},
		{BuildDiscardedEvent, VerbDiscarded},
	}
	for _, tc := range cases {
		event := tc.build(input)
		if event.Verb != tc.verb {
			t.Fatalf("expected verb %q, got %q", tc.verb, event.Verb)
		}
		if event.Metadata["snapshot_id"] != "snap-1" {
			t.Fatalf("expected snapshot id metadata for %q", tc.verb)
		}
	}
}

func TestEmitterAppliesDefaultChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})

	if err := emitter.Emit(context.Background(), Event{Verb: VerbCreated, Container: "c"}); err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if capture.Events[0].Channel != "viewstate" {
		t.Fatalf("expected default channel, got %q", capture.Events[0].Channel)
	}
}

func TestEmitterDisabled(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: false})

	if err := emitter.Emit(context.Background(), Event{Verb: VerbCreated, Container: "c"}); err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatal("disabled emitter should not notify hooks")
	}
}

func TestCounterHook(t *testing.T) {
	counter := NewCounterHook()
	hooks := Hooks{counter}

	events := []Event{
		{Verb: VerbCreated, Container: "c"},
		{Verb: VerbCreated, Container: "c"},
		{Verb: VerbSaved, Container: "c"},
		{Verb: VerbDiscarded, Container: "c"},
	}
	for _, event := range events {
		if err := hooks.Notify(context.Background(), event); err != nil {
			t.Fatalf("unexpected notify error: %v", err)
		}
	}

	want := CounterSnapshot{Created: 2, Saved: 1, Discarded: 1}
	if got := counter.Snapshot(); !reflect.DeepEqual(want, got) {
		t.Fatalf("counter mismatch:\nwant: %#v\n got: %#v", want, got)
	}
	if counter.Snapshot().Total() != 4 {
		t.Fatalf("expected total 4, got %d", counter.Snapshot().Total())
	}
}
