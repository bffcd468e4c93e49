package snapshot_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-viewstate/pkg/snapshot"
)

type counterState struct {
	NotPersisted int      `json:"notPersisted"`
	Persisted    int      `json:"persisted"`
	Tags         []string `json:"tags"`
}

func (counterState) PersistedFields() []string {
	return []string{"Persisted", "Tags"}
}

type transientState struct {
	Value string `json:"value"`
}

func TestSchemaForResolvesDeclaration(t *testing.T) {
	schema, err := snapshot.SchemaFor(counterState{})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	if schema.Empty() {
		t.Fatal("expected non-empty schema")
	}
	want := []string{"Persisted", "Tags"}
	if got := schema.FieldNames(); !reflect.DeepEqual(want, got) {
		t.Fatalf("field order mismatch:\nwant: %v\n got: %v", want, got)
	}
	if !strings.HasSuffix(schema.Container(), "counterState") {
		t.Fatalf("unexpected container name %q", schema.Container())
	}
}

func TestSchemaForTransientType(t *testing.T) {
	schema, err := snapshot.SchemaFor(transientState{})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	if !schema.Empty() {
		t.Fatalf("expected empty schema, got fields %v", schema.FieldNames())
	}
}

type badDeclaration struct {
	Count int `json:"count"`
}

func (badDeclaration) PersistedFields() []string { return []string{"Missing"} }

func TestSchemaForUnknownFieldFailsFast(t *testing.T) {
	_, err := snapshot.SchemaFor(badDeclaration{})
	if err == nil || !errors.Is(err, snapshot.ErrUnrepresentableField) {
		t.Fatalf("expected ErrUnrepresentableField, got %v", err)
	}
}

type excludedDeclaration struct {
	Token string `json:"-"`
}

func (excludedDeclaration) PersistedFields() []string { return []string{"Token"} }

func TestSchemaForJSONExcludedFieldFailsFast(t *testing.T) {
	_, err := snapshot.SchemaFor(excludedDeclaration{})
	if err == nil || !errors.Is(err, snapshot.ErrUnrepresentableField) {
		t.Fatalf("expected ErrUnrepresentableField, got %v", err)
	}
}

func TestFlattenExtractsOnlyPersistedFields(t *testing.T) {
	schema, err := snapshot.SchemaFor(counterState{})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}

	slot, err := snapshot.Flatten(counterState{NotPersisted: 9, Persisted: 3, Tags: []string{"a"}}, schema)
	if err != nil {
		t.Fatalf("unexpected flatten error: %v", err)
	}
	if _, ok := slot.Fields["notPersisted"]; ok {
		t.Fatal("transient field leaked into slot")
	}
	if slot.Fields["persisted"] != 3 {
		t.Fatalf("expected persisted=3, got %v", slot.Fields["persisted"])
	}
	if slot.SnapshotID == "" {
		t.Fatal("expected snapshot id")
	}
	if slot.SavedAt.IsZero() {
		t.Fatal("expected saved-at timestamp")
	}
}

type channelDeclaration struct {
	Ch chan int `json:"ch"`
}

func (channelDeclaration) PersistedFields() []string { return []string{"Ch"} }

func TestFlattenUnrepresentableValue(t *testing.T) {
	schema, err := snapshot.SchemaFor(channelDeclaration{})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}
	_, err = snapshot.Flatten(channelDeclaration{Ch: make(chan int)}, schema)
	if err == nil || !errors.Is(err, snapshot.ErrUnrepresentableField) {
		t.Fatalf("expected ErrUnrepresentableField, got %v", err)
	}
}

func TestUnflattenOverlaysOnlyMarkedFields(t *testing.T) {
	schema, err := snapshot.SchemaFor(counterState{})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}

	slot := snapshot.Slot{
		Container: schema.Container(),
		Fields: map[string]any{
			"persisted":    7,
			"notPersisted": 99, // extra data must never leak
			"unknown":      "junk",
		},
	}

	base := counterState{NotPersisted: 1, Persisted: 1}
	got, err := snapshot.Unflatten(slot, base, schema)
	if err != nil {
		t.Fatalf("unexpected unflatten error: %v", err)
	}
	want := counterState{NotPersisted: 1, Persisted: 7}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("unflatten mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestUnflattenRejectsMismatchedFieldType(t *testing.T) {
	schema, err := snapshot.SchemaFor(counterState{})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}

	slot := snapshot.Slot{
		Container: schema.Container(),
		Fields: map[string]any{
			"persisted": "not a number",
		},
	}

	if _, err := snapshot.Unflatten(slot, counterState{}, schema); err == nil {
		t.Fatal("expected a decode error for a drifted slot payload")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	schema, err := snapshot.SchemaFor(counterState{})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}

	original := counterState{NotPersisted: 4, Persisted: 11, Tags: []string{"x", "y"}}
	slot, err := snapshot.Flatten(original, schema)
	if err != nil {
		t.Fatalf("unexpected flatten error: %v", err)
	}

	payload, err := snapshot.Encode(slot)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	decoded, err := snapshot.Decode(payload)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	restored, err := snapshot.Unflatten(decoded, original, schema)
	if err != nil {
		t.Fatalf("unexpected unflatten error: %v", err)
	}
	if !reflect.DeepEqual(original, restored) {
		t.Fatalf("round trip mismatch:\nwant: %#v\n got: %#v", original, restored)
	}
}

func TestUnflattenDetachesFromBase(t *testing.T) {
	schema, err := snapshot.SchemaFor(counterState{})
	if err != nil {
		t.Fatalf("unexpected schema error: %v", err)
	}

	base := counterState{Tags: []string{"shared"}}
	got, err := snapshot.Unflatten(snapshot.Slot{}, base, schema)
	if err != nil {
		t.Fatalf("unexpected unflatten error: %v", err)
	}
	base.Tags[0] = "mutated"
	if got.Tags[0] != "shared" {
		t.Fatal("unflatten result aliased base slice")
	}
}
