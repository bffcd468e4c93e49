package snapshot

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-viewstate/internal/clone"
	"github.com/goliatone/go-viewstate/internal/hydrate"
)

// Slot is the codec-owned envelope written into one bundle slot: the
// flattened persisted fields plus enough metadata to reconstruct the
// container on restore.
type Slot struct {
	Container  string         `json:"container"`
	SnapshotID string         `json:"snapshot_id"`
	SavedAt    time.Time      `json:"saved_at"`
	Fields     map[string]any `json:"fields"`
}

// Flatten extracts only the schema's persisted fields from value, in stable
// field order, into a slot. Values the JSON codec rejects surface as
// ErrUnrepresentableField; nothing is partially written.
func Flatten(value any, schema Schema) (Slot, error) {
	slot := Slot{
		Container:  schema.container,
		SnapshotID: uuid.NewString(),
		SavedAt:    time.Now().UTC(),
		Fields:     map[string]any{},
	}
	if schema.Empty() {
		return slot, nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Slot{}, fmt.Errorf("%w: container %q value is nil", ErrUnrepresentableField, schema.container)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return Slot{}, fmt.Errorf("%w: container %q is not a struct", ErrUnrepresentableField, schema.container)
	}

	for _, field := range schema.fields {
		fv := rv.FieldByIndex(field.index)
		if _, err := json.Marshal(fv.Interface()); err != nil {
			return Slot{}, fmt.Errorf("%w: container %q field %q: %v", ErrUnrepresentableField, schema.container, field.name, err)
		}
		slot.Fields[field.jsonKey] = clone.Value(fv.Interface())
	}
	return slot, nil
}

// Unflatten produces a new container equal to base except with the schema's
// persisted fields overwritten from the slot. Slot keys outside the schema
// are ignored so stale or foreign slot data never leaks into transient
// fields. Unflatten(Flatten(c), c) == c for any representable container c.
func Unflatten[T any](slot Slot, base T, schema Schema) (T, error) {
	out := clone.Value(base)
	if schema.Empty() || len(slot.Fields) == 0 {
		return out, nil
	}

	filtered := make(map[string]any, len(schema.fields))
	for _, field := range schema.fields {
		if value, ok := slot.Fields[field.jsonKey]; ok {
			filtered[field.jsonKey] = value
		}
	}
	if len(filtered) == 0 {
		return out, nil
	}

	// Strict decoding: filtered only holds schema-derived keys, so an
	// unknown-field rejection here means the slot payload and the container
	// type have drifted apart.
	decoder := hydrate.NewDecoder[T](hydrate.WithDisallowUnknownFields[T]())
	decoded, err := decoder.Decode(hydrate.Context{Container: schema.container}, filtered)
	if err != nil {
		return base, fmt.Errorf("snapshot: restore container %q: %w", schema.container, err)
	}

	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(decoded)
	for dst.Kind() == reflect.Pointer && !dst.IsNil() {
		dst = dst.Elem()
	}
	for src.Kind() == reflect.Pointer && !src.IsNil() {
		src = src.Elem()
	}
	if dst.Kind() != reflect.Struct || src.Kind() != reflect.Struct {
		return out, nil
	}
	for _, field := range schema.fields {
		if _, ok := filtered[field.jsonKey]; !ok {
			continue
		}
		dst.FieldByIndex(field.index).Set(src.FieldByIndex(field.index))
	}
	return out, nil
}

// Encode serialises a slot into the opaque payload stored in the bundle.
func Encode(slot Slot) ([]byte, error) {
	payload, err := json.Marshal(slot)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode container %q: %w", slot.Container, err)
	}
	return payload, nil
}

// Decode deserialises a payload previously produced by Encode.
func Decode(payload []byte) (Slot, error) {
	var slot Slot
	if err := json.Unmarshal(payload, &slot); err != nil {
		return Slot{}, fmt.Errorf("snapshot: decode slot: %w", err)
	}
	return slot, nil
}
