// Package snapshot converts a state container's declared persistent fields
// to and from the opaque slot payloads stored in a host bundle.
//
// Responsibilities:
//   - Schema resolves and validates, once per container type, which fields
//     participate in persistence (containers opt in via Persistent).
//   - Flatten extracts only persisted fields, in stable field order, into a
//     Slot envelope; Encode serialises the envelope for the bundle.
//   - Unflatten overlays persisted fields from a slot onto a default or
//     current container; fields that were never marked keep whatever value
//     the active initializer produced, even when the slot carries extra keys.
//
// Round-trip law:
//
//	Unflatten(Flatten(c, s), c, s) == c
//
// for any container c whose persisted fields the JSON codec can represent.
// Declarations the codec cannot honour fail fast with
// ErrUnrepresentableField rather than dropping data at save time.
package snapshot
