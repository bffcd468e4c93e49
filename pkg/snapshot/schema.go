package snapshot

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrUnrepresentableField indicates a field was marked persistent but cannot
// be flattened by the codec: it does not exist, is unexported, is excluded
// from JSON, or holds a value the JSON codec rejects.
var ErrUnrepresentableField = errors.New("snapshot: field not representable")

// Persistent is implemented by state-container types that declare which of
// their fields must survive a save/restore cycle. The returned names are Go
// struct field names; everything not listed stays scope-local.
type Persistent interface {
	PersistedFields() []string
}

// Schema is the resolved persistence declaration for one container type:
// the ordered set of fields the codec flattens and restores. Field order
// follows struct declaration order regardless of declaration-list order.
type Schema struct {
	container string
	fields    []schemaField
}

type schemaField struct {
	name    string // Go struct field name
	jsonKey string // key used inside the slot field map
	index   []int
}

// SchemaFor resolves and validates the persistence declaration of value.
// Types that do not implement Persistent yield an empty schema: every field
// is transient. Declaring a field the codec cannot represent fails fast with
// ErrUnrepresentableField.
func SchemaFor(value any) (Schema, error) {
	container := ContainerName(value)

	declared, ok := persistedFieldNames(value)
	if !ok || len(declared) == 0 {
		return Schema{container: container}, nil
	}

	t := reflect.TypeOf(value)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return Schema{}, fmt.Errorf("%w: container %q is not a struct", ErrUnrepresentableField, container)
	}

	wanted := make(map[string]struct{}, len(declared))
	for _, name := range declared {
		if name == "" {
			return Schema{}, fmt.Errorf("%w: container %q declares an empty field name", ErrUnrepresentableField, container)
		}
		if _, dup := wanted[name]; dup {
			return Schema{}, fmt.Errorf("%w: container %q declares field %q twice", ErrUnrepresentableField, container, name)
		}
		wanted[name] = struct{}{}
	}

	fields := make([]schemaField, 0, len(declared))
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if _, want := wanted[sf.Name]; !want {
			continue
		}
		delete(wanted, sf.Name)
		if !sf.IsExported() {
			return Schema{}, fmt.Errorf("%w: container %q field %q is unexported", ErrUnrepresentableField, container, sf.Name)
		}
		key := jsonKey(sf)
		if key == "" {
			return Schema{}, fmt.Errorf("%w: container %q field %q is excluded from JSON", ErrUnrepresentableField, container, sf.Name)
		}
		fields = append(fields, schemaField{name: sf.Name, jsonKey: key, index: sf.Index})
	}

	for name := range wanted {
		return Schema{}, fmt.Errorf("%w: container %q has no field %q", ErrUnrepresentableField, container, name)
	}

	return Schema{container: container, fields: fields}, nil
}

// Container returns the container type name the schema was resolved for.
func (s Schema) Container() string {
	return s.container
}

// Empty reports whether the schema declares no persisted fields.
func (s Schema) Empty() bool {
	return len(s.fields) == 0
}

// FieldNames returns the persisted Go field names in flatten order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// ContainerName derives the stable type identity used in slot keys and
// envelopes, e.g. "host.counterState".
func ContainerName(value any) string {
	return containerTypeName(reflect.TypeOf(value))
}

// ContainerNameFor derives the same identity from a type parameter, for
// callers that need the name before any instance exists.
func ContainerNameFor[T any]() string {
	return containerTypeName(reflect.TypeOf((*T)(nil)).Elem())
}

func containerTypeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

func persistedFieldNames(value any) ([]string, bool) {
	if p, ok := value.(Persistent); ok {
		return p.PersistedFields(), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Pointer && rv.CanAddr() {
		if p, ok := rv.Addr().Interface().(Persistent); ok {
			return p.PersistedFields(), true
		}
	}
	return nil, false
}

func jsonKey(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" {
		return sf.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return sf.Name
	}
	return name
}
