// Package bundle defines the host-supplied persisted key/value region that
// view-model stores write slots into on save and read slots out of on
// restore. The bundle is always passed explicitly into save/restore calls;
// nothing in this module reaches it through ambient state.
package bundle

// Bundle is an ordered mapping from slot keys to opaque serialized blobs.
// The host platform owns the bundle; stores only flatten values into it or
// out of it at save/restore time.
type Bundle interface {
	// Put stores payload under key, replacing any previous payload.
	Put(key string, payload []byte)

	// Get retrieves the payload stored under key.
	Get(key string) ([]byte, bool)

	// Keys returns all slot keys in insertion order.
	Keys() []string

	// Len returns the number of stored slots.
	Len() int
}

// Memory is a minimal in-memory Bundle implementation intended for tests,
// examples, and hosts that manage snapshot transport themselves. Keys keep
// their insertion order so save output stays deterministic.
type Memory struct {
	order    []string
	payloads map[string][]byte
}

// NewMemory constructs an empty in-memory bundle.
func NewMemory() *Memory {
	return &Memory{payloads: map[string][]byte{}}
}

// Put stores payload under key. Re-putting an existing key keeps its original
// position (last-write-wins on the payload only).
func (m *Memory) Put(key string, payload []byte) {
	if _, exists := m.payloads[key]; !exists {
		m.order = append(m.order, key)
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	m.payloads[key] = stored
}

// Get retrieves the payload stored under key.
func (m *Memory) Get(key string) ([]byte, bool) {
	payload, ok := m.payloads[key]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, true
}

// Keys returns all slot keys in insertion order.
func (m *Memory) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len returns the number of stored slots.
func (m *Memory) Len() int {
	return len(m.payloads)
}
