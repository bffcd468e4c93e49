package bundle

import (
	"context"
	"sync"
	"time"
)

// Meta is warehouse-owned metadata recorded alongside a saved bundle.
type Meta struct {
	SavedAt time.Time         `json:"saved_at,omitempty"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// Warehouse keeps saved bundles across owner lifetimes, keyed by host
// identity. It models the platform-side storage a process never outlives.
type Warehouse interface {
	Load(ctx context.Context, key string) (Bundle, Meta, bool, error)
	Save(ctx context.Context, key string, b Bundle, meta Meta) (Meta, error)
}

// MemoryWarehouse is a minimal in-memory Warehouse intended for tests and
// examples. Saved bundles are copied on the way in and out, so a caller can
// keep mutating its bundle without disturbing the stored snapshot.
type MemoryWarehouse struct {
	mu      sync.RWMutex
	records map[string]warehouseRecord
}

type warehouseRecord struct {
	bundle *Memory
	meta   Meta
}

func NewMemoryWarehouse() *MemoryWarehouse {
	return &MemoryWarehouse{records: map[string]warehouseRecord{}}
}

func (w *MemoryWarehouse) Load(_ context.Context, key string) (Bundle, Meta, bool, error) {
	w.mu.RLock()
	record, ok := w.records[key]
	w.mu.RUnlock()
	if !ok {
		return nil, Meta{}, false, nil
	}
	return copyBundle(record.bundle), cloneMeta(record.meta), true, nil
}

func (w *MemoryWarehouse) Save(_ context.Context, key string, b Bundle, meta Meta) (Meta, error) {
	if meta.SavedAt.IsZero() {
		meta.SavedAt = time.Now().UTC()
	}
	w.mu.Lock()
	if w.records == nil {
		w.records = map[string]warehouseRecord{}
	}
	w.records[key] = warehouseRecord{bundle: copyBundle(b), meta: cloneMeta(meta)}
	w.mu.Unlock()
	return cloneMeta(meta), nil
}

func copyBundle(b Bundle) *Memory {
	out := NewMemory()
	if b == nil {
		return out
	}
	for _, key := range b.Keys() {
		if payload, ok := b.Get(key); ok {
			out.Put(key, payload)
		}
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
