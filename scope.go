package viewstate

import (
	"fmt"

	"github.com/google/uuid"
)

// ScopeKind identifies which lifecycle a view-model is bound to.
type ScopeKind int

const (
	// ScopeKindUnknown guards against misconfiguration so call sites can
	// detect a missing scope declaration.
	ScopeKindUnknown ScopeKind = iota
	// ScreenScope binds a view-model to a single screen instance. It is
	// destroyed with the screen and never persisted across process death.
	ScreenScope
	// HostScope binds a view-model to the enclosing host container. It
	// survives configuration changes and, when the host supports it,
	// process death.
	HostScope
)

func (k ScopeKind) String() string {
	switch k {
	case ScreenScope:
		return "screen"
	case HostScope:
		return "host"
	default:
		return "unknown"
	}
}

// ParseScopeKind converts a string representation into the corresponding
// ScopeKind. Returns ScopeKindUnknown for unrecognised values.
func ParseScopeKind(value string) ScopeKind {
	switch value {
	case "screen", "SCREEN":
		return ScreenScope
	case "host", "HOST":
		return HostScope
	default:
		return ScopeKindUnknown
	}
}

// ScopeKey identifies one store boundary: a screen instance or a host
// container. Keys are value types and compare with ==.
type ScopeKey struct {
	Kind ScopeKind
	ID   string
}

// NewScreenKey mints a scope key for a fresh screen instance. IDs are random
// so two screens of the same type never collide.
func NewScreenKey() ScopeKey {
	return ScopeKey{Kind: ScreenScope, ID: uuid.NewString()}
}

// NewHostKey builds a scope key for a host container. Host IDs are
// caller-chosen so they stay stable across process death.
func NewHostKey(id string) ScopeKey {
	return ScopeKey{Kind: HostScope, ID: id}
}

// Identifier returns the stable slug used when composing deterministic
// bundle slot keys (e.g., "host/main/pkg.containerType").
func (k ScopeKey) Identifier() string {
	return fmt.Sprintf("%s/%s", k.Kind, k.ID)
}

// SlotKey derives the bundle slot key for one container type inside this
// scope.
func (k ScopeKey) SlotKey(container string) string {
	return fmt.Sprintf("%s/%s", k.Identifier(), container)
}

func (k ScopeKey) isZero() bool {
	return k.Kind == ScopeKindUnknown && k.ID == ""
}

// ScopeResolver maps a requested scope kind onto the store retained by that
// scope's owning object: the screen's own store for ScreenScope, the
// enclosing host container's store for HostScope. Resolution walks up the
// containment chain exactly one level; screens do not nest through multiple
// host containers for this purpose.
type ScopeResolver interface {
	// StoreFor returns the retained store for kind. The same store must be
	// returned across configuration-change re-creations of the screen; a
	// new store appears only when the owning scope is permanently
	// destroyed.
	StoreFor(kind ScopeKind) (*Store, error)

	// Arguments returns the serializable argument value attached to the
	// screen at creation, when one was supplied.
	Arguments() (any, bool)
}
