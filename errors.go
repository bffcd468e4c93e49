package viewstate

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-viewstate/pkg/snapshot"
)

var (
	// ErrOrderingViolation indicates a host-wide view-model was requested
	// before its owner ran RestoreViewModels. Surfacing it at the access
	// point keeps a missed restore from silently discarding persisted state.
	ErrOrderingViolation = errors.New("viewstate: view-model requested before restore")

	// ErrMissingSaveHook indicates a save was attempted on a scope holding
	// host-wide entries whose owner never implements the save hook. Raised
	// at save time, never at get time: a transient scope may validly never
	// need saving.
	ErrMissingSaveHook = errors.New("viewstate: owner does not implement save hook")

	// ErrUnrepresentableField mirrors the codec sentinel so callers can
	// match the whole fatal taxonomy against this package.
	ErrUnrepresentableField = snapshot.ErrUnrepresentableField

	// ErrNoEngine indicates a selector was evaluated without an engine
	// configured or resolvable.
	ErrNoEngine = errors.New("viewstate: selector engine not configured")
)

// ContractError captures which store operation tripped a lifecycle contract
// violation alongside the offending scope and container.
type ContractError struct {
	Op        string
	Container string
	Scope     ScopeKey
	Err       error
}

func (e *ContractError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("viewstate: %s %s scope=%s: %v", e.Op, describeContainer(e.Container), e.Scope.Identifier(), e.Err)
}

func (e *ContractError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeContainer(container string) string {
	if container == "" {
		return "container=<none>"
	}
	return fmt.Sprintf("container=%q", container)
}
