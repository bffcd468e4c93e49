// Package host models the scope-owner side of the view-model protocol: the
// retained host container, screen owners, and the runtime that drives both
// through creation, configuration change, state handoff, process death, and
// permanent destruction.
//
// Responsibilities:
//   - Container owns the host-wide store. It restores persisted state
//     before consumer code can run and implements the save hook.
//   - Screen owns a screen-local store and resolves host-wide requests one
//     level up, through the container it was opened on.
//   - Runtime sequences the lifecycle and parks saved bundles in a
//     bundle.Warehouse that outlives the process.
//
// Lifecycle flow:
//
//	Launch -> OpenScreen -> SaveState -> Terminate -> Launch (restored)
//
// Configuration changes go through Recreate on either owner: the owner
// object is rebuilt while its retained store, and every live view-model in
// it, carries over untouched.
package host
