// Package window implements the physical window state machine:
// creation at cascade positions, focus and z-order, minimize/restore,
// maximize toggling, exclusive drag and resize sessions and edge
// snapping. It knows nothing about application semantics; the runtime
// binds instances to windows by id.
package window
