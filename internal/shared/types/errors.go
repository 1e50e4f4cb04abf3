package types

import "errors"

// Lifecycle failure taxonomy. All are reported over the event bus with
// descriptor id, window id and detail; none of them crash the process.
var (
	// ErrLaunchAborted means the open hook failed before a window was
	// created. No resources are leaked.
	ErrLaunchAborted = errors.New("launch aborted")

	// ErrMountFailed means the mount hook failed after the window
	// opened. The window remains open.
	ErrMountFailed = errors.New("mount failed")

	// ErrCloseHookFailed means the close hook failed during teardown.
	// Teardown still completes.
	ErrCloseHookFailed = errors.New("close hook failed")

	// ErrSessionConflict means a drag or resize was requested while a
	// session of the same kind was already active.
	ErrSessionConflict = errors.New("pointer session already active")

	// ErrWindowNotFound means an operation referenced a window id that
	// does not exist.
	ErrWindowNotFound = errors.New("window not found")

	// ErrNotResizable means a resize session was requested on a window
	// created with resizable=false.
	ErrNotResizable = errors.New("window is not resizable")

	// ErrUnknownApp means launch referenced an unregistered descriptor.
	ErrUnknownApp = errors.New("unknown application")
)
