// Package http provides the REST surface: application launch, window
// operations, taskbar enumeration and session management.
package http
