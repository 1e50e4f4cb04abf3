// Package server assembles the desktop core: bus, registry, window
// manager, runtime, sessions and the HTTP/WebSocket surface.
package server
