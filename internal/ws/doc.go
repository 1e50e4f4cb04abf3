// Package ws serves the WebSocket surface: desktop events stream out,
// pointer input and window operations come in.
package ws
