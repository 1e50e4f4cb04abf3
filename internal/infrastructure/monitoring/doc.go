// Package monitoring exposes Prometheus metrics for windows, instances
// and the HTTP/WebSocket surface.
package monitoring
