// Package middleware provides shared gin middleware: CORS and per-IP
// rate limiting.
package middleware
