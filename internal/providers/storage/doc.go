// Package storage implements the persistent key/value store consumed
// by the session manager and exposed to applications as a black box.
package storage
