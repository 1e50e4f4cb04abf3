// Package session persists and restores workspace state: which
// applications are open and where their windows sit.
package session
