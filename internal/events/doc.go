// Package events wraps the process-wide publish/subscribe bus consumed
// by the window manager, the application runtime and the transport
// layer. See topics.go for the emitted topic catalogue.
package events
