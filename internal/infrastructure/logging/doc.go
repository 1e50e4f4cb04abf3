// Package logging provides structured logging built on zap. Console
// encoding in development, JSON in production.
package logging
