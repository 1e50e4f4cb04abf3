// Package types defines shared domain types for the desktop core:
// windows, geometry, application descriptors and the lifecycle error
// taxonomy. It has no dependencies on other internal packages.
package types
