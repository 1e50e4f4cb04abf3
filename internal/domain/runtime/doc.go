// Package runtime binds application instances to windows. It decides
// singleton reuse versus fresh activation, registers instance records
// before any application code runs, provides context-scoped helpers
// with automatic teardown, and reports every lifecycle failure over
// the bus without crashing the host.
package runtime
