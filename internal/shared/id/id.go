// Package id provides window and instance id allocation.
//
// Window ids are human-readable: a singleton descriptor reuses its own
// id, a multi-instance descriptor gets "desc-N" with a per-descriptor
// monotonic counter. Instance tokens are UUIDs.
package id

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Allocator hands out window ids derived from descriptor ids.
type Allocator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{counters: make(map[string]int)}
}

// Window returns the next window id for a descriptor. Singleton
// descriptors always map to their own id.
func (a *Allocator) Window(descriptorID string, singleton bool) string {
	if singleton {
		return descriptorID
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.counters[descriptorID]++
	return fmt.Sprintf("%s-%d", descriptorID, a.counters[descriptorID])
}

// Token returns a unique instance token.
func Token() string {
	return uuid.New().String()
}
