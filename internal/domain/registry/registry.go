package registry

import (
	"sync"

	"github.com/deskforge/deskos/internal/shared/types"
)

// Watcher receives the full ordered window list after every mutation.
// The taskbar and other enumeration surfaces subscribe through it.
type Watcher func([]types.WindowRecord)

// Registry keeps the ordered list of window descriptors that the
// window manager reads and mutates. Insertion order is creation order.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	records  map[string]*types.WindowRecord
	watchers []Watcher
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{records: make(map[string]*types.WindowRecord)}
}

// Add appends a window record. Re-adding an existing id overwrites the
// record but keeps its position.
func (r *Registry) Add(record types.WindowRecord) {
	r.mu.Lock()
	if _, exists := r.records[record.ID]; !exists {
		r.order = append(r.order, record.ID)
	}
	r.records[record.ID] = &record
	r.mu.Unlock()

	r.notify()
}

// Update applies a partial patch to a record. Unknown ids are ignored.
func (r *Registry) Update(id string, patch types.WindowPatch) {
	r.mu.Lock()
	record, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	if patch.Title != nil {
		record.Title = *patch.Title
	}
	if patch.Minimized != nil {
		record.Minimized = *patch.Minimized
	}
	if patch.Maximized != nil {
		record.Maximized = *patch.Maximized
	}
	if patch.Snapped != nil {
		record.Snapped = *patch.Snapped
	}
	r.mu.Unlock()

	r.notify()
}

// Remove deletes a record. Unknown ids are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.records, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.notify()
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id string) (types.WindowRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return types.WindowRecord{}, false
	}
	return *record, true
}

// SetFocused marks id as the focused window and clears the flag from
// every other record.
func (r *Registry) SetFocused(id string) {
	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.mu.Unlock()
		return
	}
	for _, record := range r.records {
		record.Focused = record.ID == id
	}
	r.mu.Unlock()

	r.notify()
}

// All returns copies of every record in creation order.
func (r *Registry) All() []types.WindowRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.WindowRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.records[id])
	}
	return out
}

// Watch subscribes fn to registry changes.
func (r *Registry) Watch(fn Watcher) {
	r.mu.Lock()
	r.watchers = append(r.watchers, fn)
	r.mu.Unlock()
}

func (r *Registry) notify() {
	r.mu.RLock()
	watchers := make([]Watcher, len(r.watchers))
	copy(watchers, r.watchers)
	r.mu.RUnlock()

	if len(watchers) == 0 {
		return
	}
	snapshot := r.All()
	for _, fn := range watchers {
		fn(snapshot)
	}
}
