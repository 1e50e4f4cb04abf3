package runtime

import (
	"reflect"
	"sync"

	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/shared/types"
)

// Context is the execution context of one application instance. Every
// lifecycle hook and every wrapped handler receives the owning
// instance's context explicitly; there is no shared "current instance"
// field that an interleaved callback belonging to another instance
// could overwrite. Handlers capture their context by closure and check
// liveness at the top of the body, so a deferred callback that fires
// after teardown no-ops instead of resurrecting state.
type Context struct {
	rt       *Runtime
	windowID string
	desc     types.Descriptor

	mu       sync.Mutex
	state    map[string]interface{}
	removals []func()
	unsubs   []events.Unsubscribe
	dead     bool
}

func newContext(rt *Runtime, windowID string, desc types.Descriptor) *Context {
	return &Context{
		rt:       rt,
		windowID: windowID,
		desc:     desc,
		state:    make(map[string]interface{}),
	}
}

// WindowID returns the id of the bound window.
func (c *Context) WindowID() string { return c.windowID }

// Descriptor returns the descriptor this instance was launched from.
func (c *Context) Descriptor() types.Descriptor { return c.desc }

// alive reports whether this context still belongs to a registered
// instance.
func (c *Context) alive() bool {
	c.mu.Lock()
	dead := c.dead
	c.mu.Unlock()
	if dead {
		return false
	}
	inst := c.rt.instanceFor(c.windowID)
	return inst != nil && inst.ctx == c
}

// State returns the per-instance state entry for key.
func (c *Context) State(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.state[key]
	return v, ok
}

// SetState stores a per-instance state entry. A change notification is
// emitted only when the value actually differs.
func (c *Context) SetState(key string, value interface{}) {
	c.mu.Lock()
	prev, had := c.state[key]
	if had && reflect.DeepEqual(prev, value) {
		c.mu.Unlock()
		return
	}
	c.state[key] = value
	c.mu.Unlock()

	c.rt.bus.Publish(events.TopicStateChange, events.Payload{
		"window_id": c.windowID, "key": key,
	})
}

// Element looks up an element inside this instance's window only.
func (c *Context) Element(elementID string) (EventTarget, bool) {
	if c.rt.surface == nil {
		return nil, false
	}
	return c.rt.surface.Element(c.windowID, elementID)
}

// AddHandler registers fn on a host-surface target. The handler is
// wrapped so the owning instance's context is re-asserted before fn
// runs, and it is recorded for automatic removal at teardown.
func (c *Context) AddHandler(target EventTarget, event string, fn func(payload interface{})) {
	wrapped := func(payload interface{}) {
		if !c.alive() {
			return
		}
		fn(payload)
	}
	remove := target.AddHandler(event, wrapped)

	c.mu.Lock()
	c.removals = append(c.removals, remove)
	c.mu.Unlock()
}

// OnEvent subscribes fn to a bus topic with the same context wrapping
// and teardown guarantees as AddHandler.
func (c *Context) OnEvent(topic string, fn func(events.Payload)) {
	unsub := c.rt.bus.Subscribe(topic, func(p events.Payload) {
		if !c.alive() {
			return
		}
		fn(p)
	})

	c.mu.Lock()
	c.unsubs = append(c.unsubs, unsub)
	c.mu.Unlock()
}

// cleanup removes every bound handler and bus subscription. Called
// exactly once, from instance teardown.
func (c *Context) cleanup() {
	c.mu.Lock()
	c.dead = true
	removals := c.removals
	unsubs := c.unsubs
	c.removals = nil
	c.unsubs = nil
	c.mu.Unlock()

	for _, remove := range removals {
		remove()
	}
	for _, unsub := range unsubs {
		unsub()
	}
}
