package events

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

// Payload is the plain record carried by every bus topic.
type Payload map[string]interface{}

// Unsubscribe removes a previously registered subscriber.
type Unsubscribe func()

// Bus is the process-wide publish/subscribe channel. Topics are
// strings, payloads are plain records. Publishing is synchronous:
// every subscriber runs before Publish returns, which keeps delivery
// atomic with respect to the mutation that triggered it.
//
// Subscribers are tracked by token rather than handed to the
// underlying bus directly; EventBus removes handlers by code pointer,
// which would conflate distinct closures created at the same call
// site.
type Bus struct {
	bus evbus.Bus

	mu   sync.Mutex
	subs map[string]map[int]func(Payload)
	next int
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		bus:  evbus.New(),
		subs: make(map[string]map[int]func(Payload)),
	}
}

// Publish delivers payload to every subscriber of topic.
func (b *Bus) Publish(topic string, payload Payload) {
	b.bus.Publish(topic, payload)
}

// Subscribe registers fn for topic and returns its unsubscribe
// callback. The same fn may be registered multiple times; each
// registration is removed independently.
func (b *Bus) Subscribe(topic string, fn func(Payload)) Unsubscribe {
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func(Payload))
		_ = b.bus.Subscribe(topic, b.dispatcher(topic))
	}
	b.next++
	token := b.next
	b.subs[topic][token] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs[topic], token)
		b.mu.Unlock()
	}
}

// dispatcher fans a topic out to the current subscriber set. Handlers
// added or removed while a publish is in flight take effect on the
// next publish.
func (b *Bus) dispatcher(topic string) func(Payload) {
	return func(p Payload) {
		b.mu.Lock()
		handlers := make([]func(Payload), 0, len(b.subs[topic]))
		tokens := make([]int, 0, len(b.subs[topic]))
		for token, fn := range b.subs[topic] {
			tokens = append(tokens, token)
			handlers = append(handlers, fn)
		}
		b.mu.Unlock()

		for i, fn := range handlers {
			// Re-check liveness so an unsubscribe performed by an
			// earlier handler in this same publish is honored.
			b.mu.Lock()
			_, live := b.subs[topic][tokens[i]]
			b.mu.Unlock()
			if live {
				fn(p)
			}
		}
	}
}
