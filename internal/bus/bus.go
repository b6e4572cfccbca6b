// Package bus is the in-process publish/subscribe registry the engine uses to
// propagate ledger state changes to independently rendered consumers.
// Dispatch is synchronous, in subscription order, on the emitting goroutine.
package bus

import (
	"log/slog"
	"sync"
)

const (
	TopicTransactionCreated     = "transaction:created"
	TopicTransactionUpdated     = "transaction:updated"
	TopicTransactionSoftDeleted = "transaction:softDeleted"
	TopicTransactionPurged      = "transaction:permanentlyDeleted"
	TopicTransactionRestored    = "transaction:restored"
	TopicCurrencyChanged        = "currency:changed"
	TopicPreferenceUpdated      = "preference:updated"
)

type Handler func(payload any)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is an explicitly constructed dispatcher, passed by reference to every
// component that needs it. There is no package-level instance.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	topics map[string][]subscription
	logger *slog.Logger
}

func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		topics: make(map[string][]subscription),
		logger: logger,
	}
}

// On registers handler for topic and returns an unsubscribe func. Handlers
// for one topic run in the order they were registered.
func (b *Bus) On(topic string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: handler})

	return func() { b.off(topic, id) }
}

func (b *Bus) off(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, s := range subs {
		if s.id == id {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit invokes every handler currently registered for topic, once each,
// synchronously on the calling goroutine. A panicking handler is recovered
// and logged so the remaining handlers still run. A handler registered after
// Emit returns never sees this payload; there is no replay.
func (b *Bus) Emit(topic string, payload any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.Unlock()

	for _, s := range subs {
		b.dispatch(topic, s, payload)
	}
}

func (b *Bus) dispatch(topic string, s subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "topic", topic, "panic", r)
		}
	}()
	s.handler(payload)
}
