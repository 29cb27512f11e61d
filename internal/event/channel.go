package event

import (
	"reflect"
	"sync"
)

// Channel is a typed, synchronous publish/subscribe bus.
// Handlers run on the publisher's call stack in subscription order.
type Channel struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[reflect.Type][]subscriber
}

type subscriber struct {
	id uint64
	fn func(any)
}

// Subscription is the handle returned by Subscribe. The zero value is inert.
type Subscription struct {
	ch  *Channel
	key reflect.Type
	id  uint64
}

// New returns an empty channel.
func New() *Channel {
	return &Channel{subs: make(map[reflect.Type][]subscriber)}
}

// Subscribe registers handler for every published T.
func Subscribe[T any](ch *Channel, handler func(T)) Subscription {
	if ch == nil || handler == nil {
		return Subscription{}
	}
	key := reflect.TypeFor[T]()

	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.nextID++
	id := ch.nextID
	ch.subs[key] = append(ch.subs[key], subscriber{
		id: id,
		fn: func(v any) { handler(v.(T)) },
	})
	return Subscription{ch: ch, key: key, id: id}
}

// Unsubscribe removes the handler. Calling it more than once is a no-op.
// A handler removed while a publish is in flight still sees that event.
func (s Subscription) Unsubscribe() {
	if s.ch == nil {
		return
	}
	s.ch.mu.Lock()
	defer s.ch.mu.Unlock()
	list := s.ch.subs[s.key]
	for i, sub := range list {
		if sub.id != s.id {
			continue
		}
		// build a fresh slice so snapshots taken by Publish are never touched
		next := make([]subscriber, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(s.ch.subs, s.key)
		} else {
			s.ch.subs[s.key] = next
		}
		return
	}
}

// Publish delivers ev to a snapshot of the current T subscribers.
// Every handler receives its own copy of ev.
func Publish[T any](ch *Channel, ev T) {
	if ch == nil {
		return
	}
	key := reflect.TypeFor[T]()

	ch.mu.Lock()
	list := ch.subs[key]
	snapshot := make([]subscriber, len(list))
	copy(snapshot, list)
	ch.mu.Unlock()

	for _, sub := range snapshot {
		sub.fn(ev)
	}
}

// Count reports how many handlers are subscribed to T.
func Count[T any](ch *Channel) int {
	if ch == nil {
		return 0
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.subs[reflect.TypeFor[T]()])
}
