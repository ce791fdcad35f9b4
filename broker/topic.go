package broker

import "sync"

// Topic is a typed publish/subscribe channel. Publish delivers synchronously
// on the caller's goroutine, to subscribers in the order they subscribed.
type Topic[T any] struct {
	mu     sync.Mutex
	subs   []*Subscription
	byID   map[uint64]func(T)
	nextID uint64
	closed bool
}

func NewTopic[T any]() *Topic[T] {
	return &Topic[T]{byID: make(map[uint64]func(T))}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id     uint64
	once   sync.Once
	cancel func(id uint64)
}

// Unsubscribe stops delivery to the handler. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.once.Do(func() { s.cancel(s.id) })
}

// Subscribe registers handler. Subscribing to a closed topic returns an
// inert subscription.
func (t *Topic[T]) Subscribe(handler func(T)) *Subscription {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || handler == nil {
		return &Subscription{}
	}

	t.nextID++
	sub := &Subscription{id: t.nextID, cancel: t.remove}
	t.subs = append(t.subs, sub)
	t.byID[sub.id] = handler
	return sub
}

func (t *Topic[T]) remove(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.byID, id)
	for i, sub := range t.subs {
		if sub.id == id {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			break
		}
	}
}

// Publish delivers msg to every current subscriber and reports how many
// handlers ran. Handlers run outside the topic lock.
func (t *Topic[T]) Publish(msg T) int {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0
	}
	handlers := make([]func(T), 0, len(t.subs))
	for _, sub := range t.subs {
		handlers = append(handlers, t.byID[sub.id])
	}
	t.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
	return len(handlers)
}

// Close drops every subscriber; later publishes are ignored.
func (t *Topic[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.subs = nil
	t.byID = make(map[uint64]func(T))
}

func (t *Topic[T]) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Len returns the number of active subscribers.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
