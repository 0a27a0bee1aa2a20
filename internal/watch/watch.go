// Package watch provides an observable value container: a single current
// value broadcast to subscribers on every replacement, with last-value replay
// for late subscribers.
package watch

import "sync"

// Value holds the current value of type T. Setting it notifies every
// subscriber; a new subscriber immediately receives the latest value if one
// was ever set. Subscriber channels are conflating: when a subscriber lags,
// older values are dropped so it always observes the most recent snapshot.
type Value[T any] struct {
	mu   sync.Mutex
	cur  T
	set  bool
	subs map[int]chan T
	next int
}

// New returns an empty Value with no current value.
func New[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]chan T)}
}

// NewWith returns a Value seeded with an initial value.
func NewWith[T any](initial T) *Value[T] {
	v := New[T]()
	v.cur = initial
	v.set = true
	return v
}

// Get returns the current value and whether one has been set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur, v.set
}

// Set replaces the current value and broadcasts it to all subscribers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = val
	v.set = true
	for _, ch := range v.subs {
		send(ch, val)
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release the subscription; after cancel the channel is closed.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.next
	v.next++
	ch := make(chan T, 1)
	v.subs[id] = ch
	if v.set {
		send(ch, v.cur)
	}
	cancel := func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if c, ok := v.subs[id]; ok {
			delete(v.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// send delivers without blocking: if the subscriber has not drained the
// previous value it is replaced by the newer one.
func send[T any](ch chan T, val T) {
	for {
		select {
		case ch <- val:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
