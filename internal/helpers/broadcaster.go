package helpers

import (
	"sync"
)

// Broadcaster fans values out to subscribers without blocking the publisher.
// A subscriber whose buffer is full is dropped and its channel closed.
type Broadcaster[T any] struct {
	mu        *sync.RWMutex
	listeners map[chan T]struct{}
	closed    bool
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		mu:        &sync.RWMutex{},
		listeners: make(map[chan T]struct{}),
	}
}

// Subscribe returns a channel buffered to buf. It is closed immediately when
// the broadcaster is already closed.
func (b *Broadcaster[T]) Subscribe(buf int) <-chan T {
	ch := make(chan T, buf)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.listeners[ch] = struct{}{}
	return ch
}

func (b *Broadcaster[T]) Unsubscribe(ch <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.listeners {
		if (<-chan T)(c) == ch {
			delete(b.listeners, c)
			close(c)
			break
		}
	}
}

// Publish delivers v to every subscriber with room in its buffer and returns
// the number of subscribers dropped
func (b *Broadcaster[T]) Publish(v T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	dropped := 0
	for ch := range b.listeners {
		select {
		case ch <- v:
		default:
			delete(b.listeners, ch)
			close(ch)
			dropped++
		}
	}
	return dropped
}

func (b *Broadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for ch := range b.listeners {
		close(ch)
	}
	b.listeners = nil
	b.closed = true
}
