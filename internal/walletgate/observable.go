package walletgate

import "sync"

// Listener is invoked with the previous and the new value after a change
type Listener[T comparable] func(prev, next T)

type listenerEntry[T comparable] struct {
	id int
	fn Listener[T]
}

// Observable holds a value and notifies registered listeners when it changes.
// Listeners run synchronously on the goroutine calling Set, in registration
// order, outside the internal lock so they may read any observable.
type Observable[T comparable] struct {
	mu        sync.Mutex
	value     T
	nextID    int
	listeners []listenerEntry[T]
}

// NewObservable creates an observable holding initial
func NewObservable[T comparable](initial T) *Observable[T] {
	return &Observable[T]{value: initial}
}

// Get returns the current value
func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set stores v. Listeners only run when v differs from the current value.
// It reports whether the value changed.
func (o *Observable[T]) Set(v T) bool {
	o.mu.Lock()
	prev := o.value
	if prev == v {
		o.mu.Unlock()
		return false
	}
	o.value = v
	listeners := make([]listenerEntry[T], len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.Unlock()

	for _, l := range listeners {
		l.fn(prev, v)
	}
	return true
}

// Subscribe registers fn and returns a function that removes it again
func (o *Observable[T]) Subscribe(fn Listener[T]) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	o.listeners = append(o.listeners, listenerEntry[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			for i, l := range o.listeners {
				if l.id == id {
					o.listeners = append(o.listeners[:i:i], o.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
