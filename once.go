package cachepolicy

import "sync/atomic"

// once is a single-assignment result slot. The first resolve wins; later
// calls are dropped without blocking.
type once[T any] struct {
	fired atomic.Bool
	ch    chan T
}

func newOnce[T any]() *once[T] {
	return &once[T]{ch: make(chan T, 1)}
}

// resolve reports whether v was the value delivered.
func (o *once[T]) resolve(v T) bool {
	if !o.fired.CompareAndSwap(false, true) {
		return false
	}
	o.ch <- v
	return true
}

func (o *once[T]) done() <-chan T { return o.ch }
