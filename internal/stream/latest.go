package stream

// Latest caches the most recent value observed on a stream so it can be read
// synchronously. Until the stream emits, Get reports the default value and
// false.
type Latest[T any] struct {
	value T
	has   bool
	sub   *Subscription
}

// NewLatest subscribes to s immediately. def is returned by Get until the
// first emission.
func NewLatest[T any](s Stream[T], def T) *Latest[T] {
	l := &Latest[T]{value: def}
	l.sub = s.Subscribe(func(v T) {
		l.value = v
		l.has = true
	})
	return l
}

// Get returns the cached value and whether the stream has emitted.
func (l *Latest[T]) Get() (T, bool) {
	return l.value, l.has
}

// Close stops observing the stream. The cached value remains readable.
func (l *Latest[T]) Close() {
	l.sub.Unsubscribe()
}

// Closed reports whether Close has been called.
func (l *Latest[T]) Closed() bool {
	return l.sub.Closed()
}
