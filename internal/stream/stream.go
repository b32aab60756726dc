// Package stream implements the small set of synchronous push-stream
// operators the todo widget is wired with.
//
// Streams are cold: every Subscribe call runs the producer again. Values are
// delivered synchronously on the caller's goroutine. Nothing in this package
// is safe for concurrent use.
package stream

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	cancel func()
	done   bool
}

// Unsubscribe stops delivery and releases upstream resources. Calling it more
// than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.done {
		return
	}
	s.done = true
	if s.cancel != nil {
		s.cancel()
	}
}

// Closed reports whether Unsubscribe has been called.
func (s *Subscription) Closed() bool {
	return s == nil || s.done
}

// Stream is a live sequence of values delivered to subscribers.
type Stream[T any] struct {
	subscribe func(next func(T)) func()
}

// New builds a stream from a producer. The producer is called once per
// subscriber and returns a function that tears the subscription down.
func New[T any](produce func(next func(T)) func()) Stream[T] {
	return Stream[T]{subscribe: produce}
}

// Subscribe registers next and starts the producer.
func (s Stream[T]) Subscribe(next func(T)) *Subscription {
	sub := &Subscription{}
	if s.subscribe == nil {
		return sub
	}
	guarded := func(v T) {
		if !sub.done {
			next(v)
		}
	}
	sub.cancel = s.subscribe(guarded)
	return sub
}

// Empty returns a stream that never emits.
func Empty[T any]() Stream[T] {
	return New(func(func(T)) func() { return nil })
}

// Just returns a stream that emits v once to each subscriber.
func Just[T any](v T) Stream[T] {
	return From(v)
}

// From returns a stream that emits vs in order to each subscriber.
func From[T any](vs ...T) Stream[T] {
	return New(func(next func(T)) func() {
		for _, v := range vs {
			next(v)
		}
		return nil
	})
}

// Map applies f to every value.
func Map[T, U any](s Stream[T], f func(T) U) Stream[U] {
	return New(func(next func(U)) func() {
		sub := s.Subscribe(func(v T) { next(f(v)) })
		return sub.Unsubscribe
	})
}

// Filter forwards values for which keep returns true.
func Filter[T any](s Stream[T], keep func(T) bool) Stream[T] {
	return New(func(next func(T)) func() {
		sub := s.Subscribe(func(v T) {
			if keep(v) {
				next(v)
			}
		})
		return sub.Unsubscribe
	})
}

// Merge interleaves ss in arrival order.
func Merge[T any](ss ...Stream[T]) Stream[T] {
	return New(func(next func(T)) func() {
		subs := make([]*Subscription, 0, len(ss))
		for _, s := range ss {
			subs = append(subs, s.Subscribe(next))
		}
		return func() {
			for _, sub := range subs {
				sub.Unsubscribe()
			}
		}
	})
}

// StartWith emits vs before any value of s.
func StartWith[T any](s Stream[T], vs ...T) Stream[T] {
	return New(func(next func(T)) func() {
		for _, v := range vs {
			next(v)
		}
		sub := s.Subscribe(next)
		return sub.Unsubscribe
	})
}

// Scan folds s with f starting from seed and emits every accumulation.
// The seed itself is not emitted. Each subscriber folds independently.
func Scan[T, A any](s Stream[T], seed A, f func(A, T) A) Stream[A] {
	return New(func(next func(A)) func() {
		acc := seed
		sub := s.Subscribe(func(v T) {
			acc = f(acc, v)
			next(acc)
		})
		return sub.Unsubscribe
	})
}

// Collect subscribes to s and appends every value to the returned slice
// pointer until the subscription is closed.
func Collect[T any](s Stream[T]) (*[]T, *Subscription) {
	var out []T
	sub := s.Subscribe(func(v T) { out = append(out, v) })
	return &out, sub
}
