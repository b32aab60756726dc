package stream

// Subject is a hot stream fed by Next.
type Subject[T any] struct {
	subs   map[int]func(T)
	order  []int
	nextID int
}

// NewSubject returns an empty subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{subs: make(map[int]func(T))}
}

// Next delivers v to every current subscriber in subscription order.
// Subscribers added while v is being delivered do not receive v.
func (s *Subject[T]) Next(v T) {
	ids := append([]int(nil), s.order...)
	for _, id := range ids {
		if fn, ok := s.subs[id]; ok {
			fn(v)
		}
	}
}

// Observed reports the number of live subscribers.
func (s *Subject[T]) Observed() int {
	return len(s.subs)
}

// Stream exposes the subject as a Stream.
func (s *Subject[T]) Stream() Stream[T] {
	return New(func(next func(T)) func() {
		id := s.nextID
		s.nextID++
		s.subs[id] = next
		s.order = append(s.order, id)
		return func() { s.remove(id) }
	})
}

func (s *Subject[T]) remove(id int) {
	delete(s.subs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			return
		}
	}
}

// ShareReplay multicasts s to all subscribers through one upstream
// subscription and replays the most recent value to late subscribers.
//
// The upstream is connected by the first subscriber and disconnected when the
// last one leaves. The cached value survives a disconnect.
func ShareReplay[T any](s Stream[T]) Stream[T] {
	var (
		hub      = NewSubject[T]()
		last     T
		has      bool
		upstream *Subscription
	)
	return New(func(next func(T)) func() {
		if has {
			next(last)
		}
		inner := hub.Stream().Subscribe(next)
		if upstream == nil {
			upstream = s.Subscribe(func(v T) {
				last, has = v, true
				hub.Next(v)
			})
		}
		return func() {
			inner.Unsubscribe()
			if hub.Observed() == 0 && upstream != nil {
				up := upstream
				upstream = nil
				up.Unsubscribe()
			}
		}
	})
}
