package stream

import (
	"reflect"
	"testing"
)

func TestMergePreservesArrivalOrder(t *testing.T) {
	a := NewSubject[string]()
	b := NewSubject[string]()
	got, sub := Collect(Merge(a.Stream(), b.Stream()))
	defer sub.Unsubscribe()

	a.Next("a1")
	b.Next("b1")
	b.Next("b2")
	a.Next("a2")

	want := []string{"a1", "b1", "b2", "a2"}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("Merge: got %v, want %v", *got, want)
	}
}

func TestStartWithScan(t *testing.T) {
	src := NewSubject[int]()
	sums := StartWith(Scan(src.Stream(), 0, func(acc, v int) int { return acc + v }), 0)
	got, sub := Collect(sums)
	defer sub.Unsubscribe()

	for _, v := range []int{1, 2, 3} {
		src.Next(v)
	}

	want := []int{0, 1, 3, 6}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("sums: got %v, want %v", *got, want)
	}
}

func TestScanIsPerSubscriber(t *testing.T) {
	src := NewSubject[int]()
	counts := Scan(src.Stream(), 0, func(acc, _ int) int { return acc + 1 })

	first, sub1 := Collect(counts)
	defer sub1.Unsubscribe()
	src.Next(0)
	second, sub2 := Collect(counts)
	defer sub2.Unsubscribe()
	src.Next(0)

	if !reflect.DeepEqual(*first, []int{1, 2}) {
		t.Errorf("first: got %v", *first)
	}
	if !reflect.DeepEqual(*second, []int{1}) {
		t.Errorf("second: got %v", *second)
	}
}

func TestMapFilter(t *testing.T) {
	got, sub := Collect(Map(Filter(From(1, 2, 3, 4), func(v int) bool { return v%2 == 0 }), func(v int) int { return v * 10 }))
	defer sub.Unsubscribe()
	if !reflect.DeepEqual(*got, []int{20, 40}) {
		t.Errorf("got %v", *got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	src := NewSubject[int]()
	got, sub := Collect(Map(src.Stream(), func(v int) int { return v }))
	src.Next(1)
	sub.Unsubscribe()
	sub.Unsubscribe()
	src.Next(2)

	if !reflect.DeepEqual(*got, []int{1}) {
		t.Errorf("got %v, want [1]", *got)
	}
	if src.Observed() != 0 {
		t.Errorf("Observed: got %d, want 0", src.Observed())
	}
}

func TestShareReplayReplaysLatestToLateSubscribers(t *testing.T) {
	connects := 0
	src := NewSubject[int]()
	upstream := New(func(next func(int)) func() {
		connects++
		next(0)
		sub := src.Stream().Subscribe(next)
		return sub.Unsubscribe
	})
	shared := ShareReplay(upstream)

	early, sub1 := Collect(shared)
	src.Next(1)
	src.Next(2)
	late, sub2 := Collect(shared)
	src.Next(3)

	if connects != 1 {
		t.Errorf("connects: got %d, want 1", connects)
	}
	if !reflect.DeepEqual(*early, []int{0, 1, 2, 3}) {
		t.Errorf("early: got %v", *early)
	}
	if !reflect.DeepEqual(*late, []int{2, 3}) {
		t.Errorf("late: got %v, want [2 3]", *late)
	}

	sub1.Unsubscribe()
	sub2.Unsubscribe()
	if src.Observed() != 0 {
		t.Errorf("upstream still connected after last unsubscribe")
	}
}

func TestLatest(t *testing.T) {
	src := NewSubject[string]()
	l := NewLatest(src.Stream(), "none")

	if v, ok := l.Get(); ok || v != "none" {
		t.Errorf("before emit: got (%q, %v), want (none, false)", v, ok)
	}
	src.Next("a")
	src.Next("b")
	if v, ok := l.Get(); !ok || v != "b" {
		t.Errorf("after emit: got (%q, %v), want (b, true)", v, ok)
	}

	l.Close()
	src.Next("c")
	if v, _ := l.Get(); v != "b" {
		t.Errorf("after close: got %q, want b", v)
	}
	if !l.Closed() {
		t.Error("Closed: got false")
	}
}
