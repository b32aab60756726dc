package dom

import (
	"github.com/google/uuid"

	"github.com/nibzard/todolist-go/internal/stream"
)

// Isolatable is implemented by component sources and sinks that can be
// confined to a scope.
type Isolatable[T any] interface {
	Isolate(scope string) T
}

// NewScope returns a fresh isolation scope name.
func NewScope() string {
	return "scope-" + uuid.NewString()
}

// Isolate wraps component so that its sources only see nodes inside scope
// and its sinks are tagged with scope. An empty scope gets a fresh name.
func Isolate[S Isolatable[S], K Isolatable[K]](component func(S) K, scope string) func(S) K {
	if scope == "" {
		scope = NewScope()
	}
	return func(sources S) K {
		return component(sources.Isolate(scope)).Isolate(scope)
	}
}

// IsolateSink tags the root of every tree in s with scope.
func IsolateSink(s stream.Stream[Node], scope string) stream.Stream[Node] {
	return stream.Map(s, func(n Node) Node {
		n.Scope = scope
		return n
	})
}
