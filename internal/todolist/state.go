// Package todolist is the todo-list widget: intent, actions, model and view
// wired over streams, with each todo as an isolated child component.
package todolist

import (
	"github.com/nibzard/todolist-go/internal/dom"
	"github.com/nibzard/todolist-go/internal/stream"
)

// TodoState is the state of one todo item.
type TodoState struct {
	Text    string
	Checked bool
}

// Snapshot is a value read from a stream-backed field. Resolved is false when
// the stream had not emitted at the time of reading.
type Snapshot[T any] struct {
	Value    T
	Resolved bool
}

// TodoComponent is a live todo item: its tree and state streams plus the
// cache the fold reads from.
type TodoComponent struct {
	DOM   stream.Stream[dom.Node]
	State stream.Stream[TodoState]

	latest *stream.Latest[TodoState]
}

// Snapshot returns the latest state the component has emitted.
func (c *TodoComponent) Snapshot() Snapshot[TodoState] {
	if c == nil || c.latest == nil {
		return Snapshot[TodoState]{}
	}
	v, ok := c.latest.Get()
	return Snapshot[TodoState]{Value: v, Resolved: ok}
}

// Release stops the component's state cache.
func (c *TodoComponent) Release() {
	if c != nil && c.latest != nil {
		c.latest.Close()
	}
}

// Released reports whether Release has been called.
func (c *TodoComponent) Released() bool {
	return c == nil || c.latest == nil || c.latest.Closed()
}

// TodoItem is an entry of AppState.Todos. State holds the value resolved by
// Transpose; it is only meaningful inside a reducer.
type TodoItem struct {
	Component *TodoComponent
	State     Snapshot[TodoState]
}

// AppState is the widget state produced by the model fold.
type AppState struct {
	Text  string
	Todos []TodoItem
}

// Reducer computes the next state from the transposed previous state.
type Reducer func(AppState) AppState

// Transpose resolves each todo's stream-backed state into a plain snapshot.
// Todos whose stream has not emitted are left unresolved. It never subscribes
// or alters what downstream subscribers see.
func Transpose(s AppState) AppState {
	out := AppState{Text: s.Text}
	if s.Todos != nil {
		out.Todos = make([]TodoItem, len(s.Todos))
	}
	for i, item := range s.Todos {
		out.Todos[i] = TodoItem{
			Component: item.Component,
			State:     item.Component.Snapshot(),
		}
	}
	return out
}
