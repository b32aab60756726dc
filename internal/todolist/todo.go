package todolist

import (
	"github.com/nibzard/todolist-go/internal/dom"
	"github.com/nibzard/todolist-go/internal/stream"
)

// todoPatch is a partial TodoState; nil fields are left unchanged.
type todoPatch struct {
	Text    *string
	Checked *bool
}

func (p todoPatch) apply(s TodoState) TodoState {
	if p.Text != nil {
		s.Text = *p.Text
	}
	if p.Checked != nil {
		s.Checked = *p.Checked
	}
	return s
}

func propsPatch(s TodoState) todoPatch {
	text, checked := s.Text, s.Checked
	return todoPatch{Text: &text, Checked: &checked}
}

// TodoSources are the inputs of a Todo component.
type TodoSources struct {
	DOM   dom.Source
	Props stream.Stream[TodoState]
}

// Isolate confines the DOM source to scope.
func (s TodoSources) Isolate(scope string) TodoSources {
	return TodoSources{DOM: s.DOM.Isolate(scope), Props: s.Props}
}

// TodoSinks are the outputs of a Todo component.
type TodoSinks struct {
	DOM   stream.Stream[dom.Node]
	State stream.Stream[TodoState]
}

// Isolate tags the rendered tree with scope.
func (s TodoSinks) Isolate(scope string) TodoSinks {
	return TodoSinks{DOM: dom.IsolateSink(s.DOM, scope), State: s.State}
}

// Todo is a single todo item. Its state starts empty, takes the props and
// then follows checkbox changes. The state is shared and replays its latest
// value to new subscribers.
func Todo(src TodoSources) TodoSinks {
	toggled := stream.Map(src.DOM.Select(".checked").Events(dom.EventChange), func(ev dom.Event) todoPatch {
		checked := ev.Checked
		return todoPatch{Checked: &checked}
	})
	patches := stream.Merge(stream.Map(src.Props, propsPatch), toggled)

	state := stream.ShareReplay(stream.StartWith(
		stream.Scan(patches, TodoState{}, func(s TodoState, p todoPatch) TodoState {
			return p.apply(s)
		}),
		TodoState{},
	))

	return TodoSinks{
		DOM:   stream.Map(state, todoView),
		State: state,
	}
}

func todoView(s TodoState) dom.Node {
	return dom.Div(".todo",
		dom.Input(".checked", dom.Props{Type: dom.InputCheckbox, Checked: s.Checked}),
		dom.Label(s.Text),
	)
}

// makeTodo builds an isolated Todo with fixed initial props and starts
// caching its state.
func makeTodo(initial TodoState, source dom.Source) *TodoComponent {
	sinks := dom.Isolate(Todo, "")(TodoSources{DOM: source, Props: stream.Just(initial)})
	return &TodoComponent{
		DOM:    sinks.DOM,
		State:  sinks.State,
		latest: stream.NewLatest(sinks.State, TodoState{}),
	}
}
