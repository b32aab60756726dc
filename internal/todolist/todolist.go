package todolist

import (
	"github.com/nibzard/todolist-go/internal/dom"
	"github.com/nibzard/todolist-go/internal/snapshot"
	"github.com/nibzard/todolist-go/internal/stream"
)

// Sources are the inputs of the widget. Seed, when set, is applied before
// any user action.
type Sources struct {
	DOM  dom.Source
	Seed *snapshot.File
}

// Sinks are the outputs of the widget.
type Sinks struct {
	DOM   stream.Stream[dom.Node]
	State stream.Stream[AppState]
}

// Intent holds the interaction streams read from the DOM.
type Intent struct {
	NewTodo       stream.Stream[dom.Event]
	NewTodoText   stream.Stream[string]
	ClearComplete stream.Stream[dom.Event]
	DOM           dom.Source
}

func intent(source dom.Source) Intent {
	return Intent{
		NewTodo: source.Select(".new-todo").Events(dom.EventClick),
		NewTodoText: stream.Map(source.Select(".new-todo-text").Events(dom.EventChange), func(ev dom.Event) string {
			return ev.Value
		}),
		ClearComplete: source.Select(".clear-complete").Events(dom.EventClick),
		DOM:           source,
	}
}

func addTodo(source dom.Source) Reducer {
	return func(s AppState) AppState {
		todos := make([]TodoItem, len(s.Todos), len(s.Todos)+1)
		copy(todos, s.Todos)
		todos = append(todos, TodoItem{Component: makeTodo(TodoState{Text: s.Text}, source)})
		return AppState{Text: s.Text, Todos: todos}
	}
}

func updateText(text string) Reducer {
	return func(s AppState) AppState {
		return AppState{Text: text, Todos: s.Todos}
	}
}

// clearComplete drops todos whose resolved state is checked. Unresolved
// todos read as unchecked and are kept.
func clearComplete() Reducer {
	return func(s AppState) AppState {
		var todos []TodoItem
		for _, item := range s.Todos {
			if !item.State.Value.Checked {
				todos = append(todos, item)
			}
		}
		return AppState{Text: s.Text, Todos: todos}
	}
}

// seed restores text and todos from a snapshot file.
func seed(f *snapshot.File, source dom.Source) Reducer {
	return func(s AppState) AppState {
		todos := append([]TodoItem(nil), s.Todos...)
		for _, item := range f.Todos {
			todos = append(todos, TodoItem{Component: makeTodo(TodoState{Text: item.Text, Checked: item.Checked}, source)})
		}
		return AppState{Text: f.Text, Todos: todos}
	}
}

func actions(in Intent) stream.Stream[Reducer] {
	return stream.Merge(
		stream.Map(in.NewTodo, func(dom.Event) Reducer { return addTodo(in.DOM) }),
		stream.Map(in.NewTodoText, updateText),
		stream.Map(in.ClearComplete, func(dom.Event) Reducer { return clearComplete() }),
	)
}

// model folds reducers over the initial state. Each reducer sees the
// transposed previous state. Components dropped by a step are released.
func model(action stream.Stream[Reducer]) stream.Stream[AppState] {
	initial := AppState{Text: ""}
	return stream.StartWith(
		stream.Scan(action, initial, func(prev AppState, r Reducer) AppState {
			next := r(Transpose(prev))
			releaseDropped(prev, next)
			return next
		}),
		initial,
	)
}

func releaseDropped(prev, next AppState) {
	kept := make(map[*TodoComponent]bool, len(next.Todos))
	for _, item := range next.Todos {
		kept[item.Component] = true
	}
	for _, item := range prev.Todos {
		if !kept[item.Component] {
			item.Component.Release()
		}
	}
}

func view(state stream.Stream[AppState]) stream.Stream[dom.Node] {
	return stream.Map(state, todosView)
}

func todosView(s AppState) dom.Node {
	children := []dom.Node{
		dom.Input(".new-todo-text", dom.Props{Key: "0", Type: dom.InputText, Value: s.Text}),
		dom.Button(".new-todo", "Add todo"),
		dom.Button(".clear-complete", "Clear complete"),
	}
	for _, item := range s.Todos {
		children = append(children, dom.Embed(item.Component.DOM))
	}
	return dom.Div(".todos", children...)
}

// TodoList wires the widget. The returned State stream is shared, so the
// host may observe it alongside the DOM driver without forking the fold.
func TodoList(src Sources) Sinks {
	in := intent(src.DOM)
	action := actions(in)
	if src.Seed != nil {
		action = stream.StartWith(action, seed(src.Seed, src.DOM))
	}
	state := stream.ShareReplay(model(action))
	return Sinks{
		DOM:   view(state),
		State: state,
	}
}

// Export converts a state into a snapshot file.
func Export(s AppState) snapshot.File {
	s = Transpose(s)
	f := snapshot.File{SchemaVersion: snapshot.SchemaVersion, Text: s.Text, Todos: []snapshot.Item{}}
	for _, item := range s.Todos {
		f.Todos = append(f.Todos, snapshot.Item{Text: item.State.Value.Text, Checked: item.State.Value.Checked})
	}
	return f
}
