package dom

import (
	"errors"
	"testing"

	"github.com/nibzard/todolist-go/internal/stream"
)

func TestDispatchMatchesSelectors(t *testing.T) {
	d := NewDriver(nil)
	d.Run(stream.Just(Div(".app",
		Input(".name", Props{Type: InputText}),
		Div(".row", Button(".go", "Go")),
	)))

	var names []string
	sub1 := d.Source().Select(".name").Events(EventChange).Subscribe(func(ev Event) {
		names = append(names, ev.Value)
	})
	defer sub1.Unsubscribe()
	clicks := 0
	sub2 := d.Source().Select(".row").Events(EventClick).Subscribe(func(Event) { clicks++ })
	defer sub2.Unsubscribe()

	if _, err := d.Dispatch(Event{Type: EventChange, Path: []int{0}, Value: "x"}); err != nil {
		t.Fatalf("Dispatch change: %v", err)
	}
	// Clicks on the button bubble to .row.
	n, err := d.Dispatch(Event{Type: EventClick, Path: []int{1, 0}})
	if err != nil {
		t.Fatalf("Dispatch click: %v", err)
	}

	if len(names) != 1 || names[0] != "x" {
		t.Errorf("names: got %v, want [x]", names)
	}
	if clicks != 1 || n != 1 {
		t.Errorf("clicks: got %d (delivered %d), want 1", clicks, n)
	}
}

func TestDispatchErrors(t *testing.T) {
	d := NewDriver(nil)
	if _, err := d.Dispatch(Event{Type: EventClick}); !errors.Is(err, ErrNoTree) {
		t.Errorf("before render: got %v, want ErrNoTree", err)
	}
	d.Run(stream.Just(Div(".app")))
	if _, err := d.Dispatch(Event{Type: EventClick, Path: []int{3}}); err == nil {
		t.Error("bad path: expected error")
	}
}

func TestDescendantSelect(t *testing.T) {
	d := NewDriver(nil)
	d.Run(stream.Just(Div(".app",
		Div(".left", Button(".b", "L")),
		Div(".right", Button(".b", "R")),
	)))

	var got []string
	sub := d.Source().Select(".right .b").Events(EventClick).Subscribe(func(ev Event) {
		got = append(got, ev.Target.Text)
	})
	defer sub.Unsubscribe()

	for _, tgt := range d.Query(".b") {
		if _, err := d.Dispatch(Event{Type: EventClick, Path: tgt.Path}); err != nil {
			t.Fatal(err)
		}
	}
	if len(got) != 1 || got[0] != "R" {
		t.Errorf("got %v, want [R]", got)
	}
}

type counterSources struct{ DOM Source }

func (s counterSources) Isolate(scope string) counterSources {
	return counterSources{DOM: s.DOM.Isolate(scope)}
}

type counterSinks struct {
	DOM    stream.Stream[Node]
	Clicks *int
}

func (s counterSinks) Isolate(scope string) counterSinks {
	return counterSinks{DOM: IsolateSink(s.DOM, scope), Clicks: s.Clicks}
}

func counter(src counterSources) counterSinks {
	clicks := new(int)
	src.DOM.Select(".inc").Events(EventClick).Subscribe(func(Event) { *clicks++ })
	return counterSinks{DOM: stream.Just(Div(".counter", Button(".inc", "+"))), Clicks: clicks}
}

func TestIsolateKeepsSiblingsApart(t *testing.T) {
	d := NewDriver(nil)
	a := Isolate(counter, "")(counterSources{DOM: d.Source()})
	b := Isolate(counter, "")(counterSources{DOM: d.Source()})

	parentClicks := 0
	sub := d.Source().Select(".inc").Events(EventClick).Subscribe(func(Event) { parentClicks++ })
	defer sub.Unsubscribe()

	d.Run(stream.Just(Div(".app", Embed(a.DOM), Embed(b.DOM))))

	buttons := d.Query(".inc")
	if len(buttons) != 2 {
		t.Fatalf("buttons: got %d, want 2", len(buttons))
	}
	if _, err := d.Dispatch(Event{Type: EventClick, Path: buttons[1].Path}); err != nil {
		t.Fatal(err)
	}

	if *a.Clicks != 0 || *b.Clicks != 1 {
		t.Errorf("clicks: a=%d b=%d, want a=0 b=1", *a.Clicks, *b.Clicks)
	}
	if parentClicks != 0 {
		t.Errorf("parent saw %d clicks inside isolated children", parentClicks)
	}
	if tree, _ := d.Tree(); tree.Children[0].Scope == tree.Children[1].Scope {
		t.Error("siblings share a scope")
	}
}

func TestResolveReemitsOnChildChange(t *testing.T) {
	child := stream.NewSubject[Node]()
	shared := stream.ShareReplay(child.Stream())
	keep := shared.Subscribe(func(Node) {})
	defer keep.Unsubscribe()
	child.Next(Label("one"))

	trees, sub := stream.Collect(Resolve(stream.Just(Div(".app", Embed(shared)))))
	defer sub.Unsubscribe()
	child.Next(Label("two"))

	if len(*trees) != 2 {
		t.Fatalf("trees: got %d, want 2", len(*trees))
	}
	if got := (*trees)[0].Children[0].Text; got != "one" {
		t.Errorf("first tree child: got %q, want one", got)
	}
	if got := (*trees)[1].Children[0].Text; got != "two" {
		t.Errorf("second tree child: got %q, want two", got)
	}
}

func TestResolveWaitsForEveryChild(t *testing.T) {
	late := stream.NewSubject[Node]()
	trees, sub := stream.Collect(Resolve(stream.Just(Div(".app",
		Embed(stream.Just(Label("ready"))),
		Embed(late.Stream()),
	))))
	defer sub.Unsubscribe()

	if len(*trees) != 0 {
		t.Fatalf("emitted before all children resolved: %d", len(*trees))
	}
	late.Next(Label("late"))
	if len(*trees) != 1 {
		t.Fatalf("trees: got %d, want 1", len(*trees))
	}
	got := (*trees)[0]
	if got.Children[0].Text != "ready" || got.Children[1].Text != "late" {
		t.Errorf("children: got %q, %q", got.Children[0].Text, got.Children[1].Text)
	}
}

func TestFocusables(t *testing.T) {
	d := NewDriver(nil)
	d.Run(stream.Just(Div(".app",
		Input(".t", Props{Type: InputText}),
		Label("x"),
		Div(".row", Button(".b", "B")),
	)))
	got := d.Focusables()
	if len(got) != 2 {
		t.Fatalf("focusables: got %d, want 2", len(got))
	}
	if got[1].Node.Tag != TagButton || len(got[1].Path) != 2 {
		t.Errorf("second focusable: got %+v", got[1])
	}
}
