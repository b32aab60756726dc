package dom

import (
	"strings"

	"github.com/nibzard/todolist-go/internal/stream"
)

// Event names dispatched by the terminal front end.
const (
	EventClick  = "click"
	EventChange = "change"
)

// Event is an interaction aimed at one node of the rendered tree.
type Event struct {
	Type    string
	Value   string
	Checked bool
	Path    []int
	Target  Node
}

// selector matches a node by tag and classes, e.g. "input.checked".
type selector struct {
	tag     string
	classes []string
}

func parseSelector(s string) selector {
	sel := selector{}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		sel.tag = s[:i]
		sel.classes = parseClasses(s[i:])
	} else {
		sel.tag = s
	}
	return sel
}

func (s selector) matches(n Node) bool {
	if s.tag != "" && s.tag != n.Tag {
		return false
	}
	for _, c := range s.classes {
		if !n.HasClass(c) {
			return false
		}
	}
	return true
}

// Source is the read side of the driver for one component. Selections
// narrow it; Events turns it into a stream.
type Source struct {
	d     *Driver
	scope string
	sels  []selector
}

// Select narrows the source to descendants matching sel. Whitespace in sel
// separates descendant steps.
func (s Source) Select(sel string) Source {
	next := Source{d: s.d, scope: s.scope, sels: append([]selector(nil), s.sels...)}
	for _, part := range strings.Fields(sel) {
		next.sels = append(next.sels, parseSelector(part))
	}
	return next
}

// Events streams events of the given type whose target is, or is inside, a
// node matched by the selection.
func (s Source) Events(name string) stream.Stream[Event] {
	return stream.New(func(next func(Event)) func() {
		if s.d == nil {
			return nil
		}
		return s.d.listen(listener{scope: s.scope, sels: s.sels, event: name, fn: next})
	})
}

// Isolate returns a source that only sees nodes inside scope.
func (s Source) Isolate(scope string) Source {
	return Source{d: s.d, scope: scope}
}

// Scope reports the isolation scope of the source; empty for the root.
func (s Source) Scope() string {
	return s.scope
}
