package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/stream"
)

// ErrNoTree is returned when an event is dispatched before anything rendered.
var ErrNoTree = errors.New("nothing rendered yet")

type listener struct {
	scope string
	sels  []selector
	event string
	fn    func(Event)
}

// Target addresses one node of the rendered tree.
type Target struct {
	Path []int
	Node Node
}

// Driver owns the rendered tree and the event listeners registered through
// its sources. It is not safe for concurrent use.
type Driver struct {
	logger    *log.Logger
	listeners map[int]listener
	order     []int
	nextID    int
	tree      Node
	rendered  bool
	renders   int
	sink      *stream.Subscription
	onRender  func(Node)
}

// NewDriver returns a driver with no sink attached. A nil logger discards
// output.
func NewDriver(logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{
		logger:    logger,
		listeners: make(map[int]listener),
	}
}

// Source returns the root source, which sees every node outside isolated
// scopes.
func (d *Driver) Source() Source {
	return Source{d: d}
}

// OnRender registers fn to be called with every new tree.
func (d *Driver) OnRender(fn func(Node)) {
	d.onRender = fn
}

// Run subscribes to the component's tree stream. Embedded child streams are
// resolved before the tree is stored.
func (d *Driver) Run(sink stream.Stream[Node]) {
	d.sink.Unsubscribe()
	d.sink = Resolve(sink).Subscribe(func(n Node) {
		d.tree = n
		d.rendered = true
		d.renders++
		if d.onRender != nil {
			d.onRender(n)
		}
	})
}

// Close detaches the sink. Listeners held by the sink's subscription chain
// are released with it.
func (d *Driver) Close() {
	d.sink.Unsubscribe()
	d.sink = nil
}

// Tree returns the most recent tree and whether one has been rendered.
func (d *Driver) Tree() (Node, bool) {
	return d.tree, d.rendered
}

// Renders counts the trees received from the sink.
func (d *Driver) Renders() int {
	return d.renders
}

// Listeners reports the number of registered event listeners.
func (d *Driver) Listeners() int {
	return len(d.listeners)
}

func (d *Driver) listen(l listener) func() {
	id := d.nextID
	d.nextID++
	d.listeners[id] = l
	d.order = append(d.order, id)
	return func() {
		delete(d.listeners, id)
		for i, v := range d.order {
			if v == id {
				d.order = append(d.order[:i:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch delivers ev to every listener whose selection matches the node at
// ev.Path. It returns the number of listeners notified.
func (d *Driver) Dispatch(ev Event) (int, error) {
	if !d.rendered {
		return 0, ErrNoTree
	}
	chain, ok := At(d.tree, ev.Path)
	if !ok {
		return 0, fmt.Errorf("dispatch %s: no node at path %v", ev.Type, ev.Path)
	}
	ev.Path = append([]int(nil), ev.Path...)
	ev.Target = chain[len(chain)-1].Shallow()

	scope, start := scopeOf(chain)
	ids := append([]int(nil), d.order...)
	delivered := 0
	for _, id := range ids {
		l, ok := d.listeners[id]
		if !ok || l.event != ev.Type || l.scope != scope {
			continue
		}
		if !matchChain(chain[start:], l.sels) {
			continue
		}
		delivered++
		l.fn(ev)
	}
	d.logger.Debug("dispatch", "event", ev.Type, "path", ev.Path, "scope", scope, "listeners", delivered)
	return delivered, nil
}

// Query returns every node matching sel in document order, ignoring scopes.
func (d *Driver) Query(sel string) []Target {
	if !d.rendered {
		return nil
	}
	var sels []selector
	for _, part := range strings.Fields(sel) {
		sels = append(sels, parseSelector(part))
	}
	var out []Target
	Walk(d.tree, func(path []int, n Node) bool {
		chain, _ := At(d.tree, path)
		if len(sels) > 0 && sels[len(sels)-1].matches(n) && matchAncestors(chain[:len(chain)-1], sels[:len(sels)-1]) {
			out = append(out, Target{Path: append([]int(nil), path...), Node: n.Shallow()})
		}
		return true
	})
	return out
}

// Focusables returns the inputs and buttons of the tree in document order.
func (d *Driver) Focusables() []Target {
	if !d.rendered {
		return nil
	}
	var out []Target
	Walk(d.tree, func(path []int, n Node) bool {
		if n.Focusable() {
			out = append(out, Target{Path: append([]int(nil), path...), Node: n.Shallow()})
		}
		return true
	})
	return out
}

// scopeOf returns the innermost scope along chain and the index of the node
// that opened it.
func scopeOf(chain []Node) (string, int) {
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Scope != "" {
			return chain[i].Scope, i
		}
	}
	return "", 0
}

// matchChain reports whether the target (last node of region) or one of its
// ancestors in region matches the final selector, with the earlier selectors
// matching further ancestors in order.
func matchChain(region []Node, sels []selector) bool {
	if len(sels) == 0 {
		return true
	}
	last := sels[len(sels)-1]
	for j := len(region) - 1; j >= 0; j-- {
		if last.matches(region[j]) && matchAncestors(region[:j], sels[:len(sels)-1]) {
			return true
		}
	}
	return false
}

func matchAncestors(ancestors []Node, sels []selector) bool {
	k := len(sels) - 1
	for j := len(ancestors) - 1; j >= 0 && k >= 0; j-- {
		if sels[k].matches(ancestors[j]) {
			k--
		}
	}
	return k < 0
}
