package dom

import "github.com/nibzard/todolist-go/internal/stream"

// Resolve flattens embedded child streams into plain trees.
//
// Every tree from s is held back until each of its embedded streams has
// produced a tree, then emitted with the placeholders filled in. Afterwards a
// new child tree re-emits the parent with the latest children. A new parent
// tree drops the previous children's subscriptions.
func Resolve(s stream.Stream[Node]) stream.Stream[Node] {
	return stream.New(func(next func(Node)) func() {
		var children []*stream.Subscription
		release := func() {
			for _, sub := range children {
				sub.Unsubscribe()
			}
			children = nil
		}

		parent := s.Subscribe(func(tree Node) {
			release()

			lives := collectLive(tree)
			if len(lives) == 0 {
				next(tree)
				return
			}

			values := make([]Node, len(lives))
			seen := make([]bool, len(lives))
			pending := len(lives)
			wiring := true
			emit := func() {
				if pending == 0 && !wiring {
					idx := 0
					next(fill(tree, values, &idx))
				}
			}

			for i, live := range lives {
				children = append(children, Resolve(live).Subscribe(func(child Node) {
					values[i] = child
					if !seen[i] {
						seen[i] = true
						pending--
					}
					emit()
				}))
			}
			wiring = false
			emit()
		})

		return func() {
			parent.Unsubscribe()
			release()
		}
	})
}

func collectLive(n Node) []stream.Stream[Node] {
	if n.Live != nil {
		return []stream.Stream[Node]{*n.Live}
	}
	var out []stream.Stream[Node]
	for _, c := range n.Children {
		out = append(out, collectLive(c)...)
	}
	return out
}

func fill(n Node, values []Node, idx *int) Node {
	if n.Live != nil {
		v := values[*idx]
		*idx++
		return v
	}
	if len(n.Children) == 0 {
		return n
	}
	children := make([]Node, len(n.Children))
	for i, c := range n.Children {
		children[i] = fill(c, values, idx)
	}
	n.Children = children
	return n
}
