// Package dom is a terminal stand-in for a browser DOM driver.
//
// Components describe their UI as Node trees. A Driver subscribes to the
// component's tree stream, keeps the latest rendered tree and turns events
// addressed at a node into values on the streams returned by
// Source.Select(...).Events(...).
package dom

import (
	"strings"

	"github.com/nibzard/todolist-go/internal/stream"
)

// Element tags understood by the renderer.
const (
	TagDiv    = "div"
	TagInput  = "input"
	TagButton = "button"
)

// Input types.
const (
	InputText     = "text"
	InputCheckbox = "checkbox"
)

// Props holds element attributes.
type Props struct {
	Key     string
	Type    string
	Value   string
	Checked bool
}

// Node is one element of a declared UI tree.
//
// A node with Live set is a placeholder for a child component's tree stream;
// Resolve replaces it with the stream's latest tree.
type Node struct {
	Tag      string
	Classes  []string
	Props    Props
	Text     string
	Children []Node
	Scope    string
	Live     *stream.Stream[Node]
}

// H builds an element. sel is a class selector such as ".todo" or ".a.b".
func H(tag, sel string, props Props, children ...Node) Node {
	return Node{Tag: tag, Classes: parseClasses(sel), Props: props, Children: children}
}

// Div builds a div element.
func Div(sel string, children ...Node) Node {
	return H(TagDiv, sel, Props{}, children...)
}

// Label builds a div holding only text.
func Label(text string) Node {
	return Node{Tag: TagDiv, Text: text}
}

// Input builds an input element.
func Input(sel string, props Props) Node {
	return H(TagInput, sel, props)
}

// Button builds a button with a text label.
func Button(sel, text string) Node {
	n := H(TagButton, sel, Props{})
	n.Text = text
	return n
}

// Embed places a child component's tree stream inside a parent tree.
func Embed(s stream.Stream[Node]) Node {
	return Node{Live: &s}
}

// HasClass reports whether the node carries class c.
func (n Node) HasClass(c string) bool {
	for _, have := range n.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// Focusable reports whether the node takes keyboard focus.
func (n Node) Focusable() bool {
	return n.Tag == TagInput || n.Tag == TagButton
}

// Shallow returns the node without its children.
func (n Node) Shallow() Node {
	n.Children = nil
	n.Live = nil
	return n
}

// Walk visits n and its descendants depth-first. path holds the child indices
// leading from n to the visited node. Returning false skips the subtree.
func Walk(n Node, visit func(path []int, n Node) bool) {
	walk(n, nil, visit)
}

func walk(n Node, path []int, visit func([]int, Node) bool) {
	if !visit(path, n) {
		return
	}
	for i, c := range n.Children {
		walk(c, append(path[:len(path):len(path)], i), visit)
	}
}

// At returns the chain of nodes from root to the node at path.
func At(root Node, path []int) ([]Node, bool) {
	chain := []Node{root}
	cur := root
	for _, i := range path {
		if i < 0 || i >= len(cur.Children) {
			return nil, false
		}
		cur = cur.Children[i]
		chain = append(chain, cur)
	}
	return chain, true
}

func parseClasses(sel string) []string {
	var out []string
	for _, part := range strings.Split(sel, ".") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
