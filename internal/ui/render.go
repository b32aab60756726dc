package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/dom"
)

const inputWidth = 28

// Theme holds the renderer styles.
type Theme struct {
	Title   lipgloss.Style
	Focused lipgloss.Style
	Blurred lipgloss.Style
	Muted   lipgloss.Style
	Done    lipgloss.Style
}

// NewTheme builds styles from the configured colors.
func NewTheme(tc config.ThemeConfig) Theme {
	accent := lipgloss.Color(tc.Accent)
	muted := lipgloss.Color(tc.Muted)
	done := lipgloss.Color(tc.Done)
	return Theme{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Focused: lipgloss.NewStyle().Bold(true).Foreground(accent),
		Blurred: lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Done:    lipgloss.NewStyle().Strikethrough(true).Foreground(done),
	}
}

// PlainTheme renders without any styling.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{Title: s, Focused: s, Blurred: s, Muted: s, Done: s}
}

// renderState is the focus information the renderer needs.
type renderState struct {
	focus   []int
	editing bool
	buffer  string
}

// Render draws a resolved tree. Nothing is focused.
func Render(n dom.Node, th Theme) string {
	return render(n, nil, th, renderState{})
}

func render(n dom.Node, path []int, th Theme, rs renderState) string {
	focused := rs.focus != nil && slices.Equal(path, rs.focus)
	switch n.Tag {
	case dom.TagInput:
		return renderInput(n, th, focused, rs)
	case dom.TagButton:
		label := "[ " + n.Text + " ]"
		if focused {
			return th.Focused.Render(label)
		}
		return th.Blurred.Render(label)
	}

	if len(n.Children) == 0 {
		return n.Text
	}

	parts := make([]string, 0, len(n.Children))
	row := isRow(n)
	done := row && hasCheckedBox(n)
	for i, c := range n.Children {
		part := render(c, append(path[:len(path):len(path)], i), th, rs)
		if done && c.Tag == dom.TagDiv {
			part = th.Done.Render(part)
		}
		parts = append(parts, part)
	}
	if row {
		return strings.Join(parts, " ")
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderInput(n dom.Node, th Theme, focused bool, rs renderState) string {
	style := th.Blurred
	if focused {
		style = th.Focused
	}
	if n.Props.Type == dom.InputCheckbox {
		box := "[ ]"
		if n.Props.Checked {
			box = "[x]"
		}
		return style.Render(box)
	}

	value := n.Props.Value
	if focused && rs.editing {
		value = rs.buffer + "_"
	}
	field := lipgloss.NewStyle().Width(inputWidth).Render(value)
	if value == "" && !focused {
		field = th.Muted.Width(inputWidth).Render("new todo")
	}
	return style.Render("> ") + field
}

// isRow reports whether n lays its children out on one line: none of them
// has children of its own.
func isRow(n dom.Node) bool {
	for _, c := range n.Children {
		if len(c.Children) > 0 {
			return false
		}
	}
	return true
}

func hasCheckedBox(n dom.Node) bool {
	for _, c := range n.Children {
		if c.Tag == dom.TagInput && c.Props.Type == dom.InputCheckbox && c.Props.Checked {
			return true
		}
	}
	return false
}
