// Package ui hosts the todo list widget in a terminal.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/dom"
	"github.com/nibzard/todolist-go/internal/snapshot"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	altScreen   bool
	theme       *Theme
	programOpts []tea.ProgramOption
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.altScreen = enabled
	}
}

// WithTheme overrides the configured theme.
func WithTheme(th Theme) TUIOption {
	return func(c *tuiConfig) {
		c.theme = &th
	}
}

// WithProgramOptions passes extra options to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) TUIOption {
	return func(c *tuiConfig) {
		c.programOpts = append(c.programOpts, opts...)
	}
}

// RunTUI runs the interactive widget until the user quits and returns the
// final state as a snapshot.
func RunTUI(ctx context.Context, cfg *config.Config, seed *snapshot.File, logger *log.Logger, opts ...TUIOption) (snapshot.File, error) {
	c := &tuiConfig{altScreen: cfg.AltScreen}
	for _, opt := range opts {
		opt(c)
	}

	if len(c.programOpts) == 0 && !IsTTY(os.Stdout) {
		return snapshot.File{}, fmt.Errorf("tui requires a TTY")
	}

	theme := NewTheme(cfg.Theme)
	if c.theme != nil {
		theme = *c.theme
	}

	session := NewSession(seed, logger)
	defer session.Close()

	model := newTUIModel(session, theme, logger)
	if err := runProgram(ctx, model, c); err != nil {
		return snapshot.File{}, err
	}
	return session.Export(), nil
}

func runProgram(ctx context.Context, model *tuiModel, c *tuiConfig) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	opts = append(opts, c.programOpts...)
	program := tea.NewProgram(model, opts...)
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.err != nil {
		return m.err
	}
	return nil
}

type tuiModel struct {
	session *Session
	theme   Theme
	logger  *log.Logger

	focus  int
	buffer string
	err    error
}

func newTUIModel(session *Session, theme Theme, logger *log.Logger) *tuiModel {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &tuiModel{session: session, theme: theme, logger: logger}
	m.enter()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.blur()
		return m, tea.Quit
	case "tab", "down":
		m.move(1)
		return m, nil
	case "shift+tab", "up":
		m.move(-1)
		return m, nil
	}

	target, ok := m.focused()
	if !ok {
		return m, nil
	}
	if isTextInput(target.Node) {
		m.edit(key, target)
	} else {
		m.activate(key, target)
	}
	if m.err != nil {
		return m, tea.Quit
	}
	return m, nil
}

// edit applies a key to the focused text input.
func (m *tuiModel) edit(key tea.KeyMsg, target dom.Target) {
	switch key.Type {
	case tea.KeyEnter:
		m.dispatch(dom.Event{Type: dom.EventChange, Value: m.buffer, Path: target.Path})
	case tea.KeyBackspace:
		if r := []rune(m.buffer); len(r) > 0 {
			m.buffer = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.buffer += " "
	case tea.KeyRunes:
		m.buffer += string(key.Runes)
	}
}

// activate applies a key to a focused button or checkbox.
func (m *tuiModel) activate(key tea.KeyMsg, target dom.Target) {
	if key.Type != tea.KeyEnter && key.Type != tea.KeySpace {
		return
	}
	if target.Node.Tag == dom.TagButton {
		m.dispatch(dom.Event{Type: dom.EventClick, Path: target.Path})
		return
	}
	m.dispatch(dom.Event{
		Type:    dom.EventChange,
		Value:   target.Node.Props.Value,
		Checked: !target.Node.Props.Checked,
		Path:    target.Path,
	})
}

func (m *tuiModel) dispatch(ev dom.Event) {
	if _, err := m.session.Driver().Dispatch(ev); err != nil {
		m.logger.Error("dispatch failed", "event", ev.Type, "err", err)
		m.err = err
		return
	}
	m.clamp()
}

// move shifts focus, committing any pending text edit first.
func (m *tuiModel) move(delta int) {
	m.blur()
	n := len(m.session.Driver().Focusables())
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
	m.enter()
}

// blur emits change when the focused text input was edited.
func (m *tuiModel) blur() {
	target, ok := m.focused()
	if !ok || !isTextInput(target.Node) || m.buffer == target.Node.Props.Value {
		return
	}
	m.dispatch(dom.Event{Type: dom.EventChange, Value: m.buffer, Path: target.Path})
}

// enter loads the edit buffer of a newly focused text input.
func (m *tuiModel) enter() {
	m.buffer = ""
	if target, ok := m.focused(); ok && isTextInput(target.Node) {
		m.buffer = target.Node.Props.Value
	}
}

func (m *tuiModel) clamp() {
	n := len(m.session.Driver().Focusables())
	if m.focus >= n {
		m.focus = max(n-1, 0)
		m.enter()
	}
}

func (m *tuiModel) focused() (dom.Target, bool) {
	targets := m.session.Driver().Focusables()
	if m.focus < 0 || m.focus >= len(targets) {
		return dom.Target{}, false
	}
	return targets[m.focus], true
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.theme)

	tree, ok := m.session.Tree()
	if !ok {
		b.WriteString("Loading...\n")
		return b.String()
	}

	rs := renderState{}
	if target, ok := m.focused(); ok {
		rs.focus = target.Path
		rs.editing = isTextInput(target.Node)
		rs.buffer = m.buffer
	}
	b.WriteString(render(tree, nil, m.theme, rs))
	b.WriteString("\n\n")
	export := m.session.Export()
	writeFooter(&b, m.theme, export.Remaining())
	return b.String()
}

func writeTitle(b *strings.Builder, th Theme) {
	b.WriteString(th.Title.Render("Todo list") + "\n\n")
}

func writeFooter(b *strings.Builder, th Theme, remaining int) {
	b.WriteString(th.Muted.Render(fmt.Sprintf("%d remaining | tab: focus | enter/space: activate | esc: quit", remaining)))
	b.WriteString("\n")
}

func isTextInput(n dom.Node) bool {
	return n.Tag == dom.TagInput && n.Props.Type != dom.InputCheckbox
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
