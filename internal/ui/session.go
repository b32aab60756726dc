package ui

import (
	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/dom"
	"github.com/nibzard/todolist-go/internal/snapshot"
	"github.com/nibzard/todolist-go/internal/stream"
	"github.com/nibzard/todolist-go/internal/todolist"
)

// Session runs one todo list widget against a DOM driver. Both the
// interactive program and headless replay drive the widget through it.
type Session struct {
	driver *dom.Driver
	state  *stream.Latest[todolist.AppState]
}

// NewSession wires the widget to a fresh driver. seed may be nil.
func NewSession(seed *snapshot.File, logger *log.Logger) *Session {
	d := dom.NewDriver(logger)
	if logger != nil {
		d.OnRender(func(dom.Node) {
			logger.Debug("render", "count", d.Renders(), "listeners", d.Listeners())
		})
	}
	sinks := todolist.TodoList(todolist.Sources{DOM: d.Source(), Seed: seed})
	d.Run(sinks.DOM)
	s := &Session{
		driver: d,
		state:  stream.NewLatest(sinks.State, todolist.AppState{}),
	}
	if seed != nil && logger != nil {
		logger.Info("seeded", "todos", len(seed.Todos))
	}
	return s
}

// Driver returns the session's DOM driver.
func (s *Session) Driver() *dom.Driver {
	return s.driver
}

// Tree returns the last rendered tree.
func (s *Session) Tree() (dom.Node, bool) {
	return s.driver.Tree()
}

// State returns the latest widget state.
func (s *Session) State() todolist.AppState {
	st, _ := s.state.Get()
	return st
}

// Export returns the latest state as a snapshot file.
func (s *Session) Export() snapshot.File {
	return todolist.Export(s.State())
}

// Close releases the state cache and the driver.
func (s *Session) Close() {
	s.state.Close()
	s.driver.Close()
}
