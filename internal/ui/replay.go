package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist-go/internal/script"
	"github.com/nibzard/todolist-go/internal/snapshot"
)

// Replay plays steps against a fresh widget without a terminal, writes the
// final tree to w and returns the final state.
func Replay(w io.Writer, seed *snapshot.File, steps []script.Step, logger *log.Logger) (snapshot.File, error) {
	session := NewSession(seed, logger)
	defer session.Close()

	if err := script.Play(session.Driver(), steps); err != nil {
		return snapshot.File{}, err
	}
	if logger != nil {
		logger.Info("replay finished", "steps", len(steps), "renders", session.Driver().Renders())
	}

	tree, ok := session.Tree()
	if !ok {
		return snapshot.File{}, fmt.Errorf("replay: nothing rendered")
	}
	if _, err := fmt.Fprintln(w, Render(tree, PlainTheme())); err != nil {
		return snapshot.File{}, err
	}
	return session.Export(), nil
}
