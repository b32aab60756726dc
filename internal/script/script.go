// Package script parses line-based event scripts and plays them against a
// DOM driver.
//
// Each non-blank line that does not start with '#' is one command:
//
//	click SEL[#N]
//	change SEL[#N] VALUE...
//	toggle SEL[#N]
//
// SEL is a selector as accepted by dom.Driver.Query; whitespace inside a
// selector is not supported. #N picks the N-th match (0-based) in document
// order and defaults to 0.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nibzard/todolist-go/internal/dom"
)

// Op is a script command.
type Op string

const (
	OpClick  Op = "click"
	OpChange Op = "change"
	OpToggle Op = "toggle"
)

// Step is one parsed script line.
type Step struct {
	Line     int
	Op       Op
	Selector string
	Index    int
	Value    string
}

func (s Step) String() string {
	target := s.Selector
	if s.Index > 0 {
		target = fmt.Sprintf("%s#%d", s.Selector, s.Index)
	}
	if s.Op == OpChange {
		return fmt.Sprintf("%s %s %s", s.Op, target, s.Value)
	}
	return fmt.Sprintf("%s %s", s.Op, target)
}

// ParseError reports a malformed script line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrNoMatch is returned when a step's selector matches nothing.
var ErrNoMatch = errors.New("no matching node")

// Parse reads a script.
func Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		step, err := parseLine(text)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		step.Line = line
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

func parseLine(text string) (Step, error) {
	fields := strings.Fields(text)
	op := Op(strings.ToLower(fields[0]))
	switch op {
	case OpClick, OpToggle:
		if len(fields) != 2 {
			return Step{}, fmt.Errorf("%s takes exactly one selector", op)
		}
	case OpChange:
		if len(fields) < 2 {
			return Step{}, fmt.Errorf("change needs a selector")
		}
	default:
		return Step{}, fmt.Errorf("unknown command %q", fields[0])
	}

	sel, index, err := parseTarget(fields[1])
	if err != nil {
		return Step{}, err
	}
	step := Step{Op: op, Selector: sel, Index: index}
	if op == OpChange {
		// Keep the value's inner spacing as typed.
		rest := strings.TrimSpace(text[len(fields[0]):])
		step.Value = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
	}
	return step, nil
}

func parseTarget(s string) (string, int, error) {
	sel, idx, found := strings.Cut(s, "#")
	if sel == "" {
		return "", 0, fmt.Errorf("empty selector")
	}
	if !found {
		return sel, 0, nil
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return "", 0, fmt.Errorf("invalid index %q", idx)
	}
	return sel, n, nil
}

// Event resolves the step against the driver's current tree.
func (s Step) Event(d *dom.Driver) (dom.Event, error) {
	targets := d.Query(s.Selector)
	if s.Index >= len(targets) {
		return dom.Event{}, fmt.Errorf("line %d: %s: %w (%d matches)", s.Line, s, ErrNoMatch, len(targets))
	}
	target := targets[s.Index]
	ev := dom.Event{Path: target.Path}
	switch s.Op {
	case OpClick:
		ev.Type = dom.EventClick
	case OpChange:
		ev.Type = dom.EventChange
		ev.Value = s.Value
		ev.Checked = target.Node.Props.Checked
	case OpToggle:
		ev.Type = dom.EventChange
		ev.Value = target.Node.Props.Value
		ev.Checked = !target.Node.Props.Checked
	}
	return ev, nil
}

// Play dispatches every step in order. It stops at the first step that
// cannot be resolved or dispatched.
func Play(d *dom.Driver, steps []Step) error {
	for _, step := range steps {
		ev, err := step.Event(d)
		if err != nil {
			return err
		}
		if _, err := d.Dispatch(ev); err != nil {
			return fmt.Errorf("line %d: %w", step.Line, err)
		}
	}
	return nil
}
