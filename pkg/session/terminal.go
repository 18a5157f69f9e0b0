package session

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"webdesk/pkg/shell"
)

// LineKind tells input, output and error lines of a transcript apart.
type LineKind string

const (
	LineInput  LineKind = "input"
	LineOutput LineKind = "output"
	LineError  LineKind = "error"
)

// Line is one entry of a terminal transcript.
type Line struct {
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

// Transcript is the visible state of a terminal window.
type Transcript struct {
	WindowID string `json:"windowId"`
	Prompt   string `json:"prompt"`
	Cwd      string `json:"cwd"`
	Lines    []Line `json:"lines"`
	Busy     bool   `json:"busy"`
}

type terminal struct {
	session *shell.Session
	lines   []Line
	running int
}

func newTerminal(s *shell.Session) *terminal {
	return &terminal{session: s}
}

// terminal returns the shell session of a terminal window.
func (d *Desktop) terminal(id string) (*shell.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.terminals[id]
	if !ok {
		if _, err := d.wm.Get(id); err != nil {
			return nil, err
		}
		return nil, ErrNotTerminal
	}
	return t.session, nil
}

// deliver runs fn on the terminal of window id if it is still open.
func (d *Desktop) deliver(id string, fn func(t *terminal)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.terminals[id]; ok {
		fn(t)
	}
}

// Exec runs a command line in a terminal window and returns when the whole
// chain has finished. Output is appended to the window's transcript.
func (d *Desktop) Exec(ctx context.Context, id, line string) error {
	sess, err := d.terminal(id)
	if err != nil {
		return err
	}

	prompt := sess.Prompt()
	d.deliver(id, func(t *terminal) {
		t.lines = append(t.lines, Line{Kind: LineInput, Text: prompt + " " + line})
		t.running++
	})
	defer d.deliver(id, func(t *terminal) { t.running-- })

	return sess.Execute(ctx, line, func(o shell.Output) {
		d.deliver(id, func(t *terminal) {
			switch {
			case o.Clear:
				t.lines = nil
			case o.Text == "":
			case o.Failed:
				t.lines = append(t.lines, Line{Kind: LineError, Text: o.Text})
			default:
				t.lines = append(t.lines, Line{Kind: LineOutput, Text: o.Text})
			}
		})
	})
}

// Submit runs a command line in a terminal window in the background.
func (d *Desktop) Submit(id, line string) error {
	if _, err := d.terminal(id); err != nil {
		return err
	}
	d.submit(id, line)
	return nil
}

// submit starts a chain without touching d.mu.
func (d *Desktop) submit(id, line string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Exec(d.ctx, id, line); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Warn("terminal chain failed", zap.String("window", id), zap.Error(err))
		}
	}()
}

// Transcript returns the transcript of a terminal window.
func (d *Desktop) Transcript(id string) (Transcript, error) {
	sess, err := d.terminal(id)
	if err != nil {
		return Transcript{}, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.terminals[id]
	if !ok {
		return Transcript{}, ErrNotTerminal
	}
	return Transcript{
		WindowID: id,
		Prompt:   sess.Prompt(),
		Cwd:      sess.Cwd().String(),
		Lines:    append([]Line(nil), t.lines...),
		Busy:     t.running > 0,
	}, nil
}

// Complete performs tab completion in a terminal window.
func (d *Desktop) Complete(id, input string) (shell.Completion, error) {
	sess, err := d.terminal(id)
	if err != nil {
		return shell.Completion{}, err
	}
	return sess.Complete(input), nil
}

// HistoryPrev recalls the previous history entry of a terminal window.
func (d *Desktop) HistoryPrev(id string) (string, bool, error) {
	sess, err := d.terminal(id)
	if err != nil {
		return "", false, err
	}
	line, ok := sess.Prev()
	return line, ok, nil
}

// HistoryNext recalls the next history entry of a terminal window.
func (d *Desktop) HistoryNext(id string) (string, bool, error) {
	sess, err := d.terminal(id)
	if err != nil {
		return "", false, err
	}
	line, ok := sess.Next()
	return line, ok, nil
}
