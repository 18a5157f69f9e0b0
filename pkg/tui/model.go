// Package tui is a Bubble Tea front end for a desktop terminal window.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"webdesk/pkg/session"
	"webdesk/pkg/shell"
	"webdesk/pkg/wm"
)

// refreshInterval is how often the transcript is polled while a chain runs.
const refreshInterval = 100 * time.Millisecond

// Backend is the part of session.Desktop the front end drives.
type Backend interface {
	Exec(ctx context.Context, id, line string) error
	Transcript(id string) (session.Transcript, error)
	Complete(id, input string) (shell.Completion, error)
	HistoryPrev(id string) (string, bool, error)
	HistoryNext(id string) (string, bool, error)
}

type execDoneMsg struct{ err error }

type tickMsg time.Time

// Model renders the transcript of one terminal window and forwards the
// prompt to its shell session.
type Model struct {
	ctx     context.Context
	backend Backend
	id      string
	title   string

	input    textinput.Model
	viewport viewport.Model

	transcript session.Transcript
	busy       bool
	status     string
	closed     bool
}

// New returns a model bound to the terminal window id.
func New(ctx context.Context, b Backend, id, title string) *Model {
	in := textinput.New()
	in.Focus()
	in.CharLimit = 4096

	m := &Model{
		ctx:      ctx,
		backend:  b,
		id:       id,
		title:    title,
		input:    in,
		viewport: viewport.New(80, 20),
	}
	m.refresh()
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	if m.closed {
		return tea.Quit
	}
	return textinput.Blink
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case execDoneMsg:
		m.busy = false
		switch {
		case msg.err == nil:
		case errors.Is(msg.err, context.Canceled):
			m.status = "interrupted"
		default:
			m.status = msg.err.Error()
		}
		m.refresh()
		if m.closed {
			return m, tea.Quit
		}
		return m, nil

	case tickMsg:
		if !m.busy {
			return m, nil
		}
		m.refresh()
		if m.closed {
			return m, tea.Quit
		}
		return m, tick()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		return m, tea.Quit

	case tea.KeyEnter:
		if m.busy {
			return m, nil
		}
		line := m.input.Value()
		m.input.Reset()
		m.status = ""
		if strings.TrimSpace(line) == "" {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.exec(line), tick())

	case tea.KeyTab:
		c, err := m.backend.Complete(m.id, m.input.Value())
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.input.SetValue(c.Line)
		m.input.CursorEnd()
		m.status = strings.Join(c.Matches, "  ")
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		step := m.backend.HistoryPrev
		if msg.Type == tea.KeyDown {
			step = m.backend.HistoryNext
		}
		line, ok, err := step(m.id)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if ok {
			m.input.SetValue(line)
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) exec(line string) tea.Cmd {
	ctx, b, id := m.ctx, m.backend, m.id
	return func() tea.Msg {
		return execDoneMsg{err: b.Exec(ctx, id, line)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// refresh reloads the transcript. A window that no longer exists marks the
// model closed.
func (m *Model) refresh() {
	tr, err := m.backend.Transcript(m.id)
	if err != nil {
		if errors.Is(err, wm.ErrWindowNotFound) {
			m.closed = true
			m.status = "terminal closed"
			return
		}
		m.status = err.Error()
		return
	}
	m.transcript = tr
	m.input.Prompt = tr.Prompt + " "
	m.viewport.SetContent(render(tr.Lines))
	m.viewport.GotoBottom()
}

func (m *Model) resize(width, height int) {
	// header, prompt and status line
	body := height - 3
	if body < 1 {
		body = 1
	}
	m.viewport.Width = width
	m.viewport.Height = body
	m.input.Width = width - lipgloss.Width(m.input.Prompt) - 1
	m.viewport.GotoBottom()
}

// render formats transcript lines for display.
func render(lines []session.Line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		text := strings.TrimSuffix(l.Text, "\n")
		switch l.Kind {
		case session.LineInput:
			b.WriteString(InputStyle.Render(text))
		case session.LineError:
			b.WriteString(ErrorStyle.Render(text))
		default:
			b.WriteString(OutputStyle.Render(text))
		}
	}
	return b.String()
}

// View implements tea.Model
func (m *Model) View() string {
	header := TitleStyle.Render(m.title)
	status := m.status
	if m.busy {
		status = "running..."
	}
	return header + "\n" +
		m.viewport.View() + "\n" +
		m.input.View() + "\n" +
		StatusStyle.Render(status)
}

// Closed reports whether the terminal window has gone away.
func (m *Model) Closed() bool {
	return m.closed
}

// Busy reports whether a command line is running.
func (m *Model) Busy() bool {
	return m.busy
}

// Status returns the text of the status line.
func (m *Model) Status() string {
	return m.status
}

// Input returns the current prompt contents.
func (m *Model) Input() string {
	return m.input.Value()
}

// Transcript returns the last transcript loaded.
func (m *Model) Transcript() session.Transcript {
	return m.transcript
}

// Run drives the terminal window id until the user quits or the window is
// closed.
func Run(ctx context.Context, b Backend, id, title string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(ctx, b, id, title), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
