package tui

import (
	"context"
	"errors"
	"strconv"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webdesk/pkg/apps"
	"webdesk/pkg/iconlayout"
	"webdesk/pkg/session"
	"webdesk/pkg/shell"
	"webdesk/pkg/store"
	"webdesk/pkg/wm"
)

func newTerminal(t *testing.T) (*session.Desktop, string, *Model) {
	t.Helper()
	cfg := session.Config{Window: wm.DefaultConfig(), IconSize: iconlayout.DefaultCellSize}
	d := session.New("guest", store.DefaultSnapshot(), shell.New(shell.Config{}), cfg)
	t.Cleanup(d.Shutdown)

	id, err := d.OpenApp(apps.Terminal, wm.OpenOptions{})
	require.NoError(t, err)
	return d, id, New(context.Background(), d, id, "Terminal")
}

// enter types line, presses enter and runs the resulting command
// synchronously.
func enter(t *testing.T, m *Model, line string) tea.Cmd {
	t.Helper()
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.Busy())

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	done, ok := batch[0]().(execDoneMsg)
	require.True(t, ok)

	_, next := m.Update(done)
	assert.False(t, m.Busy())
	return next
}

func TestModelInitialization(t *testing.T) {
	_, id, m := newTerminal(t)

	assert.Equal(t, id, m.Transcript().WindowID)
	assert.Equal(t, "guest@webdesk:/$ ", m.input.Prompt)
	assert.False(t, m.Closed())
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Terminal")
}

func TestModelExec(t *testing.T) {
	_, _, m := newTerminal(t)

	enter(t, m, "echo hello")
	lines := m.Transcript().Lines
	require.Len(t, lines, 2)
	assert.Equal(t, session.LineInput, lines[0].Kind)
	assert.Equal(t, "guest@webdesk:/$ echo hello", lines[0].Text)
	assert.Contains(t, lines[1].Text, "hello")
	assert.Empty(t, m.Input())
	assert.Contains(t, m.View(), "hello")

	enter(t, m, "frobnicate")
	lines = m.Transcript().Lines
	assert.Equal(t, session.LineError, lines[len(lines)-1].Kind)
	assert.Contains(t, lines[len(lines)-1].Text, "command not found")
}

func TestModelCdUpdatesPrompt(t *testing.T) {
	_, _, m := newTerminal(t)

	enter(t, m, "cd Documents")
	assert.Equal(t, "/Documents", m.Transcript().Cwd)
	assert.Equal(t, "guest@webdesk:/Documents$ ", m.input.Prompt)
}

func TestModelEmptyLine(t *testing.T) {
	_, _, m := newTerminal(t)

	m.input.SetValue("   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, m.Busy())
	assert.Empty(t, m.Transcript().Lines)
}

func TestModelCompletion(t *testing.T) {
	_, _, m := newTerminal(t)

	m.input.SetValue("cd Doc")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "cd Documents/", m.Input())
}

func TestModelHistory(t *testing.T) {
	_, _, m := newTerminal(t)

	enter(t, m, "echo one")
	enter(t, m, "echo two")

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "echo two", m.Input())
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "echo one", m.Input())
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "echo two", m.Input())
}

func TestModelQuitsWhenWindowCloses(t *testing.T) {
	d, id, m := newTerminal(t)
	win, err := d.Window(id)
	require.NoError(t, err)

	cmd := enter(t, m, "kill "+strconv.Itoa(win.PID))
	assert.True(t, m.Closed())
	assert.Equal(t, "terminal closed", m.Status())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelExecErrors(t *testing.T) {
	_, _, m := newTerminal(t)

	m.Update(execDoneMsg{err: context.Canceled})
	assert.Equal(t, "interrupted", m.Status())

	m.Update(execDoneMsg{err: errors.New("boom")})
	assert.Equal(t, "boom", m.Status())
}

func TestModelKeys(t *testing.T) {
	_, _, m := newTerminal(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, m.viewport.Width)
	assert.Equal(t, 37, m.viewport.Height)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ls")})
	assert.Equal(t, "ls", m.Input())
}

func TestNewOnMissingWindow(t *testing.T) {
	d, _, _ := newTerminal(t)

	m := New(context.Background(), d, "win-missing", "Terminal")
	assert.True(t, m.Closed())
	require.NotNil(t, m.Init())
	assert.IsType(t, tea.QuitMsg{}, m.Init()())
}
