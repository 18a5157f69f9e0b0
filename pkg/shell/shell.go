/*
Package shell implements the terminal command interpreter of the desktop.

Commands are pure functions over an Env (arguments, working directory, a
file system snapshot, the process table and the history) that return a
Result. They never modify a tree in place: a Session runs every command
inside Host.Transact, which hands out the canonical snapshot and installs
the tree the command produced.

Supported features:
  - A registry of built-in commands (ls, cat, cd, mkdir, grep, ...)
  - && chains, stopping after "command not found" (or after any error)
  - Output redirection into virtual files with > and >>
  - Glob expansion of unquoted arguments
  - Simulated python, node and g++ runners and ./name executables
  - Per-terminal history recall and tab completion
*/
package shell

import (
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"webdesk/pkg/logging"
	"webdesk/pkg/vfs"
)

// ChainPolicy decides when an && chain stops early.
type ChainPolicy string

const (
	// StopOnNotFound stops only after a "command not found" result.
	StopOnNotFound ChainPolicy = "not-found"
	// StopOnError stops after any command that reported an error.
	StopOnError ChainPolicy = "any-error"
)

// ErrUnknownPolicy is returned by ParseChainPolicy for unknown names.
var ErrUnknownPolicy = errors.New("shell: unknown chain policy")

// ParseChainPolicy converts a configuration value to a ChainPolicy.
func ParseChainPolicy(s string) (ChainPolicy, error) {
	switch ChainPolicy(s) {
	case "", StopOnNotFound:
		return StopOnNotFound, nil
	case StopOnError:
		return StopOnError, nil
	}
	return "", ErrUnknownPolicy
}

// Config configures an Interpreter.
type Config struct {
	Hostname    string
	Release     string
	ScriptDelay time.Duration
	ChainPolicy ChainPolicy
	Clock       func() time.Time
	Logger      *zap.Logger
}

func (c *Config) setDefaults() {
	if c.Hostname == "" {
		c.Hostname = "webdesk"
	}
	if c.Release == "" {
		c.Release = "1.0.0"
	}
	if c.ChainPolicy == "" {
		c.ChainPolicy = StopOnNotFound
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Logger == nil {
		c.Logger = logging.Named("shell")
	}
}

// Process is one row of the process table: an open window.
type Process struct {
	PID      int
	WindowID string
	AppID    string
	Title    string
	State    string
}

// Host owns the canonical file system and the windows a terminal can see.
type Host interface {
	// FileSystem returns the canonical tree.
	FileSystem() *vfs.Tree
	// Transact runs fn with the canonical tree and installs the tree fn
	// returns. It must not be called re-entrantly.
	Transact(fn func(t *vfs.Tree) (*vfs.Tree, error)) error
	// Processes returns the current process table.
	Processes() []Process
	// Kill closes the window behind pid and reports whether it existed.
	Kill(pid int) bool
}

// Env is the input of a command.
type Env struct {
	Name     string
	Args     []string
	Cwd      vfs.Path
	FS       *vfs.Tree
	User     string
	Hostname string
	History  []string
	Procs    []Process
	Now      time.Time

	interp *Interpreter
}

// Result is the output of a command.
type Result struct {
	Output    string
	NoNewline bool // Output is written to redirect targets verbatim
	FS        *vfs.Tree
	Cwd       vfs.Path
	Chdir     bool
	Clear     bool
	Kill      []int
	Failed    bool
	NotFound  bool
}

// RunFunc is the implementation of a command.
type RunFunc func(env *Env) Result

// Command describes a built-in command.
type Command struct {
	Name        string
	Usage       string
	Summary     string
	Description string
	Slow        bool // preceded by the simulated script delay
	Run         RunFunc
}

// Interpreter holds the command registry shared by all sessions.
type Interpreter struct {
	cfg      Config
	commands map[string]*Command
	exec     *Command
	started  time.Time
}

// New creates an Interpreter with the built-in commands registered.
func New(cfg Config) *Interpreter {
	cfg.setDefaults()
	i := &Interpreter{
		cfg:      cfg,
		commands: make(map[string]*Command),
		started:  cfg.Clock(),
	}
	for _, c := range builtins() {
		i.commands[c.Name] = c
	}
	i.exec = execCommand()
	return i
}

// Config returns the interpreter configuration.
func (i *Interpreter) Config() Config {
	return i.cfg
}

// Lookup returns the command registered under name.
func (i *Interpreter) Lookup(name string) (*Command, bool) {
	c, ok := i.commands[name]
	return c, ok
}

// Commands returns the registered commands sorted by name.
func (i *Interpreter) Commands() []*Command {
	out := make([]*Command, 0, len(i.commands))
	for _, c := range i.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

// resolve picks the command for a name. Names containing a slash run a
// simulated executable.
func (i *Interpreter) resolve(name string) (*Command, bool) {
	if strings.Contains(name, "/") {
		return i.exec, true
	}
	return i.Lookup(name)
}

// stops reports whether a chain stops after r.
func (i *Interpreter) stops(r Result) bool {
	if r.NotFound {
		return true
	}
	return i.cfg.ChainPolicy == StopOnError && r.Failed
}
