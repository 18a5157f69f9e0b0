package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"webdesk/pkg/metrics"
	"webdesk/pkg/parser"
	"webdesk/pkg/vfs"
)

// Output is what one sub-command of a line produced.
type Output struct {
	Command string
	Text    string
	Clear   bool
	Failed  bool
}

// Session is the state of one terminal: working directory, history and
// the history recall cursor.
type Session struct {
	interp *Interpreter
	host   Host
	user   string

	exec sync.Mutex // serializes Execute

	mu      sync.Mutex
	cwd     vfs.Path
	history []string
	cursor  int
}

// NewSession starts a session at the root folder.
func (i *Interpreter) NewSession(host Host, user string) *Session {
	return &Session{
		interp: i,
		host:   host,
		user:   user,
		cwd:    vfs.Root,
	}
}

// Cwd returns the working directory.
func (s *Session) Cwd() vfs.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd.Join()
}

// SetCwd changes the working directory without checking it exists.
func (s *Session) SetCwd(p vfs.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cwd = p.Join()
}

// Prompt returns the prompt shown before input, e.g. "guest@webdesk:/Documents$".
func (s *Session) Prompt() string {
	return fmt.Sprintf("%s@%s:%s$", s.user, s.interp.cfg.Hostname, s.Cwd())
}

// History returns a copy of the command history.
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...)
}

// Prev moves the recall cursor one entry back (the up arrow).
func (s *Session) Prev() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return "", false
	}
	if s.cursor > 0 {
		s.cursor--
	}
	return s.history[s.cursor], true
}

// Next moves the recall cursor one entry forward (the down arrow). Moving
// past the newest entry yields an empty line.
func (s *Session) Next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.history)-1 {
		s.cursor = len(s.history)
		return "", len(s.history) > 0
	}
	s.cursor++
	return s.history[s.cursor], true
}

func (s *Session) record(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line != "" {
		s.history = append(s.history, line)
	}
	s.cursor = len(s.history)
}

func (s *Session) state() (vfs.Path, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd.Join(), append([]string(nil), s.history...)
}

// Execute runs a command line. Sub-commands of an && chain run strictly in
// order and emit is called after each one. The chain stops early according
// to the chain policy. Execute returns an error only when ctx is done or
// the host fails to install a snapshot.
func (s *Session) Execute(ctx context.Context, line string, emit func(Output)) error {
	s.exec.Lock()
	defer s.exec.Unlock()

	line = strings.TrimSpace(line)
	s.record(line)

	list, err := parser.ParseString(line)
	if err != nil {
		emit(Output{Command: line, Text: err.Error(), Failed: true})
		return nil
	}

	for _, node := range list.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := s.run(ctx, node)
		if err != nil {
			return err
		}
		emit(Output{Command: node.Raw, Text: res.Output, Clear: res.Clear, Failed: res.Failed})
		if s.interp.stops(res) {
			break
		}
	}
	return nil
}

func (s *Session) run(ctx context.Context, node *parser.CommandNode) (Result, error) {
	start := time.Now()
	cmd, ok := s.interp.resolve(node.Name)
	if !ok {
		metrics.RecordCommand("unknown", true, time.Since(start))
		return Result{Output: node.Name + ": command not found", Failed: true, NotFound: true}, nil
	}

	if cmd.Slow {
		if err := sleep(ctx, s.interp.cfg.ScriptDelay); err != nil {
			return Result{}, err
		}
	}

	procs := s.host.Processes()
	cwd, history := s.state()

	var res Result
	err := s.host.Transact(func(t *vfs.Tree) (*vfs.Tree, error) {
		env := &Env{
			Name:     node.Name,
			Args:     expand(t, node, cwd),
			Cwd:      cwd,
			FS:       t,
			User:     s.user,
			Hostname: s.interp.cfg.Hostname,
			History:  history,
			Procs:    procs,
			Now:      s.interp.cfg.Clock(),
			interp:   s.interp,
		}
		res = cmd.Run(env)

		next := t
		if res.FS != nil {
			next = res.FS
		}
		if r := node.Output(); r != nil && !res.Failed {
			written, err := redirect(next, vfs.ResolvePath(r.File, cwd), res, r.Append)
			if err != nil {
				res = fail("%s: %s: %s", node.Name, r.File, errText(err))
			} else {
				next = written
				res.Output = ""
			}
		}
		return next, nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("shell: %s: %w", node.Name, err)
	}

	if res.Chdir {
		s.SetCwd(res.Cwd)
	}
	for _, pid := range res.Kill {
		s.host.Kill(pid)
	}

	metrics.RecordCommand(cmd.Name, res.Failed, time.Since(start))
	s.interp.cfg.Logger.Debug("command executed",
		zap.String("user", s.user),
		zap.String("command", cmd.Name),
		zap.Bool("failed", res.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// expand turns the words of a command into arguments, expanding unquoted
// glob patterns against the tree.
func expand(t *vfs.Tree, node *parser.CommandNode, cwd vfs.Path) []string {
	args := make([]string, 0, len(node.Words))
	for _, w := range node.Words {
		if w.Quoted {
			args = append(args, w.Value)
			continue
		}
		args = append(args, t.Expand(w.Value, cwd)...)
	}
	return args
}

// redirect writes the output of a command into the file at p.
func redirect(t *vfs.Tree, p vfs.Path, res Result, appendTo bool) (*vfs.Tree, error) {
	content := res.Output
	if !res.NoNewline && content != "" {
		content += "\n"
	}
	if appendTo {
		if existing, err := t.ReadFile(p); err == nil {
			if existing != "" && !strings.HasSuffix(existing, "\n") {
				existing += "\n"
			}
			content = existing + content
		}
	}
	return t.WriteFile(p, content)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
