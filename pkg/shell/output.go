package shell

import (
	"errors"
	"fmt"
	"strings"

	"webdesk/pkg/vfs"
)

// output accumulates the lines a command prints.
type output struct {
	lines  []string
	failed bool
}

func (o *output) println(s string) {
	o.lines = append(o.lines, s)
}

func (o *output) printf(format string, args ...any) {
	o.lines = append(o.lines, fmt.Sprintf(format, args...))
}

func (o *output) errorf(format string, args ...any) {
	o.failed = true
	o.printf(format, args...)
}

func (o *output) result() Result {
	return Result{Output: strings.Join(o.lines, "\n"), Failed: o.failed}
}

// withTree returns the accumulated output together with a new tree.
func (o *output) withTree(t *vfs.Tree) Result {
	r := o.result()
	r.FS = t
	return r
}

func fail(format string, args ...any) Result {
	return Result{Output: fmt.Sprintf(format, args...), Failed: true}
}

func text(s string) Result {
	return Result{Output: s}
}

// errText renders a file system error the way the terminal prints it.
func errText(err error) string {
	var pe *vfs.PathError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}

// splitLines splits file content into lines, ignoring one trailing newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}
