package shell

import (
	"regexp"
	"strconv"
	"strings"

	"webdesk/pkg/vfs"
)

// builtinEcho joins its arguments with spaces.
func builtinEcho(env *Env) Result {
	args := env.Args
	noNewline := false
	for len(args) > 0 && args[0] == "-n" {
		noNewline = true
		args = args[1:]
	}
	return Result{Output: strings.Join(args, " "), NoNewline: noNewline}
}

// grepFlags holds the options of grep.
type grepFlags struct {
	ignoreCase bool
	lineNum    bool
	invert     bool
	count      bool
}

// builtinGrep prints the lines of files matching a regular expression.
func builtinGrep(env *Env) Result {
	var flags grepFlags
	fs := newFlags(env.Name)
	fs.BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "ignore case distinctions")
	fs.BoolVarP(&flags.lineNum, "line-number", "n", false, "show line numbers")
	fs.BoolVarP(&flags.invert, "invert-match", "v", false, "select non-matching lines")
	fs.BoolVarP(&flags.count, "count", "c", false, "print only a count of matching lines")
	args, err := parseFlags(fs, env.Args)
	if err != nil {
		return fail("%v", err)
	}
	if len(args) < 2 {
		return fail("Usage: grep [-i] [-n] [-v] [-c] pattern file...")
	}

	pattern := args[0]
	if flags.ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fail("grep: invalid pattern: %v", err)
	}

	var out output
	files := args[1:]
	for _, name := range files {
		content, err := env.FS.ReadFile(vfs.ResolvePath(name, env.Cwd))
		if err != nil {
			out.errorf("grep: %s: %s", name, errText(err))
			continue
		}

		prefix := ""
		if len(files) > 1 {
			prefix = name + ":"
		}
		matches := 0
		for i, line := range splitLines(content) {
			if re.MatchString(line) == flags.invert {
				continue
			}
			matches++
			if flags.count {
				continue
			}
			if flags.lineNum {
				out.printf("%s%d:%s", prefix, i+1, line)
			} else {
				out.println(prefix + line)
			}
		}
		if flags.count {
			out.println(prefix + strconv.Itoa(matches))
		}
	}
	return out.result()
}

// builtinHead prints the first lines of files.
func builtinHead(env *Env) Result {
	return slice(env, func(lines []string, n int) []string {
		if n < len(lines) {
			return lines[:n]
		}
		return lines
	})
}

// builtinTail prints the last lines of files.
func builtinTail(env *Env) Result {
	return slice(env, func(lines []string, n int) []string {
		if n < len(lines) {
			return lines[len(lines)-n:]
		}
		return lines
	})
}

func slice(env *Env, pick func(lines []string, n int) []string) Result {
	fs := newFlags(env.Name)
	n := fs.IntP("lines", "n", 10, "number of lines")
	args, err := parseFlags(fs, env.Args)
	if err != nil {
		return fail("%v", err)
	}
	if *n < 0 {
		return fail("%s: invalid number of lines: '%d'", env.Name, *n)
	}
	if len(args) == 0 {
		return fail("%s: missing operand", env.Name)
	}

	var out output
	for i, name := range args {
		content, err := env.FS.ReadFile(vfs.ResolvePath(name, env.Cwd))
		if err != nil {
			out.errorf("%s: cannot open '%s' for reading: %s", env.Name, name, errText(err))
			continue
		}
		if len(args) > 1 {
			if i > 0 {
				out.println("")
			}
			out.printf("==> %s <==", name)
		}
		for _, line := range pick(splitLines(content), *n) {
			out.println(line)
		}
	}
	return out.result()
}
