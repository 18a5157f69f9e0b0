package shell

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// builtins returns the built-in command table.
func builtins() []*Command {
	return []*Command{
		{Name: "help", Usage: "help", Summary: "list available commands", Run: builtinHelp},
		{Name: "ls", Usage: "ls [-a] [-l] [path...]", Summary: "list directory contents", Run: builtinLs,
			Description: "Lists the entries of each folder, folders first. Folders end with /.\n" +
				"-a  include entries whose names start with a dot\n" +
				"-l  one entry per line with type and size"},
		{Name: "cat", Usage: "cat file...", Summary: "print file contents", Run: builtinCat},
		{Name: "echo", Usage: "echo [-n] [text...]", Summary: "display a line of text", Run: builtinEcho,
			Description: "Joins its arguments with spaces.\n" +
				"-n  do not add a trailing newline when redirecting into a file"},
		{Name: "clear", Usage: "clear", Summary: "clear the terminal screen", Run: builtinClear},
		{Name: "date", Usage: "date", Summary: "print the current date and time", Run: builtinDate},
		{Name: "whoami", Usage: "whoami", Summary: "print the current user", Run: builtinWhoami},
		{Name: "pwd", Usage: "pwd", Summary: "print the working directory", Run: builtinPwd},
		{Name: "cd", Usage: "cd [dir]", Summary: "change the working directory", Run: builtinCd,
			Description: "Without an argument, or with ~, changes to the root folder."},
		{Name: "mkdir", Usage: "mkdir [-p] dir...", Summary: "make directories", Run: builtinMkdir,
			Description: "-p  create missing parents and ignore existing folders"},
		{Name: "touch", Usage: "touch file...", Summary: "create empty files", Run: builtinTouch,
			Description: "Existing files are left unchanged."},
		{Name: "rm", Usage: "rm path...", Summary: "remove files or empty directories", Run: builtinRm},
		{Name: "mv", Usage: "mv source... dest", Summary: "move or rename files", Run: builtinMv,
			Description: "If dest is an existing folder the sources are moved into it."},
		{Name: "cp", Usage: "cp source... dest", Summary: "copy files and directories", Run: builtinCp,
			Description: "If dest is an existing folder the sources are copied into it."},
		{Name: "grep", Usage: "grep [-i] [-n] [-v] [-c] pattern file...", Summary: "print lines matching a pattern", Run: builtinGrep,
			Description: "The pattern is a regular expression.\n" +
				"-i  ignore case\n" +
				"-n  prefix lines with their line number\n" +
				"-v  select non-matching lines\n" +
				"-c  print only the number of matching lines"},
		{Name: "head", Usage: "head [-n N] file...", Summary: "output the first part of files", Run: builtinHead},
		{Name: "tail", Usage: "tail [-n N] file...", Summary: "output the last part of files", Run: builtinTail},
		{Name: "history", Usage: "history", Summary: "show command history", Run: builtinHistory},
		{Name: "man", Usage: "man command", Summary: "show the manual page of a command", Run: builtinMan},
		{Name: "ps", Usage: "ps", Summary: "list running applications", Run: builtinPs},
		{Name: "kill", Usage: "kill pid...", Summary: "close an application window", Run: builtinKill},
		{Name: "uname", Usage: "uname [-a]", Summary: "print system information", Run: builtinUname},
		{Name: "info", Usage: "info", Summary: "show the system banner", Run: builtinInfo},
		{Name: "python", Usage: "python script.py", Summary: "run a Python script", Slow: true, Run: builtinPython},
		{Name: "node", Usage: "node script.js", Summary: "run a JavaScript file", Slow: true, Run: builtinNode},
		{Name: "g++", Usage: "g++ source.cpp [-o output]", Summary: "compile a C++ program", Slow: true, Run: builtinGpp,
			Description: "Writes an executable (a.out by default) that can be run with ./name."},
	}
}

// newFlags returns a flag set that reports errors instead of printing them.
func newFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *pflag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %v", fs.Name(), err)
	}
	return fs.Args(), nil
}
