package shell

import (
	"regexp"
	"strings"

	"webdesk/pkg/vfs"
)

// ExecutableHeader marks files produced by the simulated compiler.
const ExecutableHeader = "#!webdesk-exec\n"

var (
	pythonPrint = regexp.MustCompile(`print\(\s*[fF]?(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')\s*\)`)
	jsLog       = regexp.MustCompile("console\\.log\\(\\s*(?:\"((?:[^\"\\\\]|\\\\.)*)\"|'((?:[^'\\\\]|\\\\.)*)'|`((?:[^`\\\\]|\\\\.)*)`)\\s*\\)")
	coutStmt    = regexp.MustCompile(`(?:std::)?cout\s*<<([^;]*);`)
	cppLiteral  = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"|(?:std::)?endl`)
	cppMain     = regexp.MustCompile(`\bint\s+main\s*\(`)
)

var unescaper = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\"`, `"`, `\'`, "'", "\\`", "`", `\\`, `\`)

// literals returns the first non-empty submatch of every match of re.
func literals(re *regexp.Regexp, src string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(src, -1) {
		for _, g := range m[1:] {
			if g != "" {
				out = append(out, unescaper.Replace(g))
				break
			}
		}
		if len(m) > 1 && strings.Join(m[1:], "") == "" {
			out = append(out, "")
		}
	}
	return out
}

// builtinPython simulates running a Python script: the literal arguments of
// its print calls are printed.
func builtinPython(env *Env) Result {
	if len(env.Args) == 0 {
		return fail("python: missing script operand")
	}
	name := env.Args[0]
	src, err := env.FS.ReadFile(vfs.ResolvePath(name, env.Cwd))
	if err != nil {
		return fail("python: can't open file '%s': [Errno 2] %s", name, errText(err))
	}
	return text(strings.Join(literals(pythonPrint, src), "\n"))
}

// builtinNode simulates running a JavaScript file: the literal arguments of
// its console.log calls are printed.
func builtinNode(env *Env) Result {
	if len(env.Args) == 0 {
		return fail("node: missing script operand")
	}
	name := env.Args[0]
	src, err := env.FS.ReadFile(vfs.ResolvePath(name, env.Cwd))
	if err != nil {
		return fail("node: Error: Cannot find module '%s': %s", vfs.ResolvePath(name, env.Cwd), errText(err))
	}
	return text(strings.Join(literals(jsLog, src), "\n"))
}

// builtinGpp simulates compiling a C++ source into an executable file.
func builtinGpp(env *Env) Result {
	fs := newFlags(env.Name)
	outName := fs.StringP("output", "o", "a.out", "place the output into file")
	args, err := parseFlags(fs, env.Args)
	if err != nil {
		return fail("%v", err)
	}
	if len(args) == 0 {
		return fail("g++: fatal error: no input files")
	}

	src, err := env.FS.ReadFile(vfs.ResolvePath(args[0], env.Cwd))
	if err != nil {
		return fail("g++: error: %s: %s", args[0], errText(err))
	}
	if !cppMain.MatchString(src) {
		return fail("/usr/bin/ld: undefined reference to `main'\ncollect2: error: ld returned 1 exit status")
	}

	next, err := env.FS.WriteFile(vfs.ResolvePath(*outName, env.Cwd), ExecutableHeader+src)
	if err != nil {
		return fail("g++: error: cannot write '%s': %s", *outName, errText(err))
	}
	return Result{FS: next}
}

// runBinary prints what a compiled program writes to std::cout.
func runBinary(src string) string {
	var b strings.Builder
	for _, stmt := range coutStmt.FindAllStringSubmatch(src, -1) {
		for _, m := range cppLiteral.FindAllStringSubmatch(stmt[1], -1) {
			if m[1] == "" && strings.HasSuffix(m[0], "endl") {
				b.WriteString("\n")
				continue
			}
			b.WriteString(unescaper.Replace(m[1]))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// execCommand runs ./name style invocations: compiled programs, or Python
// and JavaScript files handed to their interpreters.
func execCommand() *Command {
	return &Command{
		Name:    "exec",
		Usage:   "./program [args...]",
		Summary: "run a program",
		Slow:    true,
		Run: func(env *Env) Result {
			name := env.Name
			content, err := env.FS.ReadFile(vfs.ResolvePath(name, env.Cwd))
			if err != nil {
				return fail("%s: %s", name, errText(err))
			}

			switch {
			case strings.HasPrefix(content, ExecutableHeader):
				return text(runBinary(strings.TrimPrefix(content, ExecutableHeader)))
			case vfs.Ext(name) == "py":
				return text(strings.Join(literals(pythonPrint, content), "\n"))
			case vfs.Ext(name) == "js":
				return text(strings.Join(literals(jsLog, content), "\n"))
			}
			return fail("%s: Permission denied", name)
		},
	}
}
