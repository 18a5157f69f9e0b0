package shell

import (
	"errors"
	"fmt"
	"strings"

	"webdesk/pkg/vfs"
)

// builtinLs lists folder entries.
func builtinLs(env *Env) Result {
	fs := newFlags(env.Name)
	all := fs.BoolP("all", "a", false, "show hidden entries")
	long := fs.BoolP("long", "l", false, "use a long listing format")
	args, err := parseFlags(fs, env.Args)
	if err != nil {
		return fail("%v", err)
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	var out output
	var files []string
	var dirs []string
	for _, arg := range args {
		n, err := env.FS.Lookup(vfs.ResolvePath(arg, env.Cwd))
		if err != nil {
			out.errorf("ls: cannot access '%s': %s", arg, errText(err))
			continue
		}
		if n.IsDir() {
			dirs = append(dirs, arg)
		} else if *long {
			files = append(files, longEntry(vfs.Entry{Name: arg, Kind: n.Kind(), Size: n.Size()}, env.User))
		} else {
			files = append(files, arg)
		}
	}

	if len(files) > 0 {
		out.println(joinEntries(files, *long))
	}
	for _, arg := range dirs {
		entries, _ := env.FS.List(vfs.ResolvePath(arg, env.Cwd))
		var names []string
		for _, e := range entries {
			if !*all && strings.HasPrefix(e.Name, ".") {
				continue
			}
			switch {
			case *long:
				names = append(names, longEntry(e, env.User))
			case e.IsDir():
				names = append(names, e.Name+"/")
			default:
				names = append(names, e.Name)
			}
		}
		if len(args) > 1 {
			out.println(arg + ":")
		}
		if len(names) > 0 {
			out.println(joinEntries(names, *long))
		}
	}
	return out.result()
}

func joinEntries(names []string, long bool) string {
	if long {
		return strings.Join(names, "\n")
	}
	return strings.Join(names, "  ")
}

func longEntry(e vfs.Entry, user string) string {
	mode, name := "-rw-r--r--", e.Name
	if e.IsDir() {
		mode, name = "drwxr-xr-x", e.Name+"/"
	}
	return fmt.Sprintf("%s %-8s %6d %s", mode, user, e.Size, name)
}

// builtinCat prints file contents.
func builtinCat(env *Env) Result {
	if len(env.Args) == 0 {
		return fail("cat: missing operand")
	}

	var out output
	for _, arg := range env.Args {
		content, err := env.FS.ReadFile(vfs.ResolvePath(arg, env.Cwd))
		if err != nil {
			out.errorf("cat: %s: %s", arg, errText(err))
			continue
		}
		out.println(content)
	}
	r := out.result()
	r.NoNewline = true
	return r
}

// builtinPwd prints the working directory.
func builtinPwd(env *Env) Result {
	return text(env.Cwd.String())
}

// builtinCd changes the working directory. No argument or ~ goes to the root.
func builtinCd(env *Env) Result {
	target := "/"
	if len(env.Args) > 0 && env.Args[0] != "~" {
		target = env.Args[0]
	}
	if len(env.Args) > 1 {
		return fail("cd: too many arguments")
	}

	p := vfs.ResolvePath(target, env.Cwd)
	n, err := env.FS.Lookup(p)
	if err != nil {
		return fail("cd: %s: %s", target, errText(err))
	}
	if !n.IsDir() {
		return fail("cd: %s: %s", target, errText(vfs.ErrNotDir))
	}
	return Result{Cwd: p, Chdir: true}
}

// builtinMkdir creates folders.
func builtinMkdir(env *Env) Result {
	fs := newFlags(env.Name)
	parents := fs.BoolP("parents", "p", false, "make parent directories as needed")
	args, err := parseFlags(fs, env.Args)
	if err != nil {
		return fail("%v", err)
	}
	if len(args) == 0 {
		return fail("mkdir: missing operand")
	}

	var out output
	tree := env.FS
	for _, arg := range args {
		p := vfs.ResolvePath(arg, env.Cwd)
		next, err := tree.Mutate(func(tx *vfs.Txn) error {
			if !*parents {
				return tx.CreateFolder(p)
			}
			for i := 1; i <= len(p); i++ {
				n, err := tx.Lookup(p[:i])
				if err == nil && n.IsDir() {
					continue
				}
				if err := tx.CreateFolder(p[:i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			out.errorf("mkdir: cannot create directory '%s': %s", arg, errText(err))
			continue
		}
		tree = next
	}
	return out.withTree(tree)
}

// builtinTouch creates empty files. Existing files are left untouched.
func builtinTouch(env *Env) Result {
	if len(env.Args) == 0 {
		return fail("touch: missing file operand")
	}

	var out output
	tree := env.FS
	for _, arg := range env.Args {
		p := vfs.ResolvePath(arg, env.Cwd)
		if tree.Exists(p) {
			continue
		}
		next, err := tree.CreateFile(p, "")
		if err != nil {
			out.errorf("touch: cannot touch '%s': %s", arg, errText(err))
			continue
		}
		tree = next
	}
	return out.withTree(tree)
}

// builtinRm deletes files and empty folders.
func builtinRm(env *Env) Result {
	if len(env.Args) == 0 {
		return fail("rm: missing operand")
	}

	var out output
	tree := env.FS
	for _, arg := range env.Args {
		next, err := tree.Delete(vfs.ResolvePath(arg, env.Cwd))
		if err != nil {
			out.errorf("rm: cannot remove '%s': %s", arg, errText(err))
			continue
		}
		tree = next
	}
	return out.withTree(tree)
}

// builtinMv moves or renames.
func builtinMv(env *Env) Result {
	return transfer(env, (*vfs.Tree).Move, "move")
}

// builtinCp copies.
func builtinCp(env *Env) Result {
	return transfer(env, (*vfs.Tree).Copy, "copy")
}

func transfer(env *Env, op func(*vfs.Tree, vfs.Path, vfs.Path) (*vfs.Tree, error), verb string) Result {
	switch len(env.Args) {
	case 0:
		return fail("%s: missing file operand", env.Name)
	case 1:
		return fail("%s: missing destination file operand after '%s'", env.Name, env.Args[0])
	}

	sources, target := env.Args[:len(env.Args)-1], env.Args[len(env.Args)-1]
	dst := vfs.ResolvePath(target, env.Cwd)
	if len(sources) > 1 {
		if n, err := env.FS.Lookup(dst); err != nil || !n.IsDir() {
			return fail("%s: target '%s' is not a directory", env.Name, target)
		}
	}

	var out output
	tree := env.FS
	for _, src := range sources {
		next, err := op(tree, vfs.ResolvePath(src, env.Cwd), dst)
		switch {
		case errors.Is(err, vfs.ErrSameFile):
			out.errorf("%s: '%s' and '%s' are the same file", env.Name, src, target)
		case errors.Is(err, vfs.ErrInvalid):
			out.errorf("%s: cannot %s '%s' to a subdirectory of itself", env.Name, verb, src)
		case err != nil:
			out.errorf("%s: cannot %s '%s': %s", env.Name, verb, src, errText(err))
		default:
			tree = next
		}
	}
	return out.withTree(tree)
}
