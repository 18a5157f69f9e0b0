package shell

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// builtinHelp lists the commands.
func builtinHelp(env *Env) Result {
	var out output
	out.println("Available commands:")
	for _, c := range env.interp.Commands() {
		out.printf("  %-8s %s", c.Name, c.Summary)
	}
	out.println("Run a program with ./name. Type 'man <command>' for details.")
	return out.result()
}

// builtinClear clears the terminal transcript.
func builtinClear(*Env) Result {
	return Result{Clear: true}
}

// builtinDate prints the current time.
func builtinDate(env *Env) Result {
	return text(env.Now.Format("Mon Jan _2 15:04:05 MST 2006"))
}

// builtinWhoami prints the session user.
func builtinWhoami(env *Env) Result {
	return text(env.User)
}

// builtinHistory prints the numbered history.
func builtinHistory(env *Env) Result {
	var out output
	for i, line := range env.History {
		out.printf("%5d  %s", i+1, line)
	}
	return out.result()
}

// builtinMan prints the manual page of a command.
func builtinMan(env *Env) Result {
	if len(env.Args) == 0 {
		return fail("What manual page do you want?")
	}

	var out output
	for i, name := range env.Args {
		c, ok := env.interp.Lookup(name)
		if !ok {
			out.errorf("No manual entry for %s", name)
			continue
		}
		if i > 0 {
			out.println("")
		}
		out.println("NAME")
		out.printf("    %s - %s", c.Name, c.Summary)
		out.println("")
		out.println("SYNOPSIS")
		out.println("    " + c.Usage)
		if c.Description != "" {
			out.println("")
			out.println("DESCRIPTION")
			for _, line := range strings.Split(c.Description, "\n") {
				out.println("    " + line)
			}
		}
	}
	return out.result()
}

// builtinPs prints the process table, one row per open window.
func builtinPs(env *Env) Result {
	var out output
	out.printf("%5s %-14s %-10s %s", "PID", "APP", "STATE", "TITLE")
	for _, p := range env.Procs {
		out.printf("%5d %-14s %-10s %s", p.PID, p.AppID, p.State, p.Title)
	}
	return out.result()
}

// builtinKill closes the windows behind the given process ids.
func builtinKill(env *Env) Result {
	if len(env.Args) == 0 {
		return fail("kill: usage: kill pid ...")
	}

	live := make(map[int]bool, len(env.Procs))
	for _, p := range env.Procs {
		live[p.PID] = true
	}

	var out output
	var pids []int
	for _, arg := range env.Args {
		pid, err := strconv.Atoi(arg)
		if err != nil {
			out.errorf("kill: %s: arguments must be process or job IDs", arg)
			continue
		}
		if !live[pid] {
			out.errorf("kill: (%d) - No such process", pid)
			continue
		}
		pids = append(pids, pid)
	}
	r := out.result()
	r.Kill = pids
	return r
}

// builtinUname prints system information.
func builtinUname(env *Env) Result {
	fs := newFlags(env.Name)
	all := fs.BoolP("all", "a", false, "print all information")
	if _, err := parseFlags(fs, env.Args); err != nil {
		return fail("%v", err)
	}
	if !*all {
		return text("WebDesk")
	}
	cfg := env.interp.cfg
	return text(fmt.Sprintf("WebDesk %s %s #1 %s %s/%s",
		env.Hostname, cfg.Release, runtime.Version(), runtime.GOOS, runtime.GOARCH))
}

// builtinInfo prints the system banner.
func builtinInfo(env *Env) Result {
	uptime := env.Now.Sub(env.interp.started).Truncate(time.Second)
	return text(strings.Join([]string{
		"      *       ",
		"     ***      ",
		"    *****     WebDesk v" + env.interp.cfg.Release,
		"   *******    ------------------",
		"    *****     OS: WebDesk",
		"     ***      Kernel: " + runtime.Version(),
		"      *       Shell: wdsh",
		"              Uptime: " + uptime.String(),
	}, "\n"))
}
