package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webdesk/pkg/apps"
	"webdesk/pkg/logging"
	"webdesk/pkg/session"
	"webdesk/pkg/tui"
	"webdesk/pkg/wm"
)

func termCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "term",
		Short: "Open an interactive terminal on a desktop",
		Long: `Open a terminal window on a user's desktop and drive it from this
terminal. Tab completes paths, up and down walk the history, ctrl+c quits.
Changes to the file system are saved on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withTerminal(ctx, user, func(d *session.Desktop, id string) error {
				title := fmt.Sprintf("Terminal - %s", user)
				return tui.Run(ctx, d, id, title, tea.WithAltScreen())
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "guest", "desktop owner")
	return cmd
}

func execCmd(a *app) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command line",
		Short: "Run one command line on a desktop",
		Long: `Run a command line, && chains included, in a fresh terminal window of a
user's desktop and print its output. Errors go to stderr and make the
command fail.`,
		Example: `  webdesk exec -u alice -- 'mkdir notes && echo hi > notes/a.txt'
  webdesk exec -- ls -l /Documents`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			line := strings.Join(args, " ")
			return a.withTerminal(ctx, user, func(d *session.Desktop, id string) error {
				if err := d.Exec(ctx, id, line); err != nil {
					return err
				}
				tr, err := d.Transcript(id)
				if err != nil {
					return err
				}
				return printTranscript(cmd, tr)
			})
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "guest", "desktop owner")
	return cmd
}

var errCommandFailed = errors.New("command failed")

// printTranscript writes output lines to stdout and error lines to stderr.
func printTranscript(cmd *cobra.Command, tr session.Transcript) error {
	failed := false
	for _, l := range tr.Lines {
		text := strings.TrimSuffix(l.Text, "\n")
		switch l.Kind {
		case session.LineInput:
		case session.LineError:
			failed = true
			fmt.Fprintln(cmd.ErrOrStderr(), text)
		default:
			fmt.Fprintln(cmd.OutOrStdout(), text)
		}
	}
	if failed {
		return errCommandFailed
	}
	return nil
}

// withTerminal opens a terminal window on the desktop of user, runs fn and
// closes the window again before the desktops are saved.
func (a *app) withTerminal(ctx context.Context, user string, fn func(d *session.Desktop, id string) error) error {
	hub, closeHub, err := a.openHub(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeHub(); err != nil {
			logging.L().Error("close hub", zap.Error(err))
		}
	}()

	d, err := hub.Get(ctx, user)
	if err != nil {
		return err
	}
	id, err := d.OpenApp(apps.Terminal, wm.OpenOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = d.Close(id) }()

	return fn(d, id)
}
