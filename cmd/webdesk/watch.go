package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webdesk/pkg/logging"
)

var errNoInbox = errors.New("no inbox directory: pass --dir or set inbox.dir")

func watchCmd(a *app) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import files from a host directory into a desktop",
		Long: `Watch a host directory and upload every file created or written there
into a folder of a user's desktop. Name collisions get a numeric suffix.
Desktops are saved when the command stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Inbox.Dir == "" {
				return errNoInbox
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub, closeHub, err := a.openHub(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeHub(); err != nil {
					logging.L().Error("close hub", zap.Error(err))
				}
			}()
			return a.runInbox(ctx, hub, a.cfg.Inbox.User, a.cfg.Inbox.Dir, a.cfg.Inbox.Target, remove)
		},
	}

	flags := cmd.Flags()
	flags.String("user", "", "desktop owner (default guest)")
	flags.String("dir", "", "host directory to watch")
	flags.String("target", "", "virtual folder receiving the files (default /Documents)")
	flags.BoolVar(&remove, "remove", false, "delete host files once imported")
	configKey(flags, "user", "inbox.user")
	configKey(flags, "dir", "inbox.dir")
	configKey(flags, "target", "inbox.target")
	return cmd
}
