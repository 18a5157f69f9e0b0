package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webdesk/pkg/inbox"
	"webdesk/pkg/logging"
	"webdesk/pkg/server"
	"webdesk/pkg/session"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the desktop API and front end",
		Long: `Serve the HTTP API under /api/v1 together with /health, /ready and
/metrics. When server.static_dir is set the front-end bundle is served at /.
When inbox.dir is set, files dropped there are imported into the desktop
of inbox.user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address (default :8080)")
	flags.String("static", "", "directory of the front-end bundle")
	flags.String("inbox", "", "host directory imported into the inbox user's desktop")
	configKey(flags, "addr", "server.addr")
	configKey(flags, "static", "server.static_dir")
	configKey(flags, "inbox", "inbox.dir")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	log := logging.Named("serve")

	hub, closeHub, err := a.openHub(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeHub(); err != nil {
			log.Error("close hub", zap.Error(err))
		}
	}()

	handler := server.NewHandler(hub, server.Options{
		StaticDir: a.cfg.Server.StaticDir,
		Version:   version,
	})
	srv := server.New(a.cfg.ServerConfig(), handler)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inboxDone := watchInbox(ctx, log, func(ctx context.Context) error {
		if a.cfg.Inbox.Dir == "" {
			return nil
		}
		return a.runInbox(ctx, hub, a.cfg.Inbox.User, a.cfg.Inbox.Dir, a.cfg.Inbox.Target, false)
	})

	err = srv.Run(ctx)
	cancel()
	return errors.Join(err, <-inboxDone)
}

// watchInbox runs the inbox beside the server. A failure is logged when it
// happens; the server keeps running and the error is returned on the
// channel.
func watchInbox(ctx context.Context, log *zap.Logger, run func(context.Context) error) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := run(ctx)
		if err != nil {
			log.Error("inbox stopped, serving without it", zap.Error(err))
		}
		done <- err
	}()
	return done
}

// runInbox imports files from dir into the desktop of user until ctx is
// done.
func (a *app) runInbox(ctx context.Context, hub *session.Hub, user, dir, target string, remove bool) error {
	d, err := hub.Get(ctx, user)
	if err != nil {
		return err
	}
	w, err := inbox.New(inbox.Config{Dir: dir, Target: target, Remove: remove}, d)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
