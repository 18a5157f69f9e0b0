package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"webdesk/pkg/config"
	"webdesk/pkg/logging"
	"webdesk/pkg/session"
	"webdesk/pkg/shell"
	"webdesk/pkg/store"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	v          *viper.Viper
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:   "webdesk",
		Short: "A desktop environment simulated in the browser",
		Long: `webdesk keeps per-user desktops (windows, apps, an in-memory file
system and a terminal) and serves them to a browser front end. The same
desktops can be driven from a terminal UI or one command at a time.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd.Flags()); err != nil {
				return err
			}
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	configKey(flags, "log-level", "log.level")

	cmd.AddCommand(
		serveCmd(a),
		termCmd(a),
		execCmd(a),
		watchCmd(a),
		configCmd(a),
		versionCmd(),
	)
	return cmd
}

// configKeyAnnotation marks a flag that overrides a configuration key.
const configKeyAnnotation = "webdesk/config-key"

// configKey ties the flag name to a configuration key. Only the flags of
// the command being run are bound, so commands may share keys.
func configKey(flags *pflag.FlagSet, name, key string) {
	_ = flags.SetAnnotation(name, configKeyAnnotation, []string{key})
}

func (a *app) bindFlags(flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[configKeyAnnotation]; len(keys) == 1 && err == nil {
			err = a.v.BindPFlag(keys[0], f)
		}
	})
	return err
}

// setup loads the configuration and starts logging.
func (a *app) setup() error {
	cfg, err := config.LoadWith(a.v, a.configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(cfg.LoggingConfig()); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	a.cfg = cfg
	return nil
}

// openHub opens the configured store and returns a hub over it. The
// returned function saves every loaded desktop and closes the store.
func (a *app) openHub(ctx context.Context) (*session.Hub, func() error, error) {
	sc, err := a.cfg.SessionConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, a.cfg.StoreConfig())
	if err != nil {
		return nil, nil, err
	}

	shellCfg := a.cfg.ShellConfig()
	shellCfg.Release = version
	shellCfg.Logger = logging.Named("shell")
	hub := session.NewHub(st, shell.New(shellCfg), sc)

	closeFn := func() error {
		err := hub.Close(context.Background())
		if err != nil {
			logging.L().Error("save desktops", zap.Error(err))
		}
		if cerr := st.Close(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	}
	return hub, closeFn, nil
}
