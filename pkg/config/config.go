// Package config loads the webdesk configuration with viper.
//
// Values come from, in increasing priority: built-in defaults, a YAML
// file, and WEBDESK_* environment variables (WEBDESK_STORE_DRIVER for
// store.driver).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"webdesk/pkg/apps"
	"webdesk/pkg/iconlayout"
	"webdesk/pkg/logging"
	"webdesk/pkg/server"
	"webdesk/pkg/session"
	"webdesk/pkg/shell"
	"webdesk/pkg/store"
	"webdesk/pkg/wm"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "WEBDESK"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the full configuration of the server and the CLI.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Display DisplayConfig `mapstructure:"display"`
	Windows WindowsConfig `mapstructure:"windows"`
	Shell   ShellConfig   `mapstructure:"shell"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
	Inbox   InboxConfig   `mapstructure:"inbox"`
	Apps    AppsConfig    `mapstructure:"apps"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	StaticDir    string        `mapstructure:"static_dir"`
	TLSCert      string        `mapstructure:"tls_cert"`
	TLSKey       string        `mapstructure:"tls_key"`
}

type DisplayConfig struct {
	Width           int    `mapstructure:"width"`
	Height          int    `mapstructure:"height"`
	TaskbarHeight   int    `mapstructure:"taskbar_height"`
	TaskbarPosition string `mapstructure:"taskbar_position"`
	IconSize        int    `mapstructure:"icon_size"`
}

type WindowsConfig struct {
	CascadeOffset     int `mapstructure:"cascade_offset"`
	OriginX           int `mapstructure:"origin_x"`
	OriginY           int `mapstructure:"origin_y"`
	RenumberThreshold int `mapstructure:"renumber_threshold"`
}

type ShellConfig struct {
	Hostname    string        `mapstructure:"hostname"`
	ScriptDelay time.Duration `mapstructure:"script_delay"`
	ChainPolicy string        `mapstructure:"chain_policy"`
}

type StoreConfig struct {
	Driver string         `mapstructure:"driver"`
	DSN    string         `mapstructure:"dsn"`
	S3     store.S3Config `mapstructure:"s3"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// InboxConfig configures the watched upload folder.
type InboxConfig struct {
	Dir    string `mapstructure:"dir"`
	Target string `mapstructure:"target"`
	User   string `mapstructure:"user"`
}

// AppsConfig points to an optional YAML catalogue of extra apps.
type AppsConfig struct {
	Catalogue string `mapstructure:"catalogue"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	win := wm.DefaultConfig()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.tls_cert", "")
	v.SetDefault("server.tls_key", "")

	v.SetDefault("display.width", win.Width)
	v.SetDefault("display.height", win.Height)
	v.SetDefault("display.taskbar_height", win.TaskbarHeight)
	v.SetDefault("display.taskbar_position", string(win.TaskbarPosition))
	v.SetDefault("display.icon_size", iconlayout.DefaultCellSize)

	v.SetDefault("windows.cascade_offset", win.CascadeOffset)
	v.SetDefault("windows.origin_x", win.Origin.X)
	v.SetDefault("windows.origin_y", win.Origin.Y)
	v.SetDefault("windows.renumber_threshold", win.RenumberThreshold)

	v.SetDefault("shell.hostname", "webdesk")
	v.SetDefault("shell.script_delay", time.Second)
	v.SetDefault("shell.chain_policy", string(shell.StopOnNotFound))

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.dsn", filepath.Join(dataDir(), "desktops"))
	for _, k := range []string{"bucket", "region", "endpoint", "prefix", "access_key", "secret_key"} {
		v.SetDefault("store.s3."+k, "")
	}

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("inbox.dir", "")
	v.SetDefault("inbox.target", "/Documents")
	v.SetDefault("inbox.user", "guest")

	v.SetDefault("apps.catalogue", "")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "webdesk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".webdesk"
	}
	return filepath.Join(home, ".local", "share", "webdesk")
}

// DefaultPath returns the config file looked for when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "webdesk.yaml"
	}
	return filepath.Join(dir, "webdesk", "config.yaml")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. With an empty path the default location
// is tried and a missing file is not an error.
func Load(path string) (*Config, error) {
	return LoadWith(New(), path)
}

// LoadWith reads the configuration into an existing viper instance, which
// may carry bound command-line flags.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigFile(DefaultPath())
	}
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	v := viper.New()
	SetDefaults(v)
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Validate checks values that would otherwise fail deep inside a component.
func (c *Config) Validate() error {
	var errs []error
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d", c.Display.Width, c.Display.Height))
	}
	if c.Display.IconSize <= 0 {
		errs = append(errs, fmt.Errorf("display.icon_size %d", c.Display.IconSize))
	}
	switch wm.TaskbarPosition(c.Display.TaskbarPosition) {
	case wm.TaskbarTop, wm.TaskbarBottom:
	default:
		errs = append(errs, fmt.Errorf("display.taskbar_position %q", c.Display.TaskbarPosition))
	}
	if _, err := shell.ParseChainPolicy(c.Shell.ChainPolicy); err != nil {
		errs = append(errs, fmt.Errorf("shell.chain_policy %q", c.Shell.ChainPolicy))
	}
	if c.Shell.ScriptDelay < 0 {
		errs = append(errs, fmt.Errorf("shell.script_delay %s", c.Shell.ScriptDelay))
	}
	switch c.Store.Driver {
	case "memory", "file", "sqlite", "sqlite3", "postgres":
	case "s3":
		if c.Store.S3.Bucket == "" {
			errs = append(errs, errors.New("store.s3.bucket is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q", c.Store.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// WindowConfig returns the window manager configuration.
func (c *Config) WindowConfig() wm.Config {
	return wm.Config{
		Width:             c.Display.Width,
		Height:            c.Display.Height,
		TaskbarHeight:     c.Display.TaskbarHeight,
		TaskbarPosition:   wm.TaskbarPosition(c.Display.TaskbarPosition),
		CascadeOffset:     c.Windows.CascadeOffset,
		Origin:            wm.Point{X: c.Windows.OriginX, Y: c.Windows.OriginY},
		RenumberThreshold: c.Windows.RenumberThreshold,
	}
}

// SessionConfig returns the desktop configuration, with the extra apps of
// apps.catalogue when one is configured.
func (c *Config) SessionConfig() (session.Config, error) {
	cfg := session.Config{Window: c.WindowConfig(), IconSize: c.Display.IconSize}
	if c.Apps.Catalogue == "" {
		return cfg, nil
	}

	f, err := os.Open(c.Apps.Catalogue)
	if err != nil {
		return cfg, fmt.Errorf("open app catalogue: %w", err)
	}
	defer f.Close()
	if cfg.Catalogue, err = apps.LoadCatalogue(f); err != nil {
		return cfg, fmt.Errorf("%s: %w", c.Apps.Catalogue, err)
	}
	return cfg, nil
}

// ShellConfig returns the interpreter configuration.
func (c *Config) ShellConfig() shell.Config {
	policy, _ := shell.ParseChainPolicy(c.Shell.ChainPolicy)
	return shell.Config{
		Hostname:    c.Shell.Hostname,
		ScriptDelay: c.Shell.ScriptDelay,
		ChainPolicy: policy,
	}
}

// StoreConfig returns the snapshot store configuration.
func (c *Config) StoreConfig() store.Config {
	return store.Config{Driver: c.Store.Driver, DSN: c.Store.DSN, S3: c.Store.S3}
}

// ServerConfig returns the HTTP server configuration.
func (c *Config) ServerConfig() server.Config {
	return server.Config{
		Addr:         c.Server.Addr,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
		TLS:          server.TLSConfig{CertFile: c.Server.TLSCert, KeyFile: c.Server.TLSKey},
	}
}

// LoggingConfig returns the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// Write saves cfg as YAML at path, creating parent directories.
func Write(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Marshal renders cfg as the YAML Load reads.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg.tree())
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// tree renders cfg with the same keys Load reads; durations are written
// in their string form.
func (c *Config) tree() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"addr":          c.Server.Addr,
			"read_timeout":  c.Server.ReadTimeout.String(),
			"write_timeout": c.Server.WriteTimeout.String(),
			"static_dir":    c.Server.StaticDir,
			"tls_cert":      c.Server.TLSCert,
			"tls_key":       c.Server.TLSKey,
		},
		"display": map[string]any{
			"width":            c.Display.Width,
			"height":           c.Display.Height,
			"taskbar_height":   c.Display.TaskbarHeight,
			"taskbar_position": c.Display.TaskbarPosition,
			"icon_size":        c.Display.IconSize,
		},
		"windows": map[string]any{
			"cascade_offset":     c.Windows.CascadeOffset,
			"origin_x":           c.Windows.OriginX,
			"origin_y":           c.Windows.OriginY,
			"renumber_threshold": c.Windows.RenumberThreshold,
		},
		"shell": map[string]any{
			"hostname":     c.Shell.Hostname,
			"script_delay": c.Shell.ScriptDelay.String(),
			"chain_policy": c.Shell.ChainPolicy,
		},
		"store": map[string]any{
			"driver": c.Store.Driver,
			"dsn":    c.Store.DSN,
			"s3": map[string]any{
				"bucket":     c.Store.S3.Bucket,
				"region":     c.Store.S3.Region,
				"endpoint":   c.Store.S3.Endpoint,
				"prefix":     c.Store.S3.Prefix,
				"access_key": c.Store.S3.AccessKey,
				"secret_key": c.Store.S3.SecretKey,
			},
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
		"inbox": map[string]any{
			"dir":    c.Inbox.Dir,
			"target": c.Inbox.Target,
			"user":   c.Inbox.User,
		},
		"apps": map[string]any{
			"catalogue": c.Apps.Catalogue,
		},
	}
}
