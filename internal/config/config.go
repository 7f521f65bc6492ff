package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/c0deaddict/emacs-i3/emacsclient"
)

// Config is the top-level configuration loaded from config.toml.
type Config struct {
	Emacs EmacsConfig `toml:"emacs"`
	I3    I3Config    `toml:"i3"`
	Log   LogConfig   `toml:"log"`

	// Directories the default Emacs socket path is derived from. Filled
	// from XDG_RUNTIME_DIR and TMPDIR, never from the file.
	RuntimeDir string `toml:"-"`
	TmpDir     string `toml:"-"`
}

// EmacsConfig describes how to reach the Emacs server.
type EmacsConfig struct {
	// Explicit socket path. Takes precedence over ServerName.
	Socket string `toml:"socket"`
	// Server name as passed to emacsclient -s (the value of server-name).
	ServerName string `toml:"server_name"`
	// Emacs Lisp function that receives the window manager command.
	Function string `toml:"function"`
	// Per-evaluation timeout, e.g. "5s". "0" disables it.
	Timeout string `toml:"timeout"`
}

// I3Config describes the window manager side.
type I3Config struct {
	// Explicit IPC socket path. Empty means I3SOCK, SWAYSOCK or
	// `i3 --get-socketpath`.
	Socket string `toml:"socket"`
	// WindowClass is the X11 class of Emacs frames.
	WindowClass string `toml:"window_class"`
	// TitlePrefix matches Emacs frames by title when no class is set.
	TitlePrefix string `toml:"title_prefix"`
	// AppID matches native Wayland Emacs frames under sway.
	AppID string `toml:"app_id"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Emacs: EmacsConfig{
			ServerName: emacsclient.DefaultServerName,
			Function:   "my/emacs-i3-command",
			Timeout:    "5s",
		},
		I3: I3Config{
			WindowClass: "Emacs",
			TitlePrefix: "emacs: ",
			AppID:       "emacs",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/emacs-i3/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "emacs-i3", "config.toml")
}

// Load reads the config file at path, applies environment variable
// overrides and validates the result. A missing file is not an error; the
// defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides configuration from the environment.
//
// EMACS_SOCKET_NAME is interpreted like emacsclient does: a value with a
// path separator is a socket path, anything else a server name.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if name := getenv("EMACS_SOCKET_NAME"); name != "" {
		if strings.ContainsRune(name, filepath.Separator) {
			c.Emacs.Socket = name
		} else {
			c.Emacs.Socket = ""
			c.Emacs.ServerName = name
		}
	}
	if timeout := getenv("EMACS_I3_TIMEOUT"); timeout != "" {
		c.Emacs.Timeout = timeout
	}
	if level := getenv("EMACS_I3_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	c.RuntimeDir = getenv("XDG_RUNTIME_DIR")
	c.TmpDir = getenv("TMPDIR")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Emacs.Function) == "" {
		return fmt.Errorf("emacs.function must not be empty")
	}
	if _, err := c.EmacsTimeout(); err != nil {
		return err
	}
	if c.Emacs.Socket == "" && c.Emacs.ServerName == "" {
		c.Emacs.ServerName = emacsclient.DefaultServerName
	}
	return nil
}

// EmacsTimeout parses Emacs.Timeout. An empty value or "0" means no
// timeout.
func (c *Config) EmacsTimeout() (time.Duration, error) {
	if c.Emacs.Timeout == "" || c.Emacs.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Emacs.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid emacs.timeout %q: %w", c.Emacs.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid emacs.timeout %q: must not be negative", c.Emacs.Timeout)
	}
	return d, nil
}

// EmacsSocketPath returns the Emacs server socket to connect to.
func (c *Config) EmacsSocketPath() string {
	if c.Emacs.Socket != "" {
		return c.Emacs.Socket
	}
	return emacsclient.SocketPath(c.Emacs.ServerName, c.RuntimeDir, c.TmpDir, os.Getuid())
}
