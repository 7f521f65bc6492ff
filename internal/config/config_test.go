package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"EMACS_SOCKET_NAME", "EMACS_I3_TIMEOUT", "EMACS_I3_LOG_LEVEL", "XDG_RUNTIME_DIR", "TMPDIR"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

		cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
		require.NoError(t, err)
		assert.Equal(t, "my/emacs-i3-command", cfg.Emacs.Function)
		assert.Equal(t, "Emacs", cfg.I3.WindowClass)
		assert.Equal(t, "emacs: ", cfg.I3.TitlePrefix)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "/run/user/1000/emacs/server", cfg.EmacsSocketPath())

		timeout, err := cfg.EmacsTimeout()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, timeout)
	})

	t.Run("valid toml file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[emacs]
server_name = "work"
function = "my/wm-command"
timeout = "250ms"

[i3]
socket = "/run/user/1000/sway-ipc.sock"
window_class = "emacs"

[log]
level = "debug"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "work", cfg.Emacs.ServerName)
		assert.Equal(t, "my/wm-command", cfg.Emacs.Function)
		assert.Equal(t, "/run/user/1000/sway-ipc.sock", cfg.I3.Socket)
		assert.Equal(t, "emacs", cfg.I3.WindowClass)
		assert.Equal(t, "emacs: ", cfg.I3.TitlePrefix, "unset keys keep defaults")
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, filepath.Join("/tmp", "emacs"+strconv.Itoa(os.Getuid()), "work"), cfg.EmacsSocketPath())

		timeout, err := cfg.EmacsTimeout()
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, timeout)
	})

	t.Run("invalid toml", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[emacs\n"), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid timeout", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[emacs]\ntimeout = \"soon\"\n"), 0644))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "emacs.timeout")
	})

	t.Run("empty function", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[emacs]\nfunction = \"\"\n"), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"EMACS_SOCKET_NAME":  "/home/me/.emacs.d/server/main",
		"EMACS_I3_TIMEOUT":   "0",
		"EMACS_I3_LOG_LEVEL": "error",
		"XDG_RUNTIME_DIR":    "/run/user/1000",
	}

	cfg := Default()
	cfg.ApplyEnv(func(key string) string { return env[key] })

	assert.Equal(t, "/home/me/.emacs.d/server/main", cfg.EmacsSocketPath())
	assert.Equal(t, "error", cfg.Log.Level)

	timeout, err := cfg.EmacsTimeout()
	require.NoError(t, err)
	assert.Zero(t, timeout)

	env["EMACS_SOCKET_NAME"] = "other"
	cfg.ApplyEnv(func(key string) string { return env[key] })
	assert.Equal(t, "/run/user/1000/emacs/other", cfg.EmacsSocketPath())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/home/me/.config")
	assert.Equal(t, "/home/me/.config/emacs-i3/config.toml", DefaultPath())
}
