package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"traefiker/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadMissingFileReturnsDefaults tests that no file is created on first run
func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(tmpDir, "data", "traefiker", "traefiker.db"), cfg.Database.DSN)
	assert.Equal(t, "traefiker", cfg.Runtime.Network)
	assert.Equal(t, "traefiker_", cfg.Runtime.ContainerPrefix)
	assert.Equal(t, 2*time.Minute, cfg.Runtime.OperationTimeout.Std())
	assert.Equal(t, 10*time.Minute, cfg.Runtime.PullTimeout.Std())
	assert.Equal(t, "web", cfg.Proxy.Entrypoint)

	_, err = os.Stat(filepath.Join(tmpDir, "traefiker"))
	assert.True(t, os.IsNotExist(err), "Load should not create the config directory")
}

func TestLoadPartialFileAppliesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")
	content := `
[server]
port = 9090
log_level = "debug"

[database]
dsn = "/var/lib/traefiker/state.db"

[runtime]
network = "edge"
pull_timeout = "30m"

[proxy]
cert_resolver = "letsencrypt"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "/var/lib/traefiker/state.db", cfg.Database.DSN)
	assert.Equal(t, "edge", cfg.Runtime.Network)
	assert.Equal(t, 30*time.Minute, cfg.Runtime.PullTimeout.Std())
	assert.Equal(t, 2*time.Minute, cfg.Runtime.OperationTimeout.Std())
	assert.Equal(t, "traefiker_", cfg.Runtime.ContainerPrefix)
	assert.Equal(t, "web", cfg.Proxy.Entrypoint)
	assert.Equal(t, "letsencrypt", cfg.Proxy.CertResolver)
}

func TestLoadExpandsTilde(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	path := filepath.Join(tmpDir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database]\ndsn = \"~/db/traefiker.db\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "db", "traefiker.db"), cfg.Database.DSN)
}

func TestLoadRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{name: "malformed toml", content: "[server\nport = ", code: errors.ErrConfigParse},
		{name: "port out of range", content: "[server]\nport = 70000\n", code: errors.ErrConfigValidation},
		{name: "unknown log level", content: "[server]\nlog_level = \"loud\"\n", code: errors.ErrConfigValidation},
		{name: "unsupported driver", content: "[database]\ndriver = \"postgres\"\n", code: errors.ErrConfigValidation},
		{name: "bad duration", content: "[runtime]\npull_timeout = \"soon\"\n", code: errors.ErrConfigParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			t.Setenv("XDG_DATA_HOME", t.TempDir())

			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "unexpected error: %v", err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.toml")

	cfg := Default()
	cfg.Database.DSN = filepath.Join(tmpDir, "traefiker.db")
	cfg.Runtime.Network = "proxy"
	cfg.Runtime.OperationTimeout = Duration(45 * time.Second)

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
