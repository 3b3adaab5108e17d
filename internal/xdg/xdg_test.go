package xdg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDir(t *testing.T) {
	t.Run("honours XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
		dir, err := ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/tmp/cfg", "traefiker"), dir)
	})

	t.Run("falls back to home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/someone")
		dir, err := ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/home/someone", ".config", "traefiker"), dir)
	})
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/home/someone")
	dir, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/someone", ".local", "share", "traefiker"), dir)
}
