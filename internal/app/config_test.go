// internal/app/config_test.go
package app_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quilbridge/internal/app"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := app.LoadConfig(home)
	require.NoError(t, err)
	require.Equal(t, home, cfg.Home)
	require.Equal(t, "http://127.0.0.1:5000", cfg.QVMURL)
	require.Empty(t, cfg.Device)
	require.False(t, cfg.Debug)
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	home := t.TempDir()
	body := "qvm_url: http://qvm.internal:9001\ndevice: aspen-4\ndebug: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte(body), 0o600))

	cfg, err := app.LoadConfig(home)
	require.NoError(t, err)
	require.Equal(t, home, cfg.Home)
	require.Equal(t, "http://qvm.internal:9001", cfg.QVMURL)
	require.Equal(t, "aspen-4", cfg.Device)
	require.True(t, cfg.Debug)
}

func TestLoadConfig_BadYAMLFails(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("qvm_url: [oops"), 0o600))

	_, err := app.LoadConfig(home)
	require.Error(t, err)
}

func TestNewWire_BuildsGraph(t *testing.T) {
	home := t.TempDir()
	cfg := app.Config{Home: home, Timeout: 2 * time.Second}.WithDefaults()

	w, err := app.NewWire(cfg)
	require.NoError(t, err)
	defer w.Close()

	require.NotNil(t, w.Client)
	require.NotNil(t, w.Handles)
	require.NotNil(t, w.Logger)
	require.Equal(t, "http://127.0.0.1:5000", w.Client.BaseURL())
	require.DirExists(t, filepath.Join(home, "handles"))
}
