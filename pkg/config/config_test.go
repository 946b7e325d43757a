package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dumbdev/katal/pkg/config"
)

type serverConfig struct {
	Address         string        `yaml:"address" env:"KATAL_TEST_ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"KATAL_TEST_SHUTDOWN" envDefault:"30s"`
}

type appConfig struct {
	Name   string       `yaml:"name" env:"KATAL_TEST_NAME" envDefault:"katal"`
	Server serverConfig `yaml:"server"`
	Tags   []string     `yaml:"tags" env:"KATAL_TEST_TAGS"`
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load[appConfig]("")
	require.NoError(t, err)
	require.Equal(t, "katal", cfg.Name)
	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load[appConfig](filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
name: users
server:
  address: ":9000"
tags: [a, b]
`)

	cfg, err := config.Load[appConfig](path)
	require.NoError(t, err)
	require.Equal(t, "users", cfg.Name)
	require.Equal(t, ":9000", cfg.Server.Address)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, []string{"a", "b"}, cfg.Tags)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("KATAL_TEST_ADDRESS", ":7000")
	t.Setenv("KATAL_TEST_SHUTDOWN", "5s")

	path := writeFile(t, "server:\n  address: \":9000\"\n")

	cfg, err := config.Load[appConfig](path)
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.Server.Address)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, "katal", cfg.Name)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, "server: [unclosed")
		_, err := config.Load[appConfig](path)
		require.ErrorIs(t, err, config.ErrParseYAML)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeFile(t, "unknown: 1\n")
		_, err := config.Load[appConfig](path)
		require.ErrorIs(t, err, config.ErrParseYAML)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("KATAL_TEST_SHUTDOWN", "soon")
		_, err := config.Load[appConfig]("")
		require.ErrorIs(t, err, config.ErrParseEnv)
	})
}

func TestLoadFromReader(t *testing.T) {
	cfg, err := config.LoadFromReader[appConfig](strings.NewReader("name: reader\n"))
	require.NoError(t, err)
	require.Equal(t, "reader", cfg.Name)
	require.Equal(t, ":8080", cfg.Server.Address)

	cfg, err = config.LoadFromReader[appConfig](strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, "katal", cfg.Name)
}
