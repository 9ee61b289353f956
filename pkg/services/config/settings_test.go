package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	// Given
	v := NewViper()

	// When
	s, err := LoadSettings(v, "")

	// Then
	require.NoError(t, err)
	assert.Equal(t, Settings{
		ServerHost:      "0.0.0.0",
		ServerPort:      5000,
		LogLevel:        "info",
		QueryTimeout:    30 * time.Second,
		CloudConfigPath: "config/clouds.ini",
	}, s)
	assert.Equal(t, "0.0.0.0:5000", s.Addr())
}

func TestLoadSettings_Env(t *testing.T) {
	// Given
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("QUERY_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	v := NewViper()

	// When
	s, err := LoadSettings(v, "")

	// Then
	require.NoError(t, err)
	assert.Equal(t, 8080, s.ServerPort)
	assert.Equal(t, 5*time.Second, s.QueryTimeout)
	assert.Equal(t, zerolog.DebugLevel, s.Level())
}

func TestLoadSettings_File(t *testing.T) {
	// Given
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	content := `server_host: "127.0.0.1"
cloud_config_path: "/etc/atlas/clouds.ini"`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	s, err := LoadSettings(NewViper(), path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", s.Addr())
	assert.Equal(t, "/etc/atlas/clouds.ini", s.CloudConfigPath)
}

func TestLoadSettings_InvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")

	_, err := LoadSettings(NewViper(), "")

	assert.EqualError(t, err, "invalid server port 70000")
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorContains(t, err, "failed to read config file")
}

func TestSettings_Level(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, Settings{LogLevel: "verbose"}.Level())
	assert.Equal(t, zerolog.WarnLevel, Settings{LogLevel: "warn"}.Level())
}
