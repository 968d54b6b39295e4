package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playback.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Tick())
	assert.Equal(t, 1.0, cfg.Rate)
	_, ok := cfg.Seek()
	assert.False(t, ok)
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfig(t, "tick_millis: 250\nrate: 4.0\nseek_seconds: 1.5\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Tick())
	assert.Equal(t, 4.0, cfg.Rate)
	seek, ok := cfg.Seek()
	require.True(t, ok)
	assert.Equal(t, 1500*time.Millisecond, seek)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "rate: 0.5\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Tick())
	assert.Equal(t, 0.5, cfg.Rate)
}

func TestLoad_SchemaRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero tick", "tick_millis: 0\n"},
		{"negative tick", "tick_millis: -10\n"},
		{"oversized tick", "tick_millis: 120000\n"},
		{"zero rate", "rate: 0\n"},
		{"negative seek", "seek_seconds: -2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "tick_millis: [not a number\n"))
	assert.Error(t, err)
}
