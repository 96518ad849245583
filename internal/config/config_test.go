package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flandre.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Entity.Layers)
	assert.Equal(t, 16*time.Millisecond, cfg.Frame.TickRate)
	assert.Equal(t, "utf-8", cfg.Script.Encoding)
	assert.NotZero(t, cfg.App.StartTime)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[window]
title = "demo"
width = 100

[frame]
tick_rate = "33ms"

[entity]
layers = 8
max_objects = 4096

[script]
dir = "game"
encoding = "big5"

[input]
key_hold = "200ms"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 100, cfg.Window.Width)
	assert.Equal(t, 33*time.Millisecond, cfg.Frame.TickRate)
	assert.Equal(t, 8, cfg.Entity.Layers)
	assert.Equal(t, 4096, cfg.Entity.MaxObjects)
	assert.Equal(t, "game", cfg.Script.Dir)
	assert.Equal(t, "manifest.yaml", cfg.Script.Manifest, "unset keys keep defaults")
	assert.Equal(t, "big5", cfg.Script.Encoding)
	assert.Equal(t, 200*time.Millisecond, cfg.Input.KeyHold)
}

func TestLoad_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[entity\nlayers = 3", "parse config"},
		{"zero layers", "[entity]\nlayers = 0", "entity.layers"},
		{"too many layers", "[entity]\nlayers = 300", "entity.layers"},
		{"negative tick", "[frame]\ntick_rate = \"-1s\"", "frame.tick_rate"},
		{"diagnostics without dsn", "[diagnostics]\nenabled = true\ndsn = \"\"", "diagnostics.dsn"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
