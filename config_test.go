package scenekit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, float32(2), cfg.MaxPixelRatio)
	assert.Equal(t, 5000, cfg.Particles)
	assert.Equal(t, 100, cfg.Donuts)
	assert.Equal(t, "Hello Three.js", cfg.Text)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, cfg.Clear())
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), ConfigFilename))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
width: 1024
height: 768
clear_color: "#ff8000"
particles: 20
debug: true
`))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 768, cfg.Height)
	assert.Equal(t, 20, cfg.Particles)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 100, cfg.Donuts, "unset fields keep their defaults")
	c := cfg.Clear()
	assert.InDeltaSlice(t, []float32{1, 128.0 / 255, 0, 1}, c[:], 1e-6)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "width: [1, 2"))
	assert.ErrorContains(t, err, "parse config")

	_, err = LoadConfig(writeConfig(t, "width: -1"))
	assert.ErrorContains(t, err, "must be positive")

	_, err = LoadConfig(writeConfig(t, `clear_color: "purple"`))
	assert.Error(t, err)
}
