package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 225, cfg.Detection.Threshold)
	assert.Equal(t, 0.05, cfg.Detection.Downscale)
	assert.Equal(t, 1, cfg.Locator.NObjects)
	assert.Equal(t, 100, cfg.Locator.MaxIter)
	assert.Equal(t, 5, cfg.Locator.Attempts)
	assert.Equal(t, "hungarian", cfg.Tracker.Solver)
	assert.Equal(t, 10, cfg.Particles.MaxAge)
	assert.Equal(t, 1.1, cfg.Sparkle.SizeRate)
	assert.Equal(t, 0.8, cfg.Sparkle.AlphaRate)
	assert.Equal(t, color.RGBA{R: 0, G: 128, B: 255, A: 255}, cfg.Circle.Color.RGBA())
	assert.Equal(t, RGB{0, 255, 0}, cfg.Debug.Color)
	assert.Equal(t, cfg, Default())
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("locator:\n  n_objects: 3\nparticles:\n  blend: additive\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Locator.NObjects)
	assert.Equal(t, "additive", cfg.Particles.Blend)
	// Untouched keys keep defaults
	assert.Equal(t, 100, cfg.Locator.MaxIter)
	assert.Equal(t, 10, cfg.Particles.MaxAge)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero objects":      "locator:\n  n_objects: 0\n",
		"threshold":         "detection:\n  threshold: 300\n",
		"downscale":         "detection:\n  downscale: 0\n",
		"solver":            "tracker:\n  solver: magic\n",
		"blend":             "particles:\n  blend: multiply\n",
		"negative diameter": "circle:\n  diameter: -4\n",
		"malformed":         "locator: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
