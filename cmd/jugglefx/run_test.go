package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListFramesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.txt", "d.jpeg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "e.png"), 0o755))

	frames, err := listFrames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "d.jpeg"),
	}, frames)

	_, err = listFrames(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestRunFrames(t *testing.T) {
	logger = zap.NewNop()
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	frame := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 20; y < 30; y++ {
		for x := 20; x < 30; x++ {
			frame.Set(x, y, color.White)
		}
	}
	require.NoError(t, writePNG(filepath.Join(in, "0001.png"), frame))
	require.NoError(t, writePNG(filepath.Join(in, "0002.png"), frame))
	require.NoError(t, os.WriteFile(filepath.Join(in, "0003.png"), []byte("not a png"), 0o600))

	inputDir, outputDir, particlePath, modeFlag, configPath = in, out, "", "circle,debug", ""
	require.NoError(t, runFrames(runCmd, nil))

	for _, name := range []string{"0001.png", "0002.png"} {
		img, err := readImage(filepath.Join(out, name))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())
	}
	_, err := os.Stat(filepath.Join(out, "0003.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunFramesRejectsUnknownMode(t *testing.T) {
	logger = zap.NewNop()
	inputDir, outputDir, particlePath, modeFlag, configPath = t.TempDir(), t.TempDir(), "", "lasers", ""
	assert.Error(t, runFrames(runCmd, nil))
}
