package io

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lensflare-camera/internal/core"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	logger, _ := test.NewNullLogger()
	loader := NewImageLoader(logger)

	// 11x7 so loading has to crop to even dimensions
	pix := make([]byte, 11*7*3)
	for i := range pix {
		pix[i] = 90
	}
	img, err := core.RGBImageFromBytes(pix, 11, 7)
	require.NoError(t, err)
	defer img.Close()

	path := filepath.Join(t.TempDir(), "still.png")
	require.NoError(t, loader.SaveImage(img, path))

	frame, err := loader.LoadFrame(path)
	require.NoError(t, err)
	assert.Equal(t, 10, frame.Width)
	assert.Equal(t, 6, frame.Height)
	assert.NoError(t, frame.Validate())
}

func TestUnsupportedFormats(t *testing.T) {
	logger, _ := test.NewNullLogger()
	loader := NewImageLoader(logger)

	_, err := loader.LoadFrame("clip.gif")
	assert.Error(t, err)

	assert.True(t, IsSupportedImageFormat("a/b/C.JPG"))
	assert.False(t, IsSupportedImageFormat("a/b.c/noext"))
}

func TestLoadMissingFile(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewImageLoader(logger).LoadFrame(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
