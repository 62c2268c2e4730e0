package helper

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageToWebPResizesLargeImages(t *testing.T) {
	out, err := ImageToWebP(bytes.NewReader(pngBytes(t, 1024, 768)), 512)
	require.NoError(t, err)
	assert.True(t, isWebP(out))

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 384, cfg.Height)
}

func TestImageToWebPKeepsSmallImages(t *testing.T) {
	out, err := ImageToWebP(bytes.NewReader(pngBytes(t, 100, 50)), 512)
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
}

func TestImageToWebPRejectsGarbage(t *testing.T) {
	_, err := ImageToWebP(bytes.NewReader([]byte("bukan gambar")), 512)
	assert.Error(t, err)
}
