package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		wantEdge int
	}{
		{"landscape downscaled", 800, 400, ThumbnailSize},
		{"portrait downscaled", 300, 900, ThumbnailSize},
		{"small picture not upscaled", 120, 90, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Thumbnail(encodePNG(t, tt.w, tt.h), ThumbnailSize)
			require.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "webp", format)
			assert.Equal(t, tt.wantEdge, cfg.Width)
			assert.Equal(t, tt.wantEdge, cfg.Height)
		})
	}
}

func TestThumbnail_RejectsNonImage(t *testing.T) {
	_, err := Thumbnail([]byte("definitely not a picture"), ThumbnailSize)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}
