package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"dojo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxUpload = 5 * 1000 * 1000

func fileInput(name, contentType string, data []byte) *FileInput {
	return &FileInput{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertFieldError asserts a VALIDATION_ERROR that names field.
func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Contains(t, appErr.Fields, field)
}
