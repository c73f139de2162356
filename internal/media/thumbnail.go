// Package media derives thumbnails from uploaded pictures.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// ThumbnailSize is the edge length of profile thumbnails in pixels.
	ThumbnailSize = 256
	// WebPQuality is the lossy quality used for thumbnails.
	WebPQuality = 70
	// ThumbnailContentType is the media type of generated thumbnails.
	ThumbnailContentType = "image/webp"
)

// ErrUnsupportedImage is returned when the payload cannot be decoded as an image.
var ErrUnsupportedImage = errors.New("unsupported image data")

// Thumbnail center-crops the picture to a square, scales it to size×size and
// encodes it as WebP. Pictures smaller than size are cropped but not upscaled.
func Thumbnail(data []byte, size int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	square := cropSquare(src)
	edge := square.Bounds().Dx()
	if edge > size {
		edge = size
	}

	dst := image.NewRGBA(image.Rect(0, 0, edge, edge))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), square, square.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: WebPQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func cropSquare(src image.Image) image.Image {
	b := src.Bounds()
	edge := b.Dx()
	if b.Dy() < edge {
		edge = b.Dy()
	}
	if edge <= 0 {
		return src
	}

	offset := image.Point{
		X: b.Min.X + (b.Dx()-edge)/2,
		Y: b.Min.Y + (b.Dy()-edge)/2,
	}
	dst := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.Draw(dst, dst.Bounds(), src, offset, draw.Src)
	return dst
}
