package validation

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Upload allow-lists.
var (
	PostMediaTypes = map[string]struct{}{
		"image/jpeg":      {},
		"image/png":       {},
		"video/mp4":       {},
		"video/quicktime": {},
	}
	PictureMediaTypes = map[string]struct{}{
		"image/jpeg": {},
		"image/png":  {},
	}
)

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
}

// NormalizeContentType strips parameters and lower-cases a media type.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(mediaType)
}

// ResolveContentType decides the media type of an upload from its declared
// Content-Type, falling back to the file extension when the client sent a
// generic type.
func ResolveContentType(filename, declared string) string {
	ct := NormalizeContentType(declared)
	if ct == "" || ct == "application/octet-stream" {
		return extensionTypes[strings.ToLower(filepath.Ext(filename))]
	}
	return ct
}

// ValidateUpload checks size, extension and media type of an uploaded file
// against the allowed set and returns the resolved media type.
func ValidateUpload(filename, declaredType string, size, maxBytes int64, allowed map[string]struct{}) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("the submitted file is empty")
	}
	if size > maxBytes {
		return "", fmt.Errorf("file too large. Size should not exceed %d MB", maxBytes/1000/1000)
	}

	extType, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", fmt.Errorf("invalid file extension %q", filepath.Ext(filename))
	}
	if _, ok := allowed[extType]; !ok {
		return "", fmt.Errorf("invalid file extension %q", filepath.Ext(filename))
	}

	ct := ResolveContentType(filename, declaredType)
	if _, ok := allowed[ct]; !ok {
		return "", fmt.Errorf("unsupported file type %q", ct)
	}
	return ct, nil
}
