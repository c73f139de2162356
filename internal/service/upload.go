// Package service holds the business rules of posts, comments, profiles and
// accounts between the HTTP handlers and the repositories.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"dojo/internal/media"
	"dojo/internal/models"
	"dojo/internal/storage"
	"dojo/internal/validation"
)

// FileInput is an uploaded file as received by a handler.
type FileInput struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// uploader validates files and streams them into the blob store.
type uploader struct {
	store    storage.Gateway
	maxBytes int64
}

// put validates f against allowed and stores it under prefix. Validation
// problems are reported as field errors on field.
func (u uploader) put(ctx context.Context, field, prefix string, f *FileInput, allowed map[string]struct{}) (string, error) {
	contentType, err := validation.ValidateUpload(f.Filename, f.ContentType, f.Size, u.maxBytes, allowed)
	if err != nil {
		return "", models.NewFieldError(field, err.Error())
	}
	url, err := u.store.Put(ctx, storage.ObjectName(prefix, f.Filename), f.Reader, contentType)
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("upload %s: %w", field, err))
	}
	return url, nil
}

// putPicture stores a profile picture and its WebP thumbnail. When the
// thumbnail cannot be stored the picture is removed again.
func (u uploader) putPicture(ctx context.Context, f *FileInput) (picture, thumbnail string, err error) {
	contentType, err := validation.ValidateUpload(f.Filename, f.ContentType, f.Size, u.maxBytes, validation.PictureMediaTypes)
	if err != nil {
		return "", "", models.NewFieldError("picture", err.Error())
	}

	data, err := io.ReadAll(io.LimitReader(f.Reader, u.maxBytes+1))
	if err != nil {
		return "", "", models.NewInternalError(fmt.Errorf("read picture: %w", err))
	}
	if int64(len(data)) > u.maxBytes {
		return "", "", models.NewFieldError("picture", fmt.Sprintf("file too large. Size should not exceed %d MB", u.maxBytes/1000/1000))
	}

	thumb, err := media.Thumbnail(data, media.ThumbnailSize)
	if err != nil {
		return "", "", models.NewFieldError("picture", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	picture, err = u.store.Put(ctx, storage.ObjectName(storage.ProfilePrefix, f.Filename), bytes.NewReader(data), contentType)
	if err != nil {
		return "", "", models.NewInternalError(fmt.Errorf("upload picture: %w", err))
	}
	thumbnail, err = u.store.Put(ctx, storage.ObjectName(storage.ThumbnailPrefix, "thumb.webp"), bytes.NewReader(thumb), media.ThumbnailContentType)
	if err != nil {
		storage.DeleteQuietly(ctx, u.store, picture)
		return "", "", models.NewInternalError(fmt.Errorf("upload thumbnail: %w", err))
	}
	return picture, thumbnail, nil
}
