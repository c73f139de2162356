// Package storage stores uploaded media in a blob store and hands back public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"dojo/internal/config"
	"dojo/internal/middleware"

	"github.com/google/uuid"
)

// Fixed name prefixes for uploaded media.
const (
	PostPrefix      = "posts"
	ProfilePrefix   = "profiles"
	ThumbnailPrefix = "profiles/thumbnails"
)

// DefaultChunkSize is the block size used when no explicit size is configured.
const DefaultChunkSize = 4 * 1024 * 1024

// ErrInvalidURL is returned when a URL does not point into the gateway's store.
var ErrInvalidURL = errors.New("url does not belong to this store")

// Gateway is the blob store the API writes media into.
type Gateway interface {
	// Put streams r under name and returns the public URL of the stored blob.
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	// Delete removes the blob behind url. It reports false when nothing was there.
	Delete(ctx context.Context, url string) (bool, error)
	// Exists reports whether a blob is stored behind url.
	Exists(ctx context.Context, url string) (bool, error)
}

// New builds the gateway selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config) (Gateway, error) {
	chunk := cfg.UploadChunkBytes()
	switch cfg.StorageBackend {
	case config.StorageAzure:
		return NewAzureGateway(ctx, cfg.AzureConnectionString, cfg.AzureContainer, chunk)
	case config.StorageLocal:
		return NewLocalGateway(cfg.LocalStorageDir, cfg.LocalStorageBaseURL, chunk)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

// ObjectName returns a collision-free blob name under prefix that keeps the
// original file extension.
func ObjectName(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, uuid.NewString()+ext)
}

// DeleteQuietly removes url and only logs failures. Missing blobs are not errors.
func DeleteQuietly(ctx context.Context, g Gateway, url string) {
	if url == "" {
		return
	}
	deleted, err := g.Delete(ctx, url)
	switch {
	case err != nil:
		middleware.Logger.WarnContext(ctx, "blob delete failed",
			slog.String("url", url), slog.String("error", err.Error()))
	case !deleted:
		middleware.Logger.WarnContext(ctx, "blob already missing", slog.String("url", url))
	}
}

// writeChunks reads r in blocks of size bytes and hands each block to fn.
// The slice passed to fn is reused between calls.
func writeChunks(r io.Reader, size int, fn func(index int, chunk []byte) error) (int64, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)

	var total int64
	for index := 0; ; index++ {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if ferr := fn(index, buf[:n]); ferr != nil {
				return total, ferr
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read upload: %w", err)
		}
	}
}
