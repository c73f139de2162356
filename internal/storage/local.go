package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"dojo/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// LocalGateway keeps blobs on the local filesystem and serves them under baseURL.
type LocalGateway struct {
	dir       string
	baseURL   string
	chunkSize int
}

// NewLocalGateway creates dir when missing.
func NewLocalGateway(dir, baseURL string, chunkSize int) (*LocalGateway, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalGateway{
		dir:       dir,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		chunkSize: chunkSize,
	}, nil
}

// Dir is the root directory blobs are written to.
func (g *LocalGateway) Dir() string {
	return g.dir
}

func (g *LocalGateway) Put(ctx context.Context, name string, r io.Reader, _ string) (string, error) {
	span, _ := observability.StartClientSpan(ctx, "storage.local.put", attribute.String("blob.name", name))
	defer span.End()

	target, err := g.path(name)
	if err != nil {
		return "", err
	}

	total, err := g.write(target, r)
	observability.RecordStorage("put", err)
	if err != nil {
		span.SetError(err)
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	observability.StorageUploadBytes.Add(float64(total))
	return g.baseURL + "/" + filepath.ToSlash(name), nil
}

func (g *LocalGateway) write(target string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}

	total, err := writeChunks(r, g.chunkSize, func(_ int, chunk []byte) error {
		_, werr := f.Write(chunk)
		return werr
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return total, err
}

func (g *LocalGateway) Delete(ctx context.Context, rawURL string) (bool, error) {
	target, err := g.pathFromURL(rawURL)
	if err != nil {
		return false, err
	}

	err = os.Remove(target)
	if errors.Is(err, os.ErrNotExist) {
		observability.RecordStorage("delete", nil)
		return false, nil
	}
	observability.RecordStorage("delete", err)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", rawURL, err)
	}
	return true, nil
}

func (g *LocalGateway) Exists(_ context.Context, rawURL string) (bool, error) {
	target, err := g.pathFromURL(rawURL)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func (g *LocalGateway) pathFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	base, err := url.Parse(g.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Host != base.Host {
		return "", ErrInvalidURL
	}
	prefix := base.Path + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", ErrInvalidURL
	}
	return g.path(strings.TrimPrefix(u.Path, prefix))
}

// path resolves name inside dir and refuses names escaping it.
func (g *LocalGateway) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", ErrInvalidURL
	}
	return filepath.Join(g.dir, clean), nil
}
