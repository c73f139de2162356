package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

const memoryURLPrefix = "memory://blobs/"

// MemoryGateway keeps blobs in process memory. Setting PutErr or DeleteErr
// makes the matching call fail.
type MemoryGateway struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	types     map[string]string
	PutErr    error
	DeleteErr error
}

// NewMemoryGateway returns an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		blobs: make(map[string][]byte),
		types: make(map[string]string),
	}
}

func (g *MemoryGateway) Put(_ context.Context, name string, r io.Reader, contentType string) (string, error) {
	g.mu.Lock()
	putErr := g.PutErr
	g.mu.Unlock()
	if putErr != nil {
		return "", putErr
	}

	var buf bytes.Buffer
	if _, err := writeChunks(r, DefaultChunkSize, func(_ int, chunk []byte) error {
		_, err := buf.Write(chunk)
		return err
	}); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.blobs[name] = buf.Bytes()
	g.types[name] = contentType
	return memoryURLPrefix + name, nil
}

func (g *MemoryGateway) Delete(_ context.Context, url string) (bool, error) {
	name, err := memoryName(url)
	if err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.DeleteErr != nil {
		return false, g.DeleteErr
	}
	if _, ok := g.blobs[name]; !ok {
		return false, nil
	}
	delete(g.blobs, name)
	delete(g.types, name)
	return true, nil
}

func (g *MemoryGateway) Exists(_ context.Context, url string) (bool, error) {
	name, err := memoryName(url)
	if err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.blobs[name]
	return ok, nil
}

// Len returns the number of stored blobs.
func (g *MemoryGateway) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.blobs)
}

// Content returns the bytes and content type stored behind url.
func (g *MemoryGateway) Content(url string) ([]byte, string, bool) {
	name, err := memoryName(url)
	if err != nil {
		return nil, "", false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.blobs[name]
	return data, g.types[name], ok
}

func memoryName(url string) (string, error) {
	if !strings.HasPrefix(url, memoryURLPrefix) {
		return "", errors.Join(ErrInvalidURL, errors.New(url))
	}
	return strings.TrimPrefix(url, memoryURLPrefix), nil
}
