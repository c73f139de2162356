package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"net/url"
	"strings"

	"dojo/internal/observability"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/streaming"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"go.opentelemetry.io/otel/attribute"
)

// AzureGateway stores blobs in one Azure Blob Storage container. Uploads are
// staged block by block and committed once the whole body has been read.
type AzureGateway struct {
	container *container.Client
	chunkSize int
}

// NewAzureGateway connects with a storage connection string and makes sure
// the container exists.
func NewAzureGateway(ctx context.Context, connectionString, containerName string, chunkSize int) (*AzureGateway, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}

	g := &AzureGateway{
		container: client.ServiceClient().NewContainerClient(containerName),
		chunkSize: chunkSize,
	}

	if _, err := g.container.Create(ctx, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("create container %q: %w", containerName, err)
	}
	return g, nil
}

// blockID encodes the block index; Azure requires equal-length base64 ids per blob.
func blockID(index int) string {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(index))
	return base64.StdEncoding.EncodeToString(raw[:])
}

func (g *AzureGateway) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	span, ctx := observability.StartClientSpan(ctx, "storage.azure.put", attribute.String("blob.name", name))
	defer span.End()

	bb := g.container.NewBlockBlobClient(name)

	var ids []string
	total, err := writeChunks(r, g.chunkSize, func(index int, chunk []byte) error {
		id := blockID(index)
		body := streaming.NopCloser(bytes.NewReader(chunk))
		if _, err := bb.StageBlock(ctx, id, body, nil); err != nil {
			return fmt.Errorf("stage block %d: %w", index, err)
		}
		ids = append(ids, id)
		return nil
	})
	if err == nil {
		_, err = bb.CommitBlockList(ctx, ids, &blockblob.CommitBlockListOptions{
			HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
		})
	}

	observability.RecordStorage("put", err)
	if err != nil {
		span.SetError(err)
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	observability.StorageUploadBytes.Add(float64(total))
	span.AddAttributes(attribute.Int64("blob.size", total), attribute.Int("blob.blocks", len(ids)))
	return bb.URL(), nil
}

func (g *AzureGateway) Delete(ctx context.Context, rawURL string) (bool, error) {
	name, err := g.blobName(rawURL)
	if err != nil {
		return false, err
	}

	span, ctx := observability.StartClientSpan(ctx, "storage.azure.delete", attribute.String("blob.name", name))
	defer span.End()

	_, err = g.container.NewBlobClient(name).Delete(ctx, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		observability.RecordStorage("delete", nil)
		return false, nil
	}
	observability.RecordStorage("delete", err)
	if err != nil {
		span.SetError(err)
		return false, fmt.Errorf("delete %s: %w", name, err)
	}
	return true, nil
}

func (g *AzureGateway) Exists(ctx context.Context, rawURL string) (bool, error) {
	name, err := g.blobName(rawURL)
	if err != nil {
		return false, err
	}

	_, err = g.container.NewBlobClient(name).GetProperties(ctx, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return true, nil
}

// blobName extracts the blob name from a URL issued by this container.
func (g *AzureGateway) blobName(rawURL string) (string, error) {
	return blobNameFromURL(g.container.URL(), rawURL)
}

func blobNameFromURL(containerURL, rawURL string) (string, error) {
	base, err := url.Parse(containerURL)
	if err != nil {
		return "", fmt.Errorf("parse container url: %w", err)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Host != base.Host {
		return "", ErrInvalidURL
	}

	prefix := strings.TrimSuffix(base.Path, "/") + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", ErrInvalidURL
	}
	name, err := url.PathUnescape(strings.TrimPrefix(u.Path, prefix))
	if err != nil || name == "" {
		return "", ErrInvalidURL
	}
	return name, nil
}
