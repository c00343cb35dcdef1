package gcs

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// BlobStore writes objects into a single bucket and exposes them under a
// public base URL (a CDN domain or the bucket's storage endpoint).
type BlobStore struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewBlobStore(client *storage.Client, bucket, baseURL string) *BlobStore {
	return &BlobStore{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

// Upload streams r into bucket/path with the provided contentType and
// returns the object's public URL.
func (b *BlobStore) Upload(ctx context.Context, path, contentType string, r io.Reader) (string, error) {
	wc := b.client.Bucket(b.bucket).Object(path).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return b.PublicURL(path), nil
}

// PublicURL builds a public URL for an object (assuming public read access)
func (b *BlobStore) PublicURL(path string) string {
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}
