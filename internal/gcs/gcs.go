package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/raine/home-inventory/internal/inventory"
	"github.com/rs/zerolog/log"
)

// Uploader is the blob store gateway over Google Cloud Storage. The object
// key is the media filename, so re-uploading the same name overwrites the
// object.
type Uploader struct {
	client *storage.Client
	bucket string
}

// NewUploader creates a GCS uploader for the given bucket. Credentials come
// from the application default chain.
func NewUploader(ctx context.Context, bucket string) (*Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name must not be empty")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

// Upload implements inventory.BlobStore. Any transport, auth or quota
// failure is returned as an UploadError; retries are the caller's concern.
func (u *Uploader) Upload(ctx context.Context, data []byte, name string) (inventory.BlobLocator, error) {
	if name == "" {
		return inventory.BlobLocator{}, &inventory.UploadError{Name: name, Cause: fmt.Errorf("object name must not be empty")}
	}

	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return inventory.BlobLocator{}, &inventory.UploadError{Name: name, Cause: err}
	}
	if err := w.Close(); err != nil {
		return inventory.BlobLocator{}, &inventory.UploadError{Name: name, Cause: err}
	}

	uri := fmt.Sprintf("gs://%s/%s", u.bucket, name)
	log.Info().Str("uri", uri).Int("bytes", len(data)).Msg("uploaded object to GCS")

	return inventory.BlobLocator{URI: uri}, nil
}

// Close releases the underlying client.
func (u *Uploader) Close() error {
	return u.client.Close()
}
