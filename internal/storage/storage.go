package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/creatorly/styletrain/internal/config"
)

// ObjectStorage is the durable store for extracted audio samples. Keys are
// scoped per user: {userId}/{videoId}.mp3.
type ObjectStorage interface {
	// Upload stores an object and returns nothing; use GetURL for the
	// retrievable reference.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves an object.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the retrievable reference for a stored object.
	GetURL(key string) string

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists.
	Exists(ctx context.Context, key string) (bool, error)

	// EnsureBucket creates the bucket if it doesn't exist.
	EnsureBucket(ctx context.Context) error
}

// AudioKey builds the canonical storage key for a user's extracted audio.
func AudioKey(userID, videoID string) string {
	return fmt.Sprintf("%s/%s.mp3", userID, videoID)
}

// New creates an ObjectStorage from configuration. The backend is explicit
// ("minio" or "s3") rather than sniffed from the endpoint.
func New(cfg *config.StorageConfig) (ObjectStorage, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Storage(cfg)
	case "minio", "":
		return NewMinIOStorage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
