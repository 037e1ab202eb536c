package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/pkg/errors"

	"github.com/vnkhanh/podcastr-backend/config"
)

// BlobStore keeps binary podcast assets (audio, thumbnails) addressed by an
// opaque storage id.
type BlobStore interface {
	Upload(ctx context.Context, storageID string, data io.Reader, contentType string) error
	// URL returns an empty string when the blob does not exist.
	URL(ctx context.Context, storageID string) (string, error)
	Delete(ctx context.Context, storageID string) error
}

// New picks the blob store configured by STORAGE_DRIVER.
func New(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageDriver {
	case "", "supabase":
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket)
	case "s3":
		return NewS3Store(cfg)
	case "memory":
		return NewMemoryStore(cfg.PublicURL + "/blobs"), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ObjectKey builds a fresh storage id such as "audio/go-weekly-<uuid>.mp3".
func ObjectKey(folder, name, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	base := uuid.New().String()
	if s := slug.Make(name); s != "" {
		if len(s) > 60 {
			s = strings.Trim(s[:60], "-")
		}
		base = s + "-" + base
	}
	return fmt.Sprintf("%s/%s%s", folder, base, strings.ToLower(ext))
}
