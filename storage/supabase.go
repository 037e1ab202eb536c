package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore keeps blobs in one Supabase Storage bucket.
// The storage id is the object path inside the bucket.
type SupabaseStore struct {
	client     *storage_go.Client
	baseURL    string
	bucket     string
	httpClient *http.Client
}

func NewSupabaseStore(supabaseURL, supabaseKey, bucket string) (*SupabaseStore, error) {
	if supabaseURL == "" || supabaseKey == "" {
		return nil, errors.New("SUPABASE_URL or SUPABASE_KEY is not configured")
	}
	if bucket == "" {
		bucket = "uploads"
	}
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStore{
		client:     storage_go.NewClient(baseURL+"/storage/v1", supabaseKey, nil),
		baseURL:    baseURL,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *SupabaseStore) Upload(ctx context.Context, storageID string, data io.Reader, contentType string) error {
	options := storage_go.FileOptions{
		ContentType: &contentType,
	}
	if _, err := s.client.UploadFile(s.bucket, storageID, data, options); err != nil {
		return errors.Wrapf(err, "upload %s to supabase", storageID)
	}
	return nil
}

func (s *SupabaseStore) publicURL(storageID string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, (&url.URL{Path: storageID}).EscapedPath())
}

// URL probes the public object URL; any non-2xx answer means the object is gone.
func (s *SupabaseStore) URL(ctx context.Context, storageID string) (string, error) {
	if storageID == "" {
		return "", nil
	}
	publicURL := s.publicURL(storageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, publicURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "build head request")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "head %s", storageID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil
	}
	return publicURL, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{storageID}); err != nil {
		return errors.Wrapf(err, "remove %s from supabase", storageID)
	}
	return nil
}
