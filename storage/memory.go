package storage

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore keeps blobs in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string][]byte
	types   map[string]string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		blobs:   make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *MemoryStore) Upload(ctx context.Context, storageID string, data io.Reader, contentType string) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return errors.Wrap(err, "read upload body")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[storageID] = buf
	m.types[storageID] = contentType
	return nil
}

func (m *MemoryStore) URL(ctx context.Context, storageID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.blobs[storageID]; !ok {
		return "", nil
	}
	return m.baseURL + "/" + storageID, nil
}

func (m *MemoryStore) Delete(ctx context.Context, storageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, storageID)
	delete(m.types, storageID)
	return nil
}

// Get returns the stored bytes and content type.
func (m *MemoryStore) Get(storageID string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.blobs[storageID]
	return b, m.types[storageID], ok
}
