package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// BlobStore is a key/value store of opaque blobs
type BlobStore interface {
	// Get returns the blob stored under key. ok is false when nothing is stored.
	Get(key string) (blob []byte, ok bool, err error)
	// Set replaces the blob stored under key.
	Set(key string, blob []byte) error
}

// Backend is a BlobStore that holds resources until closed
type Backend interface {
	BlobStore
	io.Closer
}

// Open creates the blob backend named by backend. dataDir holds the file
// backend's blobs; sqlitePath defaults to notes.db inside dataDir.
func Open(backend, dataDir, sqlitePath string) (Backend, error) {
	switch backend {
	case "", BackendFile:
		return NewFileBlobStore(dataDir), nil
	case BackendSQLite:
		if sqlitePath == "" {
			sqlitePath = filepath.Join(dataDir, "notes.db")
		}
		return OpenSQLiteBlobStore(sqlitePath)
	case BackendMemory:
		return NewMemoryBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// MemoryBlobStore keeps blobs in process memory
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates an empty in-memory blob store
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Get returns a copy of the blob stored under key
func (m *MemoryBlobStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

// Set stores a copy of blob under key
func (m *MemoryBlobStore) Set(key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

// Close is a no-op
func (m *MemoryBlobStore) Close() error {
	return nil
}
