package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const blobExt = ".json"

// FileBlobStore stores each blob as <key>.json inside a directory
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore creates a file blob store rooted at dir.
// An empty dir resolves to ~/.pocket-notes.
func NewFileBlobStore(dir string) *FileBlobStore {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".pocket-notes")
		}
	}
	return &FileBlobStore{dir: dir}
}

// Dir returns the directory blobs are written to
func (f *FileBlobStore) Dir() string {
	return f.dir
}

// Get reads the blob for key. A missing file is not an error.
func (f *FileBlobStore) Get(key string) ([]byte, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob file: %w", err)
	}
	return data, true, nil
}

// Set writes the blob to a temp file and renames it over <key>.json, so
// readers see either the old or the new blob and never a partial one.
func (f *FileBlobStore) Set(key string, blob []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write blob file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync blob file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close blob file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace blob file: %w", err)
	}
	return nil
}

// Close is a no-op
func (f *FileBlobStore) Close() error {
	return nil
}

func (f *FileBlobStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(f.dir, key+blobExt), nil
}
