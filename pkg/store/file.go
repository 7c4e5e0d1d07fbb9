package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Draaaaaaven/ecad/pkg/errors"
)

// FileStore keeps each value in a file. Keys are slash-separated paths
// relative to the root directory; with an empty root they are used as given,
// so the CLI can address archives by their path on disk.
type FileStore struct {
	root string
}

// NewFileStore creates a file store under root, creating the directory if
// needed. An empty root resolves keys against the working directory.
func NewFileStore(root string) (*FileStore, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, ioError(err, "create", root)
		}
	}
	return &FileStore{root: root}, nil
}

// Get reads the file for key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ioError(err, "read", key)
	}
	return data, true, nil
}

// Put writes data to a temporary file next to the target and renames it into
// place, so readers never observe a partial archive.
func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioError(err, "create", dir)
	}
	tmp, err := os.CreateTemp(dir, ".ecad-*")
	if err != nil {
		return ioError(err, "write", key)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return ioError(err, "write", key)
	}
	if err := tmp.Close(); err != nil {
		return ioError(err, "write", key)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ioError(err, "write", key)
	}
	return nil
}

// Delete removes the file for key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return ioError(err, "delete", key)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(key string) (string, error) {
	if s.root == "" {
		if key == "" {
			return "", errors.New(errors.ErrCodeInvalidPath, "key cannot be empty")
		}
		return filepath.Clean(key), nil
	}
	if err := errors.ValidateStoreKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

var _ Store = (*FileStore)(nil)
