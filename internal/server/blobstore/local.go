package blobstore

import (
	"context"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/admissions/internal/filex"
)

// LocalStore writes attachments into a directory on the server's disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStore{dir: abs}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if key == "" || key != SanitizeFilename(key) {
		return "", ErrInvalidKey
	}

	path := filepath.Join(s.dir, key)
	if _, err := filex.WriteAtomic(path, r); err != nil {
		return "", err
	}
	return path, nil
}
