// Package media stores uploaded recipe images behind a small Store
// interface so the backing location (local disk, S3) is a deployment
// concern rather than an application one.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists named image blobs. Names are opaque filenames chosen
// by the caller (uuid + extension); Remove of a missing name is a no-op.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
	URL(name string) string
}

// LocalStore writes images under a base directory. Files are served by
// the HTTP layer at publicURL.
type LocalStore struct {
	basePath  string
	publicURL string
}

func NewLocalStore(basePath, publicURL string) (*LocalStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("media base path cannot be empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &LocalStore{
		basePath:  basePath,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("writing image file: %w", err)
	}
	return nil
}

func (s *LocalStore) Remove(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing image file: %w", err)
	}
	return nil
}

func (s *LocalStore) URL(name string) string {
	return s.publicURL + "/" + name
}

// Dir returns the directory images are written to, for the file server.
func (s *LocalStore) Dir() string {
	return s.basePath
}

func (s *LocalStore) path(name string) string {
	// Names are generated internally, but never trust them with path
	// separators anyway.
	return filepath.Join(s.basePath, filepath.Base(name))
}

var _ Store = (*LocalStore)(nil)
