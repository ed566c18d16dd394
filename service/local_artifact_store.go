package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalArtifactStore writes captures below a directory. Keys start with "captures/", so
// serving the directory at /captures/ without stripping the prefix resolves the returned URLs.
type LocalArtifactStore struct {
	dir     string
	baseURL string
}

var _ ArtifactStore = (*LocalArtifactStore)(nil)

// NewLocalArtifactStore creates dir if needed
func NewLocalArtifactStore(dir, baseURL string) (*LocalArtifactStore, error) {
	if dir == "" {
		return nil, errors.New("local storage directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalArtifactStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the root directory of the store
func (s *LocalArtifactStore) Dir() string {
	return s.dir
}

// Put writes data atomically, replacing any previous file at key
func (s *LocalArtifactStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+key)), "/")
	if rel == "" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	target := filepath.Join(s.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".capture-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write capture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write capture: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to store capture: %w", err)
	}

	zap.L().Debug("💾 Stored capture", zap.String("path", target), zap.String("contentType", contentType))
	return s.baseURL + "/" + rel, nil
}
