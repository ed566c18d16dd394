package service

import (
	"context"
)

// ArtifactStore persists rendered captures and returns a URL that serves them
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
