package service

import (
	"context"
)

// Renderer rasterizes a composed scene into a PNG
type Renderer interface {
	Render(ctx context.Context, scene Scene) ([]byte, error)
}
