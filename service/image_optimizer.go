package service

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"garment-studio/svgcolor"
)

const (
	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// ThumbnailCache keeps optimized design previews on disk
type ThumbnailCache struct {
	dir string
}

// NewThumbnailCache ensures the cache directory exists, creates it if it doesn't
func NewThumbnailCache(dir string) (*ThumbnailCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &ThumbnailCache{dir: dir}, nil
}

// Path returns the cache file path for a given design ID and size
func (c *ThumbnailCache) Path(designID, size string) string {
	return filepath.Join(c.dir, fmt.Sprintf("design_%s_%s.jpg", filepath.Base(designID), size))
}

// Read returns a cached image, ok=false when it is not cached
func (c *ThumbnailCache) Read(designID, size string) ([]byte, bool) {
	data, err := os.ReadFile(c.Path(designID, size))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Save stores an optimized image in the cache
func (c *ThumbnailCache) Save(designID, size string, data []byte) error {
	path := c.Path(designID, size)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	zap.L().Debug("✓ Image cached", zap.String("path", path))
	return nil
}

// OptimizeImage converts a design image to a JPEG preview bounded by the size preset.
// size: "thumb" or "medium". Vector designs are rasterized first.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	maxDim, quality := maxSizeMedium, qualityMedium
	switch size {
	case "thumb":
		maxDim, quality = maxSizeThumb, qualityThumb
	case "medium":
	default:
		zap.L().Warn("⚠️ Unknown size, defaulting to medium", zap.String("size", size))
	}

	var img image.Image
	if svgcolor.IsVectorAsset("", imageData) {
		raster, err := rasterizeSVG(string(imageData), maxDim)
		if err != nil {
			return nil, fmt.Errorf("failed to rasterize svg: %w", err)
		}
		img = raster
	} else {
		decoded, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		img = decoded
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	// JPEG has no alpha; flatten transparent designs onto white
	flattened := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), image.White)
	flattened = imaging.Overlay(flattened, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flattened, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	zap.L().Debug("✓ Image optimized", zap.String("size", size), zap.Int("quality", quality), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
