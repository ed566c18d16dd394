package service

import (
	"context"
	"fmt"
	"path"
	"strings"

	"garment-studio/config"
	"garment-studio/models"
)

// SessionCaptureKey is the storage key of a capture taken during add-to-cart
func SessionCaptureKey(sessionID string, side models.Side) string {
	return path.Join("captures", "sessions", sessionID, string(side)+".png")
}

// OrderCaptureKey is the storage key of a capture regenerated for a placed order
func OrderCaptureKey(orderID string, side models.Side) string {
	return path.Join("captures", "orders", orderID, string(side)+".png")
}

// withVersion tags url with a version so the newest capture supersedes cached copies
func withVersion(url, version string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "v=" + version
}

// NewArtifactStore builds the store selected by cfg.Backend
func NewArtifactStore(ctx context.Context, cfg config.StorageConfig, publicBaseURL string, drive DriveServiceInterface) (ArtifactStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "s3":
		return NewS3ArtifactStore(ctx, cfg.S3)
	case "drive":
		if drive == nil {
			return nil, fmt.Errorf("drive storage requires a drive service")
		}
		return NewDriveArtifactStore(drive, cfg.Drive.FolderID)
	case "", "local":
		return NewLocalArtifactStore(cfg.LocalDir, publicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
