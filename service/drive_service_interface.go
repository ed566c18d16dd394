package service

import (
	"context"

	"garment-studio/models"
)

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	ListDesigns(ctx context.Context, folderID string) ([]models.Design, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
	UploadFile(ctx context.Context, folderID, name, contentType string, data []byte) (string, error)
}
