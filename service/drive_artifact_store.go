package service

import (
	"context"
	"errors"
	"fmt"
)

// DriveArtifactStore stores captures as files of a shared Google Drive folder
type DriveArtifactStore struct {
	drive    DriveServiceInterface
	folderID string
}

var _ ArtifactStore = (*DriveArtifactStore)(nil)

// NewDriveArtifactStore creates a store writing into folderID
func NewDriveArtifactStore(drive DriveServiceInterface, folderID string) (*DriveArtifactStore, error) {
	if folderID == "" {
		return nil, errors.New("drive capture folder id is required")
	}
	return &DriveArtifactStore{drive: drive, folderID: folderID}, nil
}

// Put uploads data as a Drive file named after key
func (s *DriveArtifactStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	id, err := s.drive.UploadFile(ctx, s.folderID, driveFileName(key), contentType, data)
	if err != nil {
		return "", fmt.Errorf("failed to store %s in drive: %w", key, err)
	}
	return DriveFileURL(id), nil
}
