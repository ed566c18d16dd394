package service

import (
	"context"
)

// SyncServiceInterface defines the contract for design catalog synchronization
type SyncServiceInterface interface {
	SyncDesigns(ctx context.Context, folderID string) (SyncStats, error)
}
