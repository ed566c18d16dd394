package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"garment-studio/models"
	"garment-studio/repository"
)

// SyncStats summarizes a synchronization run.
// Inserted = new rows created, Skipped = already existed (by drive_file_id), Total = designs seen in Drive.
type SyncStats struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// SyncService handles synchronization of candidate designs between Google Drive and PostgreSQL
type SyncService struct {
	driveService DriveServiceInterface
	repository   repository.DesignRepositoryInterface
}

// Ensure SyncService implements SyncServiceInterface
var _ SyncServiceInterface = (*SyncService)(nil)

// NewSyncService creates a new SyncService
func NewSyncService(driveService DriveServiceInterface, repo repository.DesignRepositoryInterface) *SyncService {
	return &SyncService{driveService: driveService, repository: repo}
}

// SyncDesigns inserts the designs of a Drive folder that are not yet in the catalog.
// A failing design is counted and skipped; only listing failures abort the run.
func (s *SyncService) SyncDesigns(ctx context.Context, folderID string) (SyncStats, error) {
	var stats SyncStats
	if folderID == "" {
		return stats, fmt.Errorf("design folder id is required")
	}
	zap.L().Info("🔄 Starting design synchronization", zap.String("folderId", folderID))

	designs, err := s.driveService.ListDesigns(ctx, folderID)
	if err != nil {
		return stats, fmt.Errorf("failed to list designs from Drive: %w", err)
	}
	stats.Total = len(designs)
	zap.L().Info("📦 Processing designs from Google Drive", zap.Int("count", stats.Total))

	for i := range designs {
		d := &designs[i]
		exists, err := s.repository.ExistsByDriveFileID(ctx, d.DriveFileID)
		if err != nil {
			zap.L().Error("❌ Error checking existence", zap.String("driveFileId", d.DriveFileID), zap.Error(err))
			stats.Failed++
			continue
		}
		if exists {
			zap.L().Debug("⏭️ Skipping design (already exists in database)", zap.String("driveFileId", d.DriveFileID))
			stats.Skipped++
			continue
		}

		if d.Source == "" {
			d.Source = models.DesignSourceCatalog
		}
		inserted, err := s.repository.Insert(ctx, d)
		if err != nil {
			zap.L().Error("❌ Error inserting design", zap.String("driveFileId", d.DriveFileID), zap.Error(err))
			stats.Failed++
			continue
		}
		if !inserted {
			stats.Skipped++
			continue
		}
		zap.L().Info("🆕 Design added", zap.String("driveFileId", d.DriveFileID), zap.String("name", d.Name), zap.String("category", d.Category))
		stats.Inserted++
	}

	zap.L().Info("🎉 Synchronization completed",
		zap.Int("inserted", stats.Inserted),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("total", stats.Total),
	)
	return stats, nil
}
