package repository

import (
	"context"
	"time"

	"garment-studio/models"
)

// DesignRepositoryInterface defines the contract for candidate design operations
type DesignRepositoryInterface interface {
	List(ctx context.Context, category string) ([]models.Design, error)
	GetByID(ctx context.Context, id string) (*models.Design, error)
	ExistsByDriveFileID(ctx context.Context, driveFileID string) (bool, error)
	Insert(ctx context.Context, d *models.Design) (bool, error)
}

// OrderCustomizationRepositoryInterface defines the contract for placed order customizations
type OrderCustomizationRepositoryInterface interface {
	Save(ctx context.Context, oc *models.OrderCustomization) error
	GetByOrderID(ctx context.Context, orderID string) (*models.OrderCustomization, error)
	UpdateCaptures(ctx context.Context, orderID string, record *models.CustomizationRecord, capturedAt time.Time) error
	MarkCaptureFailed(ctx context.Context, orderID string, at time.Time) error
	ListMissingCaptures(ctx context.Context, limit int) ([]string, error)
}
