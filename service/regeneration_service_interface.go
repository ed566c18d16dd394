package service

import (
	"context"

	"garment-studio/models"
)

// RegenerationServiceInterface defines the contract for re-capturing placed orders
type RegenerationServiceInterface interface {
	RegenerateSingle(ctx context.Context, orderID string) models.RegenerationResult
	RegenerateBatch(ctx context.Context, orderIDs []string, onProgress func(models.RegenerationProgress)) []models.RegenerationResult
}
