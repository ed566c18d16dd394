package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"garment-studio/models"
	"garment-studio/repository"
)

// DefaultRegenerationConcurrency bounds the orders re-captured in parallel by a batch
const DefaultRegenerationConcurrency = 2

// RegenerationService re-captures the artifacts of orders whose captures are missing or stale
type RegenerationService struct {
	repo        repository.OrderCustomizationRepositoryInterface
	capture     *CaptureService
	concurrency int
}

var _ RegenerationServiceInterface = (*RegenerationService)(nil)

// NewRegenerationService creates a regeneration service running up to concurrency orders at once
func NewRegenerationService(repo repository.OrderCustomizationRepositoryInterface, capture *CaptureService, concurrency int) *RegenerationService {
	if concurrency <= 0 {
		concurrency = DefaultRegenerationConcurrency
	}
	return &RegenerationService{repo: repo, capture: capture, concurrency: concurrency}
}

// RegenerateSingle re-captures one order and stores the new artifact references, both in the
// capture columns and nested in the customization record. Placements are left as loaded.
// Failures are reported in the result and recorded as an attempt, never as a partial write.
func (s *RegenerationService) RegenerateSingle(ctx context.Context, orderID string) models.RegenerationResult {
	result := models.RegenerationResult{OrderID: orderID}

	oc, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	outcome, err := s.capture.CaptureOrder(ctx, orderID, &oc.Mockup, oc.Color, &oc.Customization)
	if err != nil {
		return s.failed(ctx, result, err.Error())
	}
	if len(outcome.Artifacts) == 0 {
		return s.failed(ctx, result, "order has no customized side to capture")
	}

	if err := s.repo.UpdateCaptures(ctx, orderID, outcome.Record, outcome.CapturedAt); err != nil {
		return s.failed(ctx, result, err.Error())
	}

	result.Success = true
	result.FrontURL = outcome.Result.FrontURL
	result.BackURL = outcome.Result.BackURL
	zap.L().Info("🔄 Order captures regenerated", zap.String("orderId", orderID))
	return result
}

func (s *RegenerationService) failed(ctx context.Context, result models.RegenerationResult, msg string) models.RegenerationResult {
	result.Error = msg
	if err := s.repo.MarkCaptureFailed(context.WithoutCancel(ctx), result.OrderID, time.Now()); err != nil {
		zap.L().Warn("⚠️ Could not record capture attempt", zap.String("orderId", result.OrderID), zap.Error(err))
	}
	return result
}

// RegenerateBatch regenerates every order, keeping input order in the results. onProgress is
// called after each order completes with a strictly increasing Current. A failing order never
// aborts the batch; a cancelled ctx marks the remaining orders as failed.
func (s *RegenerationService) RegenerateBatch(ctx context.Context, orderIDs []string, onProgress func(models.RegenerationProgress)) []models.RegenerationResult {
	results := make([]models.RegenerationResult, len(orderIDs))
	total := len(orderIDs)
	zap.L().Info("🔄 Starting regeneration batch", zap.Int("orders", total), zap.Int("concurrency", s.concurrency))

	var (
		mu      sync.Mutex
		current int
	)
	report := func(orderID string) {
		mu.Lock()
		defer mu.Unlock()
		current++
		if onProgress != nil {
			onProgress(models.RegenerationProgress{Current: current, Total: total, CurrentOrderID: orderID})
		}
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, orderID := range orderIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = models.RegenerationResult{OrderID: orderID, Error: err.Error()}
			} else {
				results[i] = s.RegenerateSingle(ctx, orderID)
			}
			if !results[i].Success {
				zap.L().Warn("⚠️ Order regeneration failed", zap.String("orderId", orderID), zap.String("error", results[i].Error))
			}
			report(orderID)
			return nil
		})
	}
	_ = g.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	zap.L().Info("🎉 Regeneration batch completed", zap.Int("succeeded", succeeded), zap.Int("failed", total-succeeded))
	return results
}

// describeOrders is used in log fields of sweeps
func describeOrders(ids []string) string {
	if len(ids) <= 5 {
		return fmt.Sprint(ids)
	}
	return fmt.Sprintf("%v and %d more", ids[:5], len(ids)-5)
}
