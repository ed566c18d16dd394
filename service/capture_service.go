package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"garment-studio/models"
)

// ErrCaptureFailed wraps any render or upload failure of a production capture
var ErrCaptureFailed = errors.New("capture failed")

// CaptureRequest describes one production capture
type CaptureRequest struct {
	// OwnerKey serializes captures: at most one runs per owner, later ones queue
	OwnerKey string
	// StorageKey names the artifact of a side
	StorageKey func(side models.Side) string
	Mockup     *models.Mockup
	Color      string
	Record     *models.CustomizationRecord
}

// CaptureOutcome is the enriched record plus the per-side artifacts of a capture
type CaptureOutcome struct {
	Record     *models.CustomizationRecord
	Result     models.CaptureResult
	Artifacts  []models.CaptureArtifact
	CapturedAt time.Time
}

// CaptureService renders high-resolution composites of the customized sides and stores them
type CaptureService struct {
	composer *Composer
	renderer Renderer
	store    ArtifactStore
	guard    *captureGuard
	now      func() time.Time
	version  func() string
}

// NewCaptureService creates a capture service
func NewCaptureService(composer *Composer, renderer Renderer, store ArtifactStore) *CaptureService {
	return &CaptureService{
		composer: composer,
		renderer: renderer,
		store:    store,
		guard:    newCaptureGuard(),
		now:      time.Now,
		version:  func() string { return uuid.NewString()[:8] },
	}
}

// CaptureSession captures the record of a live customization session
func (s *CaptureService) CaptureSession(ctx context.Context, sessionID string, mockup *models.Mockup, color string, record *models.CustomizationRecord) (*CaptureOutcome, error) {
	return s.Capture(ctx, CaptureRequest{
		OwnerKey:   "session:" + sessionID,
		StorageKey: func(side models.Side) string { return SessionCaptureKey(sessionID, side) },
		Mockup:     mockup,
		Color:      color,
		Record:     record,
	})
}

// CaptureOrder captures the stored customization of a placed order
func (s *CaptureService) CaptureOrder(ctx context.Context, orderID string, mockup *models.Mockup, color string, record *models.CustomizationRecord) (*CaptureOutcome, error) {
	return s.Capture(ctx, CaptureRequest{
		OwnerKey:   "order:" + orderID,
		StorageKey: func(side models.Side) string { return OrderCaptureKey(orderID, side) },
		Mockup:     mockup,
		Color:      color,
		Record:     record,
	})
}

// Capture renders and stores every side holding a design or text. Sides run concurrently; the
// first failure cancels the other side and is returned wrapped in ErrCaptureFailed. The input
// record is never modified; the outcome carries an enriched copy.
func (s *CaptureService) Capture(ctx context.Context, req CaptureRequest) (*CaptureOutcome, error) {
	if req.Record == nil || req.Mockup == nil {
		return nil, fmt.Errorf("%w: record and mockup are required", ErrCaptureFailed)
	}

	release, err := s.guard.Acquire(ctx, req.OwnerKey)
	if err != nil {
		return nil, fmt.Errorf("%w: waiting for previous capture: %w", ErrCaptureFailed, err)
	}
	defer release()

	var sides []models.Side
	for _, side := range models.Sides {
		if req.Record.HasContent(side) {
			sides = append(sides, side)
		}
	}

	capturedAt := s.now().UTC()
	version := s.version()
	artifacts := make([]models.CaptureArtifact, len(sides))

	g, gctx := errgroup.WithContext(ctx)
	for i, side := range sides {
		g.Go(func() error {
			url, err := s.captureSide(gctx, req, side)
			if err != nil {
				return fmt.Errorf("%s: %w", side, err)
			}
			artifacts[i] = models.CaptureArtifact{Side: side, URL: withVersion(url, version), CapturedAt: capturedAt}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		zap.L().Error("❌ Capture failed", zap.String("owner", req.OwnerKey), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	outcome := &CaptureOutcome{Record: req.Record.Clone(), Artifacts: artifacts, CapturedAt: capturedAt}
	for _, a := range artifacts {
		outcome.Record.ApplyArtifact(a)
		if a.Side == models.SideBack {
			outcome.Result.BackURL = a.URL
		} else {
			outcome.Result.FrontURL = a.URL
		}
	}

	zap.L().Info("✅ Capture completed",
		zap.String("owner", req.OwnerKey),
		zap.Int("sides", len(artifacts)),
		zap.String("frontUrl", outcome.Result.FrontURL),
		zap.String("backUrl", outcome.Result.BackURL),
	)
	return outcome, nil
}

func (s *CaptureService) captureSide(ctx context.Context, req CaptureRequest, side models.Side) (string, error) {
	scene, err := s.composer.Compose(req.Mockup, req.Color, side, req.Record.Side(side))
	if err != nil {
		return "", err
	}
	png, err := s.renderer.Render(ctx, scene)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	url, err := s.store.Put(ctx, req.StorageKey(side), png, "image/png")
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return url, nil
}

// Wait blocks until running captures finish or ctx ends
func (s *CaptureService) Wait(ctx context.Context) {
	s.guard.WaitAll(ctx)
}
