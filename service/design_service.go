package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"garment-studio/customization"
	"garment-studio/models"
	"garment-studio/repository"
)

// ErrInvalidThumbnailSize is returned for thumbnail sizes other than thumb and medium
var ErrInvalidThumbnailSize = errors.New("invalid thumbnail size")

// DesignService serves the candidate design catalog
type DesignService struct {
	repo    repository.DesignRepositoryInterface
	drive   DriveServiceInterface
	fetcher customization.AssetFetcher
	cache   *ThumbnailCache
}

// NewDesignService creates a design service. drive may be nil when Drive is not configured.
func NewDesignService(repo repository.DesignRepositoryInterface, drive DriveServiceInterface, fetcher customization.AssetFetcher, cache *ThumbnailCache) *DesignService {
	return &DesignService{repo: repo, drive: drive, fetcher: fetcher, cache: cache}
}

// List returns the candidate designs, optionally filtered by category
func (s *DesignService) List(ctx context.Context, category string) ([]models.Design, error) {
	return s.repo.List(ctx, category)
}

// Get returns one design
func (s *DesignService) Get(ctx context.Context, id string) (*models.Design, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a synthetic design for a user upload or an AI-generated image
func (s *DesignService) Create(ctx context.Context, req models.CreateDesignRequest) (*models.Design, error) {
	d := &models.Design{
		Name:     strings.TrimSpace(req.Name),
		ImageURL: strings.TrimSpace(req.ImageURL),
		Category: strings.TrimSpace(req.Category),
		Source:   req.Source,
	}
	if d.Source == "" {
		d.Source = models.DesignSourceUpload
	}
	if d.Category == "" {
		d.Category = d.Source
	}
	if _, err := s.repo.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to register design: %w", err)
	}
	zap.L().Info("🆕 Synthetic design registered", zap.String("id", d.ID), zap.String("source", d.Source))
	return d, nil
}

// Thumbnail returns an optimized JPEG preview of a design, served from cache when possible
func (s *DesignService) Thumbnail(ctx context.Context, id, size string) ([]byte, error) {
	if size == "" {
		size = "thumb"
	}
	if size != "thumb" && size != "medium" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidThumbnailSize, size)
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, ok := s.cache.Read(d.ID, size); ok {
			return data, nil
		}
	}

	var raw []byte
	if d.DriveFileID != "" && s.drive != nil {
		raw, err = s.drive.DownloadFile(ctx, d.DriveFileID)
	} else {
		raw, err = s.fetcher.Fetch(ctx, d.ImageURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download design %s: %w", d.ID, err)
	}

	optimized, err := OptimizeImage(raw, size)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Save(d.ID, size, optimized); err != nil {
			zap.L().Warn("⚠️ Failed to cache thumbnail", zap.String("designId", d.ID), zap.Error(err))
		}
	}
	return optimized, nil
}
