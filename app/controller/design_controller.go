package controller

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"garment-studio/models"
	"garment-studio/service"
)

// DesignController handles HTTP requests for the candidate design catalog
type DesignController struct {
	designs       *service.DesignService
	syncService   service.SyncServiceInterface
	driveFolderID string
}

// NewDesignController creates a new DesignController.
// syncService may be nil when Google Drive is not configured.
func NewDesignController(designs *service.DesignService, syncService service.SyncServiceInterface, driveFolderID string) *DesignController {
	return &DesignController{
		designs:       designs,
		syncService:   syncService,
		driveFolderID: driveFolderID,
	}
}

// List handles GET /designs?category=
func (c *DesignController) List(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	designs, err := c.designs.List(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	if designs == nil {
		designs = []models.Design{}
	}
	writeJSON(w, http.StatusOK, designs)
}

// Create handles POST /designs/uploads
// Registers an uploaded or AI-generated image so it can be placed like a catalog design
func (c *DesignController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDesignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	design, err := c.designs.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, design)
}

// Thumbnail handles GET /designs/{id}/thumb?size=thumb|medium
func (c *DesignController) Thumbnail(w http.ResponseWriter, r *http.Request) {
	data, err := c.designs.Thumbnail(r.Context(), r.PathValue("id"), r.URL.Query().Get("size"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		zap.L().Warn("⚠️ Failed to write thumbnail", zap.Error(err))
	}
}

// Sync handles POST /admin/designs/sync
// Imports new designs from the configured Google Drive folder
func (c *DesignController) Sync(w http.ResponseWriter, r *http.Request) {
	if c.syncService == nil || c.driveFolderID == "" {
		http.Error(w, "Google Drive sync is not configured", http.StatusServiceUnavailable)
		return
	}
	stats, err := c.syncService.SyncDesigns(r.Context(), c.driveFolderID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to sync designs: %v", err), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
