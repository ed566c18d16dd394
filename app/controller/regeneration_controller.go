package controller

import (
	"net/http"

	"garment-studio/models"
	"garment-studio/repository"
	"garment-studio/service"
)

// RegenerationController handles admin capture regeneration and preview
type RegenerationController struct {
	service  service.RegenerationServiceInterface
	jobs     *service.RegenerationJobs
	repo     repository.OrderCustomizationRepositoryInterface
	composer *service.Composer
	preview  *service.ChromedpRenderer
}

// NewRegenerationController creates a new RegenerationController
func NewRegenerationController(svc service.RegenerationServiceInterface, jobs *service.RegenerationJobs, repo repository.OrderCustomizationRepositoryInterface, composer *service.Composer, preview *service.ChromedpRenderer) *RegenerationController {
	return &RegenerationController{
		service:  svc,
		jobs:     jobs,
		repo:     repo,
		composer: composer,
		preview:  preview,
	}
}

// RegenerateSingle handles POST /admin/orders/{id}/regenerate
func (c *RegenerationController) RegenerateSingle(w http.ResponseWriter, r *http.Request) {
	result := c.service.RegenerateSingle(r.Context(), r.PathValue("id"))
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

// RegenerateBatch handles POST /admin/orders/regenerate
// Starts an asynchronous job and returns it immediately
func (c *RegenerationController) RegenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req models.RegenerateBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	job := c.jobs.StartBatch(req.OrderIDs)
	w.Header().Set("Location", "/admin/regeneration-jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /admin/regeneration-jobs/{jobId}
func (c *RegenerationController) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := c.jobs.Get(r.PathValue("jobId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Preview handles GET /admin/orders/{id}/preview?side=
// Returns the self-contained HTML composite the headless renderer would capture
func (c *RegenerationController) Preview(w http.ResponseWriter, r *http.Request) {
	side, err := sideParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	oc, err := c.repo.GetByOrderID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	scene, err := c.composer.Compose(&oc.Mockup, oc.Color, side, oc.Customization.Side(side))
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := c.preview.RenderHTML(r.Context(), scene)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "script-src 'none'")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(page))
}
