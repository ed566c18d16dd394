package controller

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"garment-studio/models"
	"garment-studio/repository"
)

// OrderController stores the customization of placed orders so captures can be regenerated later
type OrderController struct {
	repo repository.OrderCustomizationRepositoryInterface
}

// NewOrderController creates a new OrderController
func NewOrderController(repo repository.OrderCustomizationRepositoryInterface) *OrderController {
	return &OrderController{repo: repo}
}

// SaveCustomizationRequest is the body of PUT /admin/orders/{id}/customization
type SaveCustomizationRequest struct {
	Color         string                     `json:"color"`
	Mockup        models.Mockup              `json:"mockup"`
	Customization models.CustomizationRecord `json:"customization"`
}

// SaveCustomization handles PUT /admin/orders/{id}/customization
func (c *OrderController) SaveCustomization(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(r.PathValue("id"))
	if orderID == "" {
		http.Error(w, "order id is required", http.StatusBadRequest)
		return
	}
	var req SaveCustomizationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req.Mockup); err != nil {
		http.Error(w, "invalid mockup: "+err.Error(), http.StatusBadRequest)
		return
	}

	oc := &models.OrderCustomization{
		OrderID:         orderID,
		ProductID:       req.Mockup.ProductID,
		Color:           req.Color,
		Mockup:          req.Mockup,
		Customization:   req.Customization,
		FrontCaptureURL: req.Customization.CaptureURL(models.SideFront),
		BackCaptureURL:  req.Customization.CaptureURL(models.SideBack),
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.repo.Save(r.Context(), oc); err != nil {
		writeError(w, err)
		return
	}
	zap.L().Info("💾 Order customization saved", zap.String("orderId", orderID))
	writeJSON(w, http.StatusOK, oc)
}

// GetCustomization handles GET /admin/orders/{id}/customization
func (c *OrderController) GetCustomization(w http.ResponseWriter, r *http.Request) {
	oc, err := c.repo.GetByOrderID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, oc)
}
