package router

import (
	"net/http"

	"garment-studio/app/controller"
)

// Controllers groups the HTTP handlers mounted by SetupRoutes
type Controllers struct {
	Session      *controller.SessionController
	Design       *controller.DesignController
	Regeneration *controller.RegenerationController
	Order        *controller.OrderController

	// CapturesDir is served under /captures/ when captures are stored on local disk
	CapturesDir string
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes registers every route on mux
func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	mux.HandleFunc("GET /ping", pingHandler)

	// Customization sessions
	s := controllers.Session
	mux.HandleFunc("POST /sessions", s.Open)
	mux.HandleFunc("GET /sessions/{id}", s.Get)
	mux.HandleFunc("PATCH /sessions/{id}", s.UpdateOptions)
	mux.HandleFunc("DELETE /sessions/{id}", s.Close)
	mux.HandleFunc("POST /sessions/{id}/design", s.SelectDesign)
	mux.HandleFunc("DELETE /sessions/{id}/design", s.ClearDesign)
	mux.HandleFunc("POST /sessions/{id}/text", s.SetText)
	mux.HandleFunc("DELETE /sessions/{id}/text", s.ClearText)
	mux.HandleFunc("POST /sessions/{id}/transform", s.UpdateTransform)
	mux.HandleFunc("POST /sessions/{id}/svg-color", s.SetSVGColor)
	mux.HandleFunc("POST /sessions/{id}/pointer", s.Pointer)
	mux.HandleFunc("POST /sessions/{id}/add-to-cart", s.AddToCart)

	// Design catalog
	d := controllers.Design
	mux.HandleFunc("GET /designs", d.List)
	mux.HandleFunc("POST /designs/uploads", d.Create)
	mux.HandleFunc("GET /designs/{id}/thumb", d.Thumbnail)
	mux.HandleFunc("POST /admin/designs/sync", d.Sync)

	// Order customizations and capture regeneration
	o := controllers.Order
	mux.HandleFunc("PUT /admin/orders/{id}/customization", o.SaveCustomization)
	mux.HandleFunc("GET /admin/orders/{id}/customization", o.GetCustomization)

	g := controllers.Regeneration
	mux.HandleFunc("POST /admin/orders/regenerate", g.RegenerateBatch)
	mux.HandleFunc("POST /admin/orders/{id}/regenerate", g.RegenerateSingle)
	mux.HandleFunc("GET /admin/orders/{id}/preview", g.Preview)
	mux.HandleFunc("GET /admin/regeneration-jobs/{jobId}", g.GetJob)

	// Capture keys already start with captures/, so the directory is served without stripping
	if controllers.CapturesDir != "" {
		mux.Handle("GET /captures/", http.FileServer(http.Dir(controllers.CapturesDir)))
	}
}
