package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"garment-studio/customization"
	"garment-studio/models"
	"garment-studio/repository"
	"garment-studio/service"
)

const starSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><path d="M5 0L10 10H0Z" fill="#000"/></svg>`

type fakeFetcher struct {
	bodies map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return body, nil
}

type fakeDesignRepo struct {
	mu      sync.Mutex
	designs []models.Design
}

var _ repository.DesignRepositoryInterface = (*fakeDesignRepo)(nil)

func (r *fakeDesignRepo) List(_ context.Context, category string) ([]models.Design, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Design
	for _, d := range r.designs {
		if category == "" || d.Category == category {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDesignRepo) GetByID(_ context.Context, id string) (*models.Design, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.designs {
		if d.ID == id {
			found := d
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrDesignNotFound, id)
}

func (r *fakeDesignRepo) ExistsByDriveFileID(_ context.Context, driveFileID string) (bool, error) {
	return false, nil
}

func (r *fakeDesignRepo) Insert(_ context.Context, d *models.Design) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = fmt.Sprintf("d-%d", len(r.designs)+1)
	r.designs = append(r.designs, *d)
	return true, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.OrderCustomization
}

var _ repository.OrderCustomizationRepositoryInterface = (*fakeOrderRepo)(nil)

func (r *fakeOrderRepo) Save(_ context.Context, oc *models.OrderCustomization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.orders == nil {
		r.orders = map[string]*models.OrderCustomization{}
	}
	stored := *oc
	r.orders[oc.OrderID] = &stored
	return nil
}

func (r *fakeOrderRepo) GetByOrderID(_ context.Context, orderID string) (*models.OrderCustomization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oc, ok := r.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrOrderNotFound, orderID)
	}
	out := *oc
	return &out, nil
}

func (r *fakeOrderRepo) UpdateCaptures(_ context.Context, orderID string, record *models.CustomizationRecord, capturedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	oc, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", repository.ErrOrderNotFound, orderID)
	}
	oc.Customization = *record.Clone()
	oc.FrontCaptureURL = record.CaptureURL(models.SideFront)
	oc.BackCaptureURL = record.CaptureURL(models.SideBack)
	oc.CapturedAt = capturedAt.UTC().Format(time.RFC3339)
	return nil
}

func (r *fakeOrderRepo) MarkCaptureFailed(_ context.Context, orderID string, at time.Time) error {
	return nil
}

func (r *fakeOrderRepo) ListMissingCaptures(_ context.Context, limit int) ([]string, error) {
	return nil, nil
}

type pngRenderer struct{}

func (pngRenderer) Render(_ context.Context, scene service.Scene) ([]byte, error) {
	return solidPNG(), nil
}

func solidPNG() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

type memStore struct {
	mu   sync.Mutex
	keys []string
}

func (s *memStore) Put(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "https://cdn.test/" + key, nil
}

type fakeCart struct {
	mu    sync.Mutex
	items []models.CartLineItem
	err   error
}

func (c *fakeCart) AddLineItem(_ context.Context, item models.CartLineItem) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.items = append(c.items, item)
	return fmt.Sprintf("cart-%d", len(c.items)), nil
}

func testMockup() models.Mockup {
	return models.Mockup{
		ProductID:     "tee-classic",
		BaseUnitPrice: 19,
		Currency:      "USD",
		Images:        map[models.Side]string{models.SideFront: "https://cdn/tee-front.png", models.SideBack: "https://cdn/tee-back.png"},
		PriceTable: models.PriceTable{
			models.SideFront: {Sizes: map[string]float64{"A3": 14, "A4": 10, "A5": 7, "A6": 5}, TextSurcharge: 3},
			models.SideBack:  {Sizes: map[string]float64{"A3": 12, "A4": 9, "A5": 6, "A6": 4}, TextSurcharge: 2},
		},
	}
}

type testServer struct {
	mux      *http.ServeMux
	sessions *customization.Manager
	designs  *fakeDesignRepo
	orders   *fakeOrderRepo
	store    *memStore
	cart     *fakeCart
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://cdn/star.svg":      []byte(starSVG),
		"https://cdn/tee-front.png": solidPNG(),
		"https://cdn/cat.png":       solidPNG(),
	}}
	ts := &testServer{
		mux:      http.NewServeMux(),
		sessions: customization.NewManager(fetcher),
		designs: &fakeDesignRepo{designs: []models.Design{
			{ID: "d-cat", Name: "Cat", ImageURL: "https://cdn/cat.png", Category: "animals"},
			{ID: "d-star", Name: "Star", ImageURL: "https://cdn/star.svg", Category: "abstract"},
		}},
		orders: &fakeOrderRepo{},
		store:  &memStore{},
		cart:   &fakeCart{},
	}

	composer := service.NewComposer(500, 500, 4)
	capture := service.NewCaptureService(composer, pngRenderer{}, ts.store)
	designService := service.NewDesignService(ts.designs, nil, fetcher, nil)
	cartService := service.NewCartService(ts.sessions, capture, ts.cart)
	regeneration := service.NewRegenerationService(ts.orders, capture, 2)
	jobs := service.NewRegenerationJobs(context.Background(), regeneration)
	t.Cleanup(func() { jobs.Wait(context.Background()) })

	s := NewSessionController(ts.sessions, designService, cartService)
	ts.mux.HandleFunc("POST /sessions", s.Open)
	ts.mux.HandleFunc("GET /sessions/{id}", s.Get)
	ts.mux.HandleFunc("PATCH /sessions/{id}", s.UpdateOptions)
	ts.mux.HandleFunc("DELETE /sessions/{id}", s.Close)
	ts.mux.HandleFunc("POST /sessions/{id}/design", s.SelectDesign)
	ts.mux.HandleFunc("DELETE /sessions/{id}/design", s.ClearDesign)
	ts.mux.HandleFunc("POST /sessions/{id}/text", s.SetText)
	ts.mux.HandleFunc("DELETE /sessions/{id}/text", s.ClearText)
	ts.mux.HandleFunc("POST /sessions/{id}/transform", s.UpdateTransform)
	ts.mux.HandleFunc("POST /sessions/{id}/svg-color", s.SetSVGColor)
	ts.mux.HandleFunc("POST /sessions/{id}/pointer", s.Pointer)
	ts.mux.HandleFunc("POST /sessions/{id}/add-to-cart", s.AddToCart)

	d := NewDesignController(designService, nil, "")
	ts.mux.HandleFunc("GET /designs", d.List)
	ts.mux.HandleFunc("POST /designs/uploads", d.Create)
	ts.mux.HandleFunc("POST /admin/designs/sync", d.Sync)

	o := NewOrderController(ts.orders)
	ts.mux.HandleFunc("PUT /admin/orders/{id}/customization", o.SaveCustomization)
	ts.mux.HandleFunc("GET /admin/orders/{id}/customization", o.GetCustomization)

	preview := service.NewChromedpRenderer(service.ChromedpConfig{}, fetcher)
	g := NewRegenerationController(regeneration, jobs, ts.orders, composer, preview)
	ts.mux.HandleFunc("POST /admin/orders/regenerate", g.RegenerateBatch)
	ts.mux.HandleFunc("POST /admin/orders/{id}/regenerate", g.RegenerateSingle)
	ts.mux.HandleFunc("GET /admin/orders/{id}/preview", g.Preview)
	ts.mux.HandleFunc("GET /admin/regeneration-jobs/{jobId}", g.GetJob)
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}
