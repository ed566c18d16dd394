package service

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"garment-studio/models"
)

type fakeFetcher struct {
	mu     sync.Mutex
	assets map[string][]byte
	calls  int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if data, ok := f.assets[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("not found: %s", url)
}

type fakeRenderer struct {
	mu     sync.Mutex
	scenes []Scene
	err    error
	delay  time.Duration
}

func (r *fakeRenderer) Render(ctx context.Context, scene Scene) ([]byte, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.scenes = append(r.scenes, scene)
	return []byte("png:" + string(scene.Side)), nil
}

func (r *fakeRenderer) sides() []models.Side {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Side
	for _, s := range r.scenes {
		out = append(out, s.Side)
	}
	return out
}

// memStore is an in-memory ArtifactStore; keys containing failOn are rejected
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && strings.Contains(key, s.failOn) {
		return "", fmt.Errorf("upload of %s refused", key)
	}
	s.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k := range s.objects {
		out = append(out, k)
	}
	return out
}

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*models.OrderCustomization
	updates map[string][2]string
	failed  map[string]int
	missing []string
}

func newFakeOrderRepo(orders ...*models.OrderCustomization) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[string]*models.OrderCustomization), updates: make(map[string][2]string), failed: make(map[string]int)}
	for _, o := range orders {
		r.orders[o.OrderID] = o
	}
	return r
}

func (r *fakeOrderRepo) Save(ctx context.Context, oc *models.OrderCustomization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[oc.OrderID] = oc
	return nil
}

func (r *fakeOrderRepo) GetByOrderID(ctx context.Context, orderID string) (*models.OrderCustomization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	oc, ok := r.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order customization not found: %s", orderID)
	}
	c := *oc
	c.Customization = *oc.Customization.Clone()
	return &c, nil
}

func (r *fakeOrderRepo) UpdateCaptures(ctx context.Context, orderID string, record *models.CustomizationRecord, capturedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	oc, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order customization not found: %s", orderID)
	}
	oc.Customization = *record.Clone()
	oc.FrontCaptureURL = record.CaptureURL(models.SideFront)
	oc.BackCaptureURL = record.CaptureURL(models.SideBack)
	oc.CapturedAt = capturedAt.UTC().Format(time.RFC3339)
	r.updates[orderID] = [2]string{oc.FrontCaptureURL, oc.BackCaptureURL}
	return nil
}

func (r *fakeOrderRepo) MarkCaptureFailed(ctx context.Context, orderID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[orderID]++
	return nil
}

func (r *fakeOrderRepo) ListMissingCaptures(ctx context.Context, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.missing...), nil
}

type fakeDesignRepo struct {
	mu      sync.Mutex
	designs []models.Design
	nextID  int
}

func (r *fakeDesignRepo) List(ctx context.Context, category string) ([]models.Design, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Design{}
	for _, d := range r.designs {
		if category == "" || d.Category == category {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDesignRepo) GetByID(ctx context.Context, id string) (*models.Design, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.designs {
		if d.ID == id {
			c := d
			return &c, nil
		}
	}
	return nil, fmt.Errorf("design not found: %s", id)
}

func (r *fakeDesignRepo) ExistsByDriveFileID(ctx context.Context, driveFileID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.designs {
		if d.DriveFileID != "" && d.DriveFileID == driveFileID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDesignRepo) Insert(ctx context.Context, d *models.Design) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	d.ID = fmt.Sprint(r.nextID)
	r.designs = append(r.designs, *d)
	return true, nil
}

func testMockup() *models.Mockup {
	return &models.Mockup{
		ProductID:     "tee-classic",
		BaseUnitPrice: 19,
		Images: map[models.Side]string{
			models.SideFront: "https://cdn.test/tee-front.png",
			models.SideBack:  "https://cdn.test/tee-back.png",
		},
		PriceTable: models.PriceTable{
			models.SideFront: {Sizes: map[string]float64{"A4": 10}, TextSurcharge: 3},
			models.SideBack:  {Sizes: map[string]float64{"A4": 10}, TextSurcharge: 3},
		},
	}
}

func frontDesignRecord() *models.CustomizationRecord {
	return &models.CustomizationRecord{
		FrontDesign: &models.DesignPlacement{
			DesignID:       "d-1",
			DesignURL:      "https://cdn.test/d-1.png",
			PrintSizeLabel: "A4",
			Transform:      models.DefaultTransform(),
		},
	}
}

// solidPNG encodes a w×h image filled with c
func solidPNG(w, h int, c color.Color) []byte {
	img := imaging.New(w, h, c)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
