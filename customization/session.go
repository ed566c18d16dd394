package customization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"garment-studio/models"
	"garment-studio/pricing"
	"garment-studio/svgcolor"
)

// ErrInvalidDesign is returned for design selections without an image
var ErrInvalidDesign = errors.New("invalid design")

// AssetFetcher downloads design assets
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Notice is a user-facing message produced when an input degrades instead of failing
type Notice struct {
	Level   string `json:"level"` // info, warning
	Message string `json:"message"`
}

// View is the client-facing snapshot of a session
type View struct {
	ID           string            `json:"id"`
	ProductID    string            `json:"productId"`
	Color        string            `json:"color,omitempty"`
	Quantity     int               `json:"quantity"`
	Lotteries    []string          `json:"lotteries,omitempty"`
	Sides        models.SideStates `json:"sides"`
	Quote        pricing.Quote     `json:"quote"`
	Dragging     bool              `json:"dragging"`
	Active       *Selection        `json:"active,omitempty"`
	ScrollLocked bool              `json:"scrollLocked"`
	Notice       *Notice           `json:"notice,omitempty"`
}

// Checkout is everything the add-to-cart flow needs from a session
type Checkout struct {
	SessionID string
	Mockup    models.Mockup
	Color     string
	Quantity  int
	Record    *models.CustomizationRecord
	Quote     pricing.Quote
}

// Session is the server-side customization state of one product being edited.
// All operations are serialized by the session mutex.
type Session struct {
	mu sync.Mutex

	id        string
	mockup    models.Mockup
	color     string
	quantity  int
	lotteries []string

	state  *State
	svg    *svgcolor.Store
	scroll *ScrollLock
	drag   *DragController

	fetcher   AssetFetcher
	now       func() time.Time
	createdAt time.Time
	touchedAt time.Time
	closed    bool
}

func newSession(id string, mockup models.Mockup, opts Options, fetcher AssetFetcher, now func() time.Time) *Session {
	state := NewState()
	scroll := &ScrollLock{}
	s := &Session{
		id:        id,
		mockup:    mockup,
		color:     opts.Color,
		quantity:  opts.Quantity,
		lotteries: append([]string(nil), opts.Lotteries...),
		state:     state,
		svg:       svgcolor.NewStore(),
		scroll:    scroll,
		drag:      NewDragController(state, scroll),
		fetcher:   fetcher,
		now:       now,
		createdAt: now(),
	}
	s.touchedAt = s.createdAt
	if s.quantity < 1 {
		s.quantity = 1
	}
	return s
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

func (s *Session) touch() {
	s.touchedAt = s.now()
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// View returns the current state with its price quote
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(nil)
}

func (s *Session) viewLocked(notice *Notice) View {
	sides := s.state.Snapshot()
	v := View{
		ID:           s.id,
		ProductID:    s.mockup.ProductID,
		Color:        s.color,
		Quantity:     s.quantity,
		Lotteries:    append([]string(nil), s.lotteries...),
		Sides:        sides,
		Quote:        pricing.QuoteFor(&s.mockup, s.quantity, sides),
		Dragging:     s.drag.Dragging(),
		ScrollLocked: s.scroll.Locked(),
		Notice:       notice,
	}
	if sel, ok := s.drag.Active(); ok {
		v.Active = &sel
	}
	return v
}

// UpdateOptions changes the color variant and quantity
func (s *Session) UpdateOptions(color *string, quantity *int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity != nil {
		if *quantity < 1 {
			return View{}, fmt.Errorf("quantity must be at least 1")
		}
		s.quantity = *quantity
	}
	if color != nil {
		s.color = strings.TrimSpace(*color)
	}
	s.touch()
	return s.viewLocked(nil), nil
}

// SelectDesign places design on side. Vector assets, and assets whose URL does not tell,
// are downloaded so SVG content can be recolored;
// a failed download leaves the side without a design, and unparseable markup falls back to
// the raster image. Both cases are reported through the returned view's notice.
func (s *Session) SelectDesign(ctx context.Context, side models.Side, design models.Design) (View, error) {
	if !side.Valid() {
		return View{}, errInvalidSide(side)
	}
	if strings.TrimSpace(design.ImageURL) == "" {
		return View{}, fmt.Errorf("%w: design %q has no image", ErrInvalidDesign, design.ID)
	}

	var markup []byte
	var notice *Notice
	vectorURL := svgcolor.IsVectorAsset(design.ImageURL, nil)
	if s.fetcher != nil && (vectorURL || !svgcolor.HasRasterURL(design.ImageURL)) {
		// extensionless assets are sniffed so hosted SVGs stay recolorable
		body, err := s.fetcher.Fetch(ctx, design.ImageURL)
		if err != nil {
			zap.L().Warn("⚠️ Design asset could not be loaded", zap.String("session", s.id), zap.String("url", design.ImageURL), zap.Error(err))
			s.mu.Lock()
			defer s.mu.Unlock()
			s.cancelDragOn(side, models.TargetDesign)
			s.state.ClearDesign(side)
			s.svg.Clear(side)
			s.touch()
			return s.viewLocked(&Notice{Level: "warning", Message: fmt.Sprintf("Could not load design %q, please try another one", design.Name)}), nil
		}
		if vectorURL || svgcolor.IsVectorAsset(design.ImageURL, body) {
			markup = body
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placement := models.DesignPlacement{
		DesignID:   design.ID,
		DesignURL:  design.ImageURL,
		DesignName: design.Name,
	}
	if prev := s.state.get(side).Design; prev != nil {
		placement.Transform = prev.Transform
	}
	if err := s.state.SetDesign(side, placement); err != nil {
		return View{}, err
	}

	if markup != nil {
		if err := s.svg.SetContent(side, design.ImageURL, string(markup)); err != nil {
			zap.L().Warn("⚠️ Vector design is malformed, using raster", zap.String("session", s.id), zap.Error(err))
			notice = &Notice{Level: "info", Message: "This design cannot be recolored"}
		}
	} else {
		s.svg.Clear(side)
	}
	if err := s.syncSVGLocked(side); err != nil {
		return View{}, err
	}
	s.touch()
	return s.viewLocked(notice), nil
}

// ClearDesign removes the design of side
func (s *Session) ClearDesign(side models.Side) (View, error) {
	if !side.Valid() {
		return View{}, errInvalidSide(side)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelDragOn(side, models.TargetDesign)
	s.state.ClearDesign(side)
	s.svg.Clear(side)
	s.touch()
	return s.viewLocked(nil), nil
}

// SetText sets the text of side
func (s *Session) SetText(side models.Side, in models.TextInput) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(in.Content) == "" {
		s.cancelDragOn(side, models.TargetText)
	}
	if err := s.state.SetText(side, in); err != nil {
		return View{}, err
	}
	s.touch()
	return s.viewLocked(nil), nil
}

// ClearText removes the text of side
func (s *Session) ClearText(side models.Side) (View, error) {
	if !side.Valid() {
		return View{}, errInvalidSide(side)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelDragOn(side, models.TargetText)
	s.state.ClearText(side)
	s.touch()
	return s.viewLocked(nil), nil
}

// UpdateTransform merges a transform patch into a placement
func (s *Session) UpdateTransform(side models.Side, target models.Target, patch models.TransformPatch) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.UpdateTransform(side, target, patch); err != nil {
		return View{}, err
	}
	s.touch()
	return s.viewLocked(nil), nil
}

// SetSVGColor sets the override color of the vector design on side.
// On a raster design the call is a no-op.
func (s *Session) SetSVGColor(side models.Side, color string) (View, error) {
	if !side.Valid() {
		return View{}, errInvalidSide(side)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	applied, err := s.svg.SetColor(side, color)
	if err != nil {
		return View{}, err
	}
	if !applied {
		return s.viewLocked(&Notice{Level: "info", Message: "Only vector designs can be recolored"}), nil
	}
	if err := s.syncSVGLocked(side); err != nil {
		return View{}, err
	}
	s.touch()
	return s.viewLocked(nil), nil
}

// syncSVGLocked copies the store's source and color onto the design placement so the
// record carries them
func (s *Session) syncSVGLocked(side models.Side) error {
	if s.state.get(side).Design == nil {
		return nil
	}
	return s.state.SetDesignSVG(side, s.svg.Content(side), s.svg.Color(side))
}

// PointerDown starts a drag of the selected placement
func (s *Session) PointerDown(sel Selection, p models.Position) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.drag.PointerDown(sel, p); err != nil {
		return View{}, err
	}
	s.touch()
	return s.viewLocked(nil), nil
}

// PointerMove moves the dragged placement
func (s *Session) PointerMove(p models.Position) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.drag.PointerMove(p); err != nil {
		return View{}, err
	}
	s.touch()
	return s.viewLocked(nil), nil
}

// PointerUp ends the drag
func (s *Session) PointerUp() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.PointerUp()
	s.touch()
	return s.viewLocked(nil)
}

// PointerCancel aborts the drag
func (s *Session) PointerCancel() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Cancel()
	s.touch()
	return s.viewLocked(nil)
}

func (s *Session) cancelDragOn(side models.Side, target models.Target) {
	if sel, ok := s.drag.Active(); ok && sel.Side == side && sel.Target == target {
		s.drag.Cancel()
	}
}

// Record builds a fresh customization record from the current state
func (s *Session) Record() *models.CustomizationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.NewCustomizationRecord(s.state.Side(models.SideFront), s.state.Side(models.SideBack), s.lotteries)
}

// Checkout snapshots what the add-to-cart flow needs
func (s *Session) Checkout() Checkout {
	s.mu.Lock()
	defer s.mu.Unlock()
	sides := s.state.Snapshot()
	return Checkout{
		SessionID: s.id,
		Mockup:    s.mockup,
		Color:     s.color,
		Quantity:  s.quantity,
		Record:    models.NewCustomizationRecord(sides.Front, sides.Back, s.lotteries),
		Quote:     pricing.QuoteFor(&s.mockup, s.quantity, sides),
	}
}

// Close cancels any drag, releasing the scroll lock
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Cancel()
	s.closed = true
}

// Closed reports whether the session was torn down
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
