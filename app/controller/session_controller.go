package controller

import (
	"net/http"

	"garment-studio/customization"
	"garment-studio/models"
	"garment-studio/service"
)

// SessionController handles HTTP requests for customization sessions
type SessionController struct {
	sessions *customization.Manager
	designs  *service.DesignService
	cart     *service.CartService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessions *customization.Manager, designs *service.DesignService, cart *service.CartService) *SessionController {
	return &SessionController{sessions: sessions, designs: designs, cart: cart}
}

// OpenSessionRequest is the body of POST /sessions
type OpenSessionRequest struct {
	Mockup    models.Mockup `json:"mockup"`
	Color     string        `json:"color"`
	Quantity  int           `json:"quantity" validate:"gte=0,lte=1000"`
	Lotteries []string      `json:"lotteries" validate:"max=50"`
}

// UpdateOptionsRequest is the body of PATCH /sessions/{id}
type UpdateOptionsRequest struct {
	Color    *string `json:"color"`
	Quantity *int    `json:"quantity" validate:"omitempty,gte=1,lte=1000"`
}

// SelectDesignRequest is the body of POST /sessions/{id}/design.
// Either DesignID names a catalog design or Design carries an inline candidate.
type SelectDesignRequest struct {
	Side     string         `json:"side" validate:"required"`
	DesignID string         `json:"designId" validate:"required_without=Design"`
	Design   *models.Design `json:"design" validate:"required_without=DesignID"`
}

// SetTextRequest is the body of POST /sessions/{id}/text
type SetTextRequest struct {
	Side string `json:"side" validate:"required"`
	models.TextInput
}

// TransformRequest is the body of POST /sessions/{id}/transform
type TransformRequest struct {
	Side   string        `json:"side" validate:"required"`
	Target models.Target `json:"target" validate:"required,oneof=design text"`
	models.TransformPatch
}

// SVGColorRequest is the body of POST /sessions/{id}/svg-color
type SVGColorRequest struct {
	Side  string `json:"side" validate:"required"`
	Color string `json:"color" validate:"required"`
}

// PointerRequest is the body of POST /sessions/{id}/pointer
type PointerRequest struct {
	Action string        `json:"action" validate:"required,oneof=down move up cancel"`
	Side   string        `json:"side"`
	Target models.Target `json:"target" validate:"omitempty,oneof=design text"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
}

func (c *SessionController) session(r *http.Request) (*customization.Session, error) {
	return c.sessions.Get(r.PathValue("id"))
}

// Open handles POST /sessions
func (c *SessionController) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req.Mockup); err != nil {
		http.Error(w, "invalid mockup: "+err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := c.sessions.Open(req.Mockup, customization.Options{
		Color:     req.Color,
		Quantity:  req.Quantity,
		Lotteries: req.Lotteries,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, sess.View())
}

// Get handles GET /sessions/{id}
func (c *SessionController) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// UpdateOptions handles PATCH /sessions/{id}
func (c *SessionController) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	var req UpdateOptionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := sess.UpdateOptions(req.Color, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Close handles DELETE /sessions/{id}
func (c *SessionController) Close(w http.ResponseWriter, r *http.Request) {
	if err := c.sessions.Close(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectDesign handles POST /sessions/{id}/design
func (c *SessionController) SelectDesign(w http.ResponseWriter, r *http.Request) {
	var req SelectDesignRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var design models.Design
	if req.DesignID != "" {
		d, err := c.designs.Get(r.Context(), req.DesignID)
		if err != nil {
			writeError(w, err)
			return
		}
		design = *d
	} else {
		design = *req.Design
	}

	view, err := sess.SelectDesign(r.Context(), side, design)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ClearDesign handles DELETE /sessions/{id}/design?side=
func (c *SessionController) ClearDesign(w http.ResponseWriter, r *http.Request) {
	side, err := sideParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := sess.ClearDesign(side)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetText handles POST /sessions/{id}/text
func (c *SessionController) SetText(w http.ResponseWriter, r *http.Request) {
	var req SetTextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := sess.SetText(side, req.TextInput)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ClearText handles DELETE /sessions/{id}/text?side=
func (c *SessionController) ClearText(w http.ResponseWriter, r *http.Request) {
	side, err := sideParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := sess.ClearText(side)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateTransform handles POST /sessions/{id}/transform
func (c *SessionController) UpdateTransform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := sess.UpdateTransform(side, req.Target, req.TransformPatch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetSVGColor handles POST /sessions/{id}/svg-color
func (c *SessionController) SetSVGColor(w http.ResponseWriter, r *http.Request) {
	var req SVGColorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := sess.SetSVGColor(side, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Pointer handles POST /sessions/{id}/pointer
func (c *SessionController) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, err := c.session(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p := models.Position{X: req.X, Y: req.Y}
	var view customization.View
	switch req.Action {
	case "down":
		side, perr := parseSide(req.Side)
		if perr != nil {
			writeError(w, perr)
			return
		}
		view, err = sess.PointerDown(customization.Selection{Side: side, Target: req.Target}, p)
	case "move":
		view, err = sess.PointerMove(p)
	case "up":
		view = sess.PointerUp()
	case "cancel":
		view = sess.PointerCancel()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddToCart handles POST /sessions/{id}/add-to-cart
func (c *SessionController) AddToCart(w http.ResponseWriter, r *http.Request) {
	resp, err := c.cart.AddToCart(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}
