package models

import "time"

// Position is a canvas-relative offset in pixels of an element's own center
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by d
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the delta from q to p
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Transform describes how a placement is rendered relative to the side's canvas
type Transform struct {
	Position Position `json:"position"`
	Scale    float64  `json:"scale"`
	Rotation float64  `json:"rotation"` // degrees, clockwise
}

// DefaultTransform is the transform of a freshly placed element: centered, unscaled, unrotated
func DefaultTransform() Transform {
	return Transform{Scale: 1}
}

// TransformPatch is a partial Transform; nil fields are left untouched on merge.
// PrintSizeLabel only applies to design placements.
type TransformPatch struct {
	Position       *Position `json:"position,omitempty"`
	Scale          *float64  `json:"scale,omitempty"`
	Rotation       *float64  `json:"rotation,omitempty"`
	PrintSizeLabel *string   `json:"printSizeLabel,omitempty"`
}

// DesignPlacement is a design assigned to a side
type DesignPlacement struct {
	DesignID       string    `json:"designId"`
	DesignURL      string    `json:"designUrl"`
	DesignName     string    `json:"designName"`
	PrintSizeLabel string    `json:"printSizeLabel"`
	Transform      Transform `json:"transform"`
	SVGColor       string    `json:"svgColor,omitempty"`
	SVGContent     string    `json:"svgContent,omitempty"`

	// Capture enrichment, filled in by the capture engine
	CaptureURL string     `json:"captureUrl,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
}

// Clone returns a deep copy of d
func (d *DesignPlacement) Clone() *DesignPlacement {
	if d == nil {
		return nil
	}
	c := *d
	if d.CapturedAt != nil {
		t := *d.CapturedAt
		c.CapturedAt = &t
	}
	return &c
}

// TextStyles holds the text decoration toggles
type TextStyles struct {
	Bold      bool `json:"bold"`
	Italic    bool `json:"italic"`
	Underline bool `json:"underline"`
}

// TextPlacement is a text string assigned to a side
type TextPlacement struct {
	Content   string     `json:"content"`
	Font      string     `json:"font"`
	Color     string     `json:"color"`
	Styles    TextStyles `json:"styles"`
	Transform Transform  `json:"transform"`

	CaptureURL string     `json:"captureUrl,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
}

// Clone returns a deep copy of t
func (t *TextPlacement) Clone() *TextPlacement {
	if t == nil {
		return nil
	}
	c := *t
	if t.CapturedAt != nil {
		ts := *t.CapturedAt
		c.CapturedAt = &ts
	}
	return &c
}

// HasContent reports whether the text would render anything
func (t *TextPlacement) HasContent() bool {
	return t != nil && t.Content != ""
}

// TextInput is the content/font/color/styles tuple accepted by setText
type TextInput struct {
	Content string     `json:"content" validate:"max=200"`
	Font    string     `json:"font"`
	Color   string     `json:"color"`
	Styles  TextStyles `json:"styles"`
}

// SideState holds the optional design and text of one side.
// Front and back states never share nested pointers.
type SideState struct {
	Design *DesignPlacement `json:"design"`
	Text   *TextPlacement   `json:"text"`
}

// Clone returns a deep copy of s
func (s SideState) Clone() SideState {
	return SideState{Design: s.Design.Clone(), Text: s.Text.Clone()}
}

// IsEmpty reports whether nothing is placed on the side
func (s SideState) IsEmpty() bool {
	return s.Design == nil && s.Text == nil
}

// SideStates pairs the two side aggregates
type SideStates struct {
	Front SideState `json:"front"`
	Back  SideState `json:"back"`
}

// Get returns the state for side
func (s SideStates) Get(side Side) SideState {
	if side == SideBack {
		return s.Back
	}
	return s.Front
}
