package models

import "time"

// CustomizationRecord is the serializable aggregate handed to the cart collaborator.
// Example:
//
//	{
//	  "frontDesign": {"designId": "d-12", "designUrl": "https://cdn/x.svg", "printSizeLabel": "A4", ...},
//	  "frontText": {"content": "Lucky", "font": "Roboto", "color": "#000", ...},
//	  "lotteries": ["lot-7"]
//	}
type CustomizationRecord struct {
	FrontDesign *DesignPlacement `json:"frontDesign,omitempty"`
	BackDesign  *DesignPlacement `json:"backDesign,omitempty"`
	FrontText   *TextPlacement   `json:"frontText,omitempty"`
	BackText    *TextPlacement   `json:"backText,omitempty"`
	Lotteries   []string         `json:"lotteries,omitempty"`
}

// NewCustomizationRecord builds a fresh record from the two side states
func NewCustomizationRecord(front, back SideState, lotteries []string) *CustomizationRecord {
	rec := &CustomizationRecord{
		FrontDesign: front.Design.Clone(),
		BackDesign:  back.Design.Clone(),
		FrontText:   front.Text.Clone(),
		BackText:    back.Text.Clone(),
	}
	if len(lotteries) > 0 {
		rec.Lotteries = append([]string(nil), lotteries...)
	}
	return rec
}

// Clone returns a deep copy of r
func (r *CustomizationRecord) Clone() *CustomizationRecord {
	if r == nil {
		return nil
	}
	return NewCustomizationRecord(r.Side(SideFront), r.Side(SideBack), r.Lotteries)
}

// Side returns the side state described by the record.
// The returned placements alias the record; clone before mutating.
func (r *CustomizationRecord) Side(side Side) SideState {
	if side == SideBack {
		return SideState{Design: r.BackDesign, Text: r.BackText}
	}
	return SideState{Design: r.FrontDesign, Text: r.FrontText}
}

// HasContent reports whether side has a design or text placement
func (r *CustomizationRecord) HasContent(side Side) bool {
	return !r.Side(side).IsEmpty()
}

// ApplyArtifact merges an artifact reference into the design/text objects of its side
func (r *CustomizationRecord) ApplyArtifact(a CaptureArtifact) {
	at := a.CapturedAt
	st := r.Side(a.Side)
	if st.Design != nil {
		st.Design.CaptureURL = a.URL
		st.Design.CapturedAt = &at
	}
	if st.Text != nil {
		st.Text.CaptureURL = a.URL
		st.Text.CapturedAt = &at
	}
}

// CaptureURL returns the artifact reference stored for side, if any
func (r *CustomizationRecord) CaptureURL(side Side) string {
	st := r.Side(side)
	if st.Design != nil && st.Design.CaptureURL != "" {
		return st.Design.CaptureURL
	}
	if st.Text != nil {
		return st.Text.CaptureURL
	}
	return ""
}

// CaptureArtifact is a rendered high-resolution image of a composited side
type CaptureArtifact struct {
	Side       Side      `json:"side"`
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"capturedAt"`
}

// CaptureResult is the per-side URL summary returned by the capture engine
type CaptureResult struct {
	FrontURL string `json:"frontUrl,omitempty"`
	BackURL  string `json:"backUrl,omitempty"`
}

// URL returns the URL captured for side
func (c CaptureResult) URL(side Side) string {
	if side == SideBack {
		return c.BackURL
	}
	return c.FrontURL
}
