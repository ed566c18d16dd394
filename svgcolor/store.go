package svgcolor

import (
	"fmt"

	"garment-studio/models"
)

// entry is the vector source of one side plus its override color
type entry struct {
	url   string
	doc   *Document
	raw   string
	color string
}

// Store keeps the SVG source and override color of each side.
// Front and back are separate fields so a write to one side can never reach the other.
// A Store is owned by a single session and is not safe for concurrent use.
type Store struct {
	front entry
	back  entry
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{}
}

func (s *Store) slot(side models.Side) *entry {
	if side == models.SideBack {
		return &s.back
	}
	return &s.front
}

// SetContent parses and caches the vector markup of side. Malformed markup clears the
// side's vector state and returns ErrMalformedSVG; the caller falls back to raster.
// The side's override color survives a content change.
func (s *Store) SetContent(side models.Side, assetURL, markup string) error {
	e := s.slot(side)
	doc, err := Parse(markup)
	if err != nil {
		*e = entry{color: e.color}
		return fmt.Errorf("side %s: %w", side, err)
	}
	e.url = assetURL
	e.doc = doc
	e.raw = markup
	return nil
}

// SetColor sets the override color of side. It is a no-op returning false when the side
// has no vector content. An empty color removes the override.
func (s *Store) SetColor(side models.Side, color string) (bool, error) {
	e := s.slot(side)
	if e.doc == nil {
		return false, nil
	}
	if color == "" {
		e.color = ""
		return true, nil
	}
	normalized, err := NormalizeColor(color)
	if err != nil {
		return false, err
	}
	e.color = normalized
	return true, nil
}

// Clear forgets the vector content and color of side
func (s *Store) Clear(side models.Side) {
	*s.slot(side) = entry{}
}

// IsVector reports whether side currently holds parsed vector content
func (s *Store) IsVector(side models.Side) bool {
	return s.slot(side).doc != nil
}

// Color returns the override color of side
func (s *Store) Color(side models.Side) string {
	return s.slot(side).color
}

// Content returns the unmodified markup of side
func (s *Store) Content(side models.Side) string {
	return s.slot(side).raw
}

// SourceURL returns the asset URL the content of side was loaded from
func (s *Store) SourceURL(side models.Side) string {
	return s.slot(side).url
}

// Render returns the markup of side with its override color applied.
// The cached parse is reused and never modified, so rendering is idempotent.
func (s *Store) Render(side models.Side) (string, bool) {
	e := s.slot(side)
	if e.doc == nil {
		return "", false
	}
	return e.doc.Render(e.color), true
}

// RecolorMarkup parses markup and renders it with color in one step.
// Used when a stored record is regenerated without a live session.
func RecolorMarkup(markup, color string) (string, error) {
	doc, err := Parse(markup)
	if err != nil {
		return "", err
	}
	if color != "" {
		if color, err = NormalizeColor(color); err != nil {
			return "", err
		}
	}
	return doc.Render(color), nil
}
