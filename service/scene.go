package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"garment-studio/models"
	"garment-studio/svgcolor"
)

const (
	// DesignBaseRatio is the share of the canvas width a design covers at scale 1
	DesignBaseRatio = 0.5
	// TextBasePx is the CSS font size of text at scale 1
	TextBasePx = 32.0

	defaultTextColor = "#000000"
	defaultTextFont  = "sans-serif"
)

// Scene is a fully resolved composite of one side, in CSS pixels of the virtual canvas
type Scene struct {
	Side       models.Side
	Width      int
	Height     int
	PixelRatio float64
	Background string // garment image URL
	Design     *DesignLayer
	Text       *TextLayer
}

// DesignLayer is a design positioned by its center
type DesignLayer struct {
	ImageURL  string
	SVGMarkup string // recolored markup, empty for raster designs
	CenterX   float64
	CenterY   float64
	Width     float64 // height follows the asset's aspect ratio
	Rotation  float64 // degrees, clockwise
}

// TextLayer is a text string positioned by its center
type TextLayer struct {
	Content   string
	Font      string
	Color     string
	Bold      bool
	Italic    bool
	Underline bool
	CenterX   float64
	CenterY   float64
	FontSize  float64
	Rotation  float64
}

// OutputSize returns the raster size of a capture
func (s Scene) OutputSize() (int, int) {
	return int(float64(s.Width)*s.PixelRatio + 0.5), int(float64(s.Height)*s.PixelRatio + 0.5)
}

// Composer turns a side's placements into a Scene on the fixed virtual canvas
type Composer struct {
	Width      int
	Height     int
	PixelRatio float64
}

// NewComposer creates a composer for a width×height canvas captured at pixelRatio
func NewComposer(width, height int, pixelRatio float64) *Composer {
	return &Composer{Width: width, Height: height, PixelRatio: pixelRatio}
}

// Compose builds the scene of side. Vector designs are recolored here; markup that no longer
// parses falls back to the design's raster URL.
func (c *Composer) Compose(mockup *models.Mockup, color string, side models.Side, st models.SideState) (Scene, error) {
	if !side.Valid() {
		return Scene{}, fmt.Errorf("compose: invalid side %q", side)
	}
	scene := Scene{
		Side:       side,
		Width:      c.Width,
		Height:     c.Height,
		PixelRatio: c.PixelRatio,
		Background: mockup.BackgroundURL(side, color),
	}

	if d := st.Design; d != nil {
		layer := &DesignLayer{
			ImageURL: d.DesignURL,
			Width:    float64(c.Width) * DesignBaseRatio * d.Transform.Scale,
			Rotation: d.Transform.Rotation,
		}
		layer.CenterX, layer.CenterY = c.center(d.Transform.Position)
		if d.SVGContent != "" {
			markup, err := svgcolor.RecolorMarkup(d.SVGContent, d.SVGColor)
			if err != nil {
				zap.L().Warn("⚠️ Stored vector could not be recolored, using raster", zap.String("designId", d.DesignID), zap.Error(err))
			} else {
				layer.SVGMarkup = markup
			}
		}
		if layer.ImageURL == "" && layer.SVGMarkup == "" {
			return Scene{}, fmt.Errorf("compose %s: design %q has no image", side, d.DesignID)
		}
		scene.Design = layer
	}

	if t := st.Text; t.HasContent() {
		layer := &TextLayer{
			Content:   t.Content,
			Font:      firstNonEmpty(strings.TrimSpace(t.Font), defaultTextFont),
			Color:     firstNonEmpty(strings.TrimSpace(t.Color), defaultTextColor),
			Bold:      t.Styles.Bold,
			Italic:    t.Styles.Italic,
			Underline: t.Styles.Underline,
			FontSize:  TextBasePx * t.Transform.Scale,
			Rotation:  t.Transform.Rotation,
		}
		layer.CenterX, layer.CenterY = c.center(t.Transform.Position)
		scene.Text = layer
	}
	return scene, nil
}

// center maps a center-relative offset to canvas coordinates
func (c *Composer) center(p models.Position) (float64, float64) {
	return float64(c.Width)/2 + p.X, float64(c.Height)/2 + p.Y
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
