package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"garment-studio/customization"
	"garment-studio/svgcolor"
)

// SoftwareRenderer rasterizes composites in-process. It is used when no Chrome binary is
// available; text is always drawn with the Go font family.
type SoftwareRenderer struct {
	fetcher customization.AssetFetcher
}

var _ Renderer = (*SoftwareRenderer)(nil)

// NewSoftwareRenderer creates an in-process renderer
func NewSoftwareRenderer(fetcher customization.AssetFetcher) *SoftwareRenderer {
	return &SoftwareRenderer{fetcher: fetcher}
}

// Render draws background, design and text in that order and encodes the result as PNG
func (r *SoftwareRenderer) Render(ctx context.Context, scene Scene) ([]byte, error) {
	width, height := scene.OutputSize()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas %dx%d", width, height)
	}
	ratio := scene.PixelRatio
	canvas := imaging.New(width, height, color.Transparent)

	if scene.Background != "" {
		bg, err := r.loadImage(ctx, scene.Background)
		if err != nil {
			return nil, fmt.Errorf("failed to load garment image: %w", err)
		}
		fitted := containImage(bg, width, height)
		b := fitted.Bounds()
		canvas = imaging.Overlay(canvas, fitted, image.Pt((width-b.Dx())/2, (height-b.Dy())/2), 1.0)
	}

	if d := scene.Design; d != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		layer, err := r.designImage(ctx, d, d.Width*ratio)
		if err != nil {
			return nil, fmt.Errorf("failed to draw design: %w", err)
		}
		canvas = overlayCentered(canvas, layer, d.CenterX*ratio, d.CenterY*ratio, d.Rotation)
	}

	if t := scene.Text; t != nil {
		layer, err := textImage(t, t.FontSize*ratio)
		if err != nil {
			return nil, fmt.Errorf("failed to draw text: %w", err)
		}
		canvas = overlayCentered(canvas, layer, t.CenterX*ratio, t.CenterY*ratio, t.Rotation)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *SoftwareRenderer) loadImage(ctx context.Context, rawURL string) (image.Image, error) {
	data, err := r.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// containImage scales img up or down to the largest size fitting width×height
func containImage(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	scale := math.Min(float64(width)/float64(b.Dx()), float64(height)/float64(b.Dy()))
	w := int(math.Max(1, math.Round(float64(b.Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(b.Dy())*scale)))
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// designImage returns the design scaled to width pixels, keeping its aspect ratio
func (r *SoftwareRenderer) designImage(ctx context.Context, d *DesignLayer, width float64) (image.Image, error) {
	w := int(math.Round(width))
	if w < 1 {
		w = 1
	}
	if d.SVGMarkup != "" {
		return rasterizeSVG(d.SVGMarkup, w)
	}
	data, err := r.fetcher.Fetch(ctx, d.ImageURL)
	if err != nil {
		return nil, err
	}
	if svgcolor.IsVectorAsset(d.ImageURL, data) {
		return rasterizeSVG(string(data), w)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return imaging.Resize(img, w, 0, imaging.Lanczos), nil
}

// rasterizeSVG draws markup into a width-pixel wide image
func rasterizeSVG(markup string, width int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	vbW, vbH := icon.ViewBox.W, icon.ViewBox.H
	if vbW <= 0 || vbH <= 0 {
		vbW, vbH = 1, 1
	}
	height := int(math.Round(float64(width) * vbH / vbW))
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	raster := rasterx.NewDasher(width, height, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}

// overlayCentered rotates layer clockwise by degrees and pastes it centered on (cx, cy)
func overlayCentered(canvas *image.NRGBA, layer image.Image, cx, cy, degrees float64) *image.NRGBA {
	if degrees != 0 {
		// imaging rotates counter-clockwise
		layer = imaging.Rotate(layer, -degrees, color.Transparent)
	}
	b := layer.Bounds()
	pt := image.Pt(int(math.Round(cx-float64(b.Dx())/2)), int(math.Round(cy-float64(b.Dy())/2)))
	return imaging.Overlay(canvas, layer, pt, 1.0)
}

var (
	fontOnce  sync.Once
	fontErr   error
	fontFaces map[[2]bool]*opentype.Font
)

func loadFonts() error {
	fontOnce.Do(func() {
		sources := map[[2]bool][]byte{
			{false, false}: goregular.TTF,
			{true, false}:  gobold.TTF,
			{false, true}:  goitalic.TTF,
			{true, true}:   gobolditalic.TTF,
		}
		fontFaces = make(map[[2]bool]*opentype.Font, len(sources))
		for key, ttf := range sources {
			fnt, err := opentype.Parse(ttf)
			if err != nil {
				fontErr = fmt.Errorf("failed to parse embedded font: %w", err)
				return
			}
			fontFaces[key] = fnt
		}
	})
	return fontErr
}

// textImage draws the text layer at size pixels into a tightly sized transparent image
func textImage(t *TextLayer, size float64) (image.Image, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	if size < 1 {
		size = 1
	}
	face, err := opentype.NewFace(fontFaces[[2]bool{t.Bold, t.Italic}], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	lines := strings.Split(t.Content, "\n")
	metrics := face.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()
	lineHeight := ascent + descent

	width := 1
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > width {
			width = w
		}
	}
	height := lineHeight * len(lines)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	src := image.NewUniform(ParseColor(t.Color))
	d := &font.Drawer{Dst: img, Src: src, Face: face}

	thickness := int(math.Max(1, math.Round(size/16)))
	for i, line := range lines {
		lineWidth := font.MeasureString(face, line).Ceil()
		x := (width - lineWidth) / 2
		baseline := i*lineHeight + ascent
		d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(baseline)}
		d.DrawString(line)
		if t.Underline && lineWidth > 0 {
			y := baseline + descent/2
			draw.Draw(img, image.Rect(x, y, x+lineWidth, y+thickness), src, image.Point{}, draw.Over)
		}
	}
	return img, nil
}

// ParseColor parses a CSS hex color or named color. Anything else is black.
func ParseColor(value string) color.Color {
	v := strings.ToLower(strings.TrimSpace(value))
	if named, ok := colornames.Map[v]; ok {
		return named
	}
	if !strings.HasPrefix(v, "#") {
		return color.Black
	}
	hex := v[1:]
	switch len(hex) {
	case 3, 4:
		expanded := make([]byte, 0, len(hex)*2)
		for i := 0; i < len(hex); i++ {
			expanded = append(expanded, hex[i], hex[i])
		}
		hex = string(expanded)
	case 6, 8:
	default:
		return color.Black
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.Black
	}
	if len(hex) == 6 {
		return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}
}
