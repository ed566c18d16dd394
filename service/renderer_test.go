package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garment-studio/config"
	"garment-studio/models"
)

const redSquareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect x="0" y="0" width="10" height="10" fill="#ff0000"/></svg>`

func rendererFixtures() *fakeFetcher {
	return &fakeFetcher{assets: map[string][]byte{
		"https://cdn.test/tee-front.png": solidPNG(50, 50, color.White),
		"https://cdn.test/blue.png":      solidPNG(10, 10, color.NRGBA{B: 255, A: 255}),
	}}
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestSoftwareRenderer_VectorDesign(t *testing.T) {
	r := NewSoftwareRenderer(rendererFixtures())
	scene := Scene{
		Side: models.SideFront, Width: 50, Height: 50, PixelRatio: 2,
		Background: "https://cdn.test/tee-front.png",
		Design:     &DesignLayer{SVGMarkup: redSquareSVG, CenterX: 25, CenterY: 25, Width: 20},
	}
	out, err := r.Render(context.Background(), scene)
	require.NoError(t, err)

	img := decodePNG(t, out)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	cr, cg, cb, _ := img.At(50, 50).RGBA()
	assert.Greater(t, cr, uint32(0xf000))
	assert.Less(t, cg, uint32(0x1000))
	assert.Less(t, cb, uint32(0x1000))

	// outside the design the white garment shows through
	wr, wg, wb, _ := img.At(5, 5).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{wr, wg, wb})
}

func TestSoftwareRenderer_ExtensionlessVectorDesign(t *testing.T) {
	fetcher := rendererFixtures()
	fetcher.assets["https://drive.google.com/uc?id=abc123"] = []byte(redSquareSVG)
	r := NewSoftwareRenderer(fetcher)
	scene := Scene{
		Side: models.SideFront, Width: 50, Height: 50, PixelRatio: 1,
		Background: "https://cdn.test/tee-front.png",
		Design:     &DesignLayer{ImageURL: "https://drive.google.com/uc?id=abc123", CenterX: 25, CenterY: 25, Width: 20},
	}
	out, err := r.Render(context.Background(), scene)
	require.NoError(t, err)

	cr, cg, cb, _ := decodePNG(t, out).At(25, 25).RGBA()
	assert.Greater(t, cr, uint32(0xf000))
	assert.Less(t, cg, uint32(0x1000))
	assert.Less(t, cb, uint32(0x1000))
}

func TestSoftwareRenderer_RasterDesignAndText(t *testing.T) {
	r := NewSoftwareRenderer(rendererFixtures())
	scene := Scene{
		Side: models.SideBack, Width: 50, Height: 50, PixelRatio: 1,
		Design: &DesignLayer{ImageURL: "https://cdn.test/blue.png", CenterX: 10, CenterY: 10, Width: 10, Rotation: 90},
		Text:   &TextLayer{Content: "Hi\nthere", Color: "#00ff00", FontSize: 12, CenterX: 35, CenterY: 35, Underline: true, Italic: true},
	}
	out, err := r.Render(context.Background(), scene)
	require.NoError(t, err)

	img := decodePNG(t, out)
	_, _, b, a := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), b)
	assert.Equal(t, uint32(0xffff), a)

	// background is transparent without a garment image
	_, _, _, a = img.At(49, 0).RGBA()
	assert.Zero(t, a)
}

func TestSoftwareRenderer_MissingAsset(t *testing.T) {
	r := NewSoftwareRenderer(rendererFixtures())
	_, err := r.Render(context.Background(), Scene{Width: 10, Height: 10, PixelRatio: 1, Background: "https://cdn.test/none.png"})
	assert.Error(t, err)

	_, err = r.Render(context.Background(), Scene{Width: 0, Height: 10, PixelRatio: 1})
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0, B: 0, A: 0xff}, ParseColor("#f00"))
	assert.Equal(t, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff}, ParseColor("#123456"))
	assert.Equal(t, color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x80}, ParseColor("#12345680"))
	r, g, b, _ := ParseColor("Navy").RGBA()
	assert.Equal(t, []uint32{0, 0, 0x8080}, []uint32{r, g, b})
	assert.Equal(t, color.Black, ParseColor("rgb(1,2,3)"))
	assert.Equal(t, color.Black, ParseColor("#12"))
}

func TestChromedpRenderer_RenderHTML(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{}, rendererFixtures())
	scene := Scene{
		Side: models.SideFront, Width: 500, Height: 500, PixelRatio: 4,
		Background: "https://cdn.test/tee-front.png",
		Design:     &DesignLayer{SVGMarkup: `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`, CenterX: 250, CenterY: 240, Width: 250, Rotation: 15},
		Text:       &TextLayer{Content: "<b>Lucky</b>", Font: "Roboto, sans-serif", Color: "#112233", FontSize: 32, CenterX: 250, CenterY: 400, Bold: true},
	}
	html, err := r.RenderHTML(context.Background(), scene)
	require.NoError(t, err)

	assert.Contains(t, html, `width: 500px`)
	assert.Contains(t, html, `src="data:image/png;base64,`)
	assert.Contains(t, html, `src="data:image/svg+xml;base64,`)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;b&gt;Lucky&lt;/b&gt;")
	assert.Contains(t, html, "rotate(15deg)")
	assert.Contains(t, html, "font-weight: 700")
	assert.True(t, strings.Contains(html, `data-side="front"`))
}

func TestChromedpRenderer_RenderHTMLMissingDesign(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{}, rendererFixtures())
	_, err := r.RenderHTML(context.Background(), Scene{
		Width: 10, Height: 10, PixelRatio: 1,
		Design: &DesignLayer{ImageURL: "https://cdn.test/gone.png"},
	})
	assert.Error(t, err)
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(config.CaptureConfig{Renderer: "software"}, rendererFixtures())
	require.NoError(t, err)
	assert.IsType(t, &SoftwareRenderer{}, r)

	r, err = NewRenderer(config.CaptureConfig{Renderer: "chromedp", ChromePath: "/nonexistent/chrome"}, rendererFixtures())
	require.NoError(t, err)
	assert.IsType(t, &ChromedpRenderer{}, r)

	_, err = NewRenderer(config.CaptureConfig{Renderer: "gpu"}, rendererFixtures())
	assert.Error(t, err)
}
