package service

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"garment-studio/customization"
)

//go:embed templates/composite.html
var templateFS embed.FS

var compositeTemplate = template.Must(template.ParseFS(templateFS, "templates/composite.html"))

const defaultCaptureTimeout = 30 * time.Second

// waitForImagesJS resolves once every image on the page has decoded or failed
const waitForImagesJS = `
	(function() {
		return Promise.all([
			document.fonts.ready,
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
				return new Promise((resolve) => {
					if (img.complete && img.naturalWidth > 0 && img.naturalHeight > 0) {
						resolve();
						return;
					}
					const timeout = setTimeout(() => resolve(), 5000);
					img.onload = () => { clearTimeout(timeout); resolve(); };
					img.onerror = () => { clearTimeout(timeout); resolve(); };
				});
			}))
		]).then(() => true);
	})();
`

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// ChromedpConfig configures the headless Chrome renderer
type ChromedpConfig struct {
	ChromePath string // empty lets chromedp find a browser on PATH
	Timeout    time.Duration
}

// ChromedpRenderer captures composites with headless Chrome, so the garment, design and text
// are laid out by the same CSS engine the storefront preview uses
type ChromedpRenderer struct {
	config  ChromedpConfig
	fetcher customization.AssetFetcher
}

var _ Renderer = (*ChromedpRenderer)(nil)

// NewChromedpRenderer creates a renderer that launches Chrome per capture
func NewChromedpRenderer(cfg ChromedpConfig, fetcher customization.AssetFetcher) *ChromedpRenderer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCaptureTimeout
	}
	return &ChromedpRenderer{config: cfg, fetcher: fetcher}
}

type compositeView struct {
	Side       string
	Width      int
	Height     int
	Background template.URL
	Design     *compositeDesign
	Text       *TextLayer
}

type compositeDesign struct {
	Src      template.URL
	CenterX  float64
	CenterY  float64
	Width    float64
	Rotation float64
}

// RenderHTML returns the self-contained HTML page of a scene. Every asset is inlined as a
// data URI and vector designs are embedded as images, so no script inside them runs.
func (r *ChromedpRenderer) RenderHTML(ctx context.Context, scene Scene) (string, error) {
	view := compositeView{
		Side:   string(scene.Side),
		Width:  scene.Width,
		Height: scene.Height,
		Text:   scene.Text,
	}

	if scene.Background != "" {
		bg, err := fetchAsDataURI(ctx, r.fetcher, scene.Background)
		if err != nil {
			return "", fmt.Errorf("failed to load garment image: %w", err)
		}
		view.Background = template.URL(bg)
	}

	if d := scene.Design; d != nil {
		var src string
		if d.SVGMarkup != "" {
			src = toDataURI([]byte(d.SVGMarkup), "image/svg+xml")
		} else {
			var err error
			if src, err = fetchAsDataURI(ctx, r.fetcher, d.ImageURL); err != nil {
				return "", fmt.Errorf("failed to load design image: %w", err)
			}
		}
		view.Design = &compositeDesign{
			Src:      template.URL(src),
			CenterX:  d.CenterX,
			CenterY:  d.CenterY,
			Width:    d.Width,
			Rotation: d.Rotation,
		}
	}

	var buf bytes.Buffer
	if err := compositeTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Render captures the scene as a PNG at the scene's pixel ratio
func (r *ChromedpRenderer) Render(ctx context.Context, scene Scene) ([]byte, error) {
	start := time.Now()
	html, err := r.RenderHTML(ctx, scene)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
		chromedp.Flag("hide-scrollbars", true),
	)
	if r.config.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.config.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			zap.L().Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer chromedpCancel()

	var ready bool
	var buf []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(int64(scene.Width), int64(scene.Height), chromedp.EmulateScale(scene.PixelRatio)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Evaluate(waitForImagesJS, &ready, awaitPromise),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithFromSurface(true).
				WithCaptureBeyondViewport(false).
				Do(ctx)
			if err != nil {
				return err
			}
			buf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %v: %v", ErrRenderTimeout, r.config.Timeout, err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("capture cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("failed to capture %s composite: %w", scene.Side, err)
	}

	zap.L().Info("📸 Captured composite",
		zap.String("side", string(scene.Side)),
		zap.Int("bytes", len(buf)),
		zap.Duration("took", time.Since(start)),
	)
	return buf, nil
}
