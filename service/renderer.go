package service

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"garment-studio/config"
	"garment-studio/customization"
)

// ErrRenderTimeout is returned when a capture does not finish within its deadline
var ErrRenderTimeout = errors.New("render timed out")

// detectChromePath detects the path to Chrome/Chromium executable.
// configured wins, then CHROME_PATH, then common installation paths.
func detectChromePath(configured string) string {
	candidates := []string{configured, os.Getenv("CHROME_PATH")}
	candidates = append(candidates,
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	)

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// NewRenderer picks the capture renderer named in cfg. "auto" uses headless Chrome when
// a binary is found and the software rasterizer otherwise.
func NewRenderer(cfg config.CaptureConfig, fetcher customization.AssetFetcher) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Renderer)) {
	case "chromedp":
		return NewChromedpRenderer(ChromedpConfig{
			ChromePath: detectChromePath(cfg.ChromePath),
			Timeout:    cfg.Timeout,
		}, fetcher), nil
	case "software":
		return NewSoftwareRenderer(fetcher), nil
	case "", "auto":
		if path := detectChromePath(cfg.ChromePath); path != "" {
			zap.L().Info("🖥️ Using headless Chrome renderer", zap.String("chromePath", path))
			return NewChromedpRenderer(ChromedpConfig{ChromePath: path, Timeout: cfg.Timeout}, fetcher), nil
		}
		zap.L().Info("🖥️ Chrome not found, using software renderer")
		return NewSoftwareRenderer(fetcher), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}
}
