package svgcolor

import (
	"bytes"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const svgMime = "image/svg+xml"

// sniffLimit bounds how much of the content is inspected for inline markup
const sniffLimit = 1024

// IsVectorAsset reports whether an asset should be treated as SVG.
// The URL decides first (".svg" extension or an svg data URI); otherwise the content,
// when given, is sniffed by MIME detection and by looking for a leading <svg element.
func IsVectorAsset(assetURL string, content []byte) bool {
	if hasVectorURL(assetURL) {
		return true
	}
	if len(content) == 0 {
		return false
	}
	if mimetype.Detect(content).Is(svgMime) {
		return true
	}
	return looksLikeInlineSVG(content)
}

// rasterExts are extensions that settle an asset as raster without looking at its content
var rasterExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// HasRasterURL reports whether the URL alone marks the asset as raster
// (a raster extension or a non-svg image data URI).
// Extensionless URLs, like Drive download links, return false and need sniffing.
func HasRasterURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "data:") {
		return strings.HasPrefix(lower, "data:image/") && !strings.HasPrefix(lower, "data:"+svgMime)
	}
	if u, err := url.Parse(raw); err == nil {
		raw = u.Path
	}
	return rasterExts[strings.ToLower(path.Ext(raw))]
}

func hasVectorURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "data:") {
		return strings.HasPrefix(lower, "data:"+svgMime)
	}
	if u, err := url.Parse(raw); err == nil {
		raw = u.Path
	}
	return strings.EqualFold(path.Ext(raw), ".svg")
}

// looksLikeInlineSVG skips a BOM, XML prolog, comments and doctype before checking for <svg
func looksLikeInlineSVG(content []byte) bool {
	head := content
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
	}
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	for {
		head = bytes.TrimSpace(head)
		switch {
		case bytes.HasPrefix(head, []byte("<?")):
			head = skipPast(head, "?>")
		case bytes.HasPrefix(head, []byte("<!--")):
			head = skipPast(head, "-->")
		case bytes.HasPrefix(head, []byte("<!")):
			head = skipPast(head, ">")
		default:
			return len(head) >= 4 && strings.EqualFold(string(head[:4]), "<svg")
		}
		if head == nil {
			return false
		}
	}
}

func skipPast(b []byte, marker string) []byte {
	i := bytes.Index(b, []byte(marker))
	if i < 0 {
		return nil
	}
	return b[i+len(marker):]
}
