package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"garment-studio/customization"
)

// maxAssetBytes bounds a single downloaded design or garment image
const maxAssetBytes = 25 << 20

// ErrAssetURLNotAllowed is returned for asset URLs outside public http(s) hosts
var ErrAssetURLNotAllowed = errors.New("asset url not allowed")

// blockedPrefixes are non-public ranges not covered by netip's Is* helpers
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
}

// HTTPAssetFetcher downloads design and garment images over HTTP.
// data: URIs are decoded in place. Only http and https URLs are fetched and connections to
// loopback, private, link-local or otherwise non-public addresses are refused, redirects included.
type HTTPAssetFetcher struct {
	client       *http.Client
	allowPrivate bool
}

var _ customization.AssetFetcher = (*HTTPAssetFetcher)(nil)

// NewHTTPAssetFetcher creates a fetcher with the given request timeout
func NewHTTPAssetFetcher(timeout time.Duration) *HTTPAssetFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	f := &HTTPAssetFetcher{}
	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second, Control: f.checkDial}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// a proxy would hide the real destination from checkDial
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	f.client = &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return checkAssetURL(req.URL)
		},
	}
	return f
}

// Fetch returns the bytes behind rawURL
func (f *HTTPAssetFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return decodeDataURI(rawURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("malformed asset url: %w", err)
	}
	if err := checkAssetURL(u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > maxAssetBytes {
		return nil, fmt.Errorf("image at %s exceeds %d bytes", rawURL, maxAssetBytes)
	}
	return data, nil
}

func checkAssetURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrAssetURLNotAllowed, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrAssetURLNotAllowed)
	}
	return nil
}

// checkDial runs on the resolved address of every connection
func (f *HTTPAssetFetcher) checkDial(network, address string, _ syscall.RawConn) error {
	if f.allowPrivate {
		return nil
	}
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAssetURLNotAllowed, address)
	}
	if !isPublicAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s is not a public address", ErrAssetURLNotAllowed, ap.Addr())
	}
	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() || addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsUnspecified() {
		return false
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// fetchAsDataURI downloads an asset and inlines it so a headless page never has to reach
// the network
func fetchAsDataURI(ctx context.Context, fetcher customization.AssetFetcher, rawURL string) (string, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return rawURL, nil
	}
	data, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return toDataURI(data, ""), nil
}

// toDataURI encodes data as a base64 data URI, sniffing the MIME type when not given
func toDataURI(data []byte, mime string) string {
	if mime == "" {
		mime = mimetype.Detect(data).String()
		// drop parameters like "; charset=utf-8"
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURI(raw string) ([]byte, error) {
	comma := strings.IndexByte(raw, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data uri")
	}
	meta, payload := raw[len("data:"):comma], raw[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed base64 data uri: %w", err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data uri: %w", err)
	}
	return []byte(text), nil
}
