// Package imagefetch loads the avatar and background images of a card:
// remote http(s) URLs and data URIs, sniffed and decoded in-process.
package imagefetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/webp"

	"github.com/alnah/go-tweetcard/internal/fileutil"
)

// Sentinel errors for image loading.
var (
	ErrUnsupportedRef = errors.New("unsupported image reference")
	ErrTooLarge       = errors.New("image exceeds size limit")
	ErrFetch          = errors.New("failed to fetch image")
	ErrNotImage       = errors.New("content is not an image")
	ErrDecode         = errors.New("failed to decode image")
)

// DefaultMaxBytes caps the encoded size of one image.
const DefaultMaxBytes = 10 << 20

// MaxPixels caps the decoded size of one raster image. Compressed formats
// reach it long before DefaultMaxBytes.
const MaxPixels = 40_000_000

// svgRasterSize is the longest side, in pixels, SVG images are rasterized at.
const svgRasterSize = 1500

// userAgent identifies remote image requests.
const userAgent = "go-tweetcard/1 (+image fetch)"

// Fetcher loads images. Safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient replaces the pooled HTTP client.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMaxBytes sets the maximum encoded image size. Non-positive values keep the default.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// New creates a Fetcher using a pooled, non-retrying HTTP client.
// Requests are bounded by the caller's context, not a client timeout.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   cleanhttp.DefaultPooledClient(),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsSupportedRef reports whether ref is an http(s) URL with a host or a
// data URI of an image media type.
func IsSupportedRef(ref string) bool {
	if isDataURI(ref) {
		return strings.HasPrefix(strings.ToLower(ref[len("data:"):]), "image/")
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Load fetches or decodes ref into an image.
func (f *Fetcher) Load(ctx context.Context, ref string) (image.Image, error) {
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Fetch returns the encoded bytes behind ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if !IsSupportedRef(ref) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRef, Redact(ref))
	}
	if isDataURI(ref) {
		return parseDataURI(ref, f.maxBytes)
	}
	return f.get(ctx, ref)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, Redact(rawURL), resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, resp.ContentLength, f.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	return data, nil
}

func isDataURI(ref string) bool {
	return len(ref) >= 5 && strings.EqualFold(ref[:5], "data:")
}

// parseDataURI decodes the payload of a data URI.
func parseDataURI(ref string, maxBytes int64) ([]byte, error) {
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, fmt.Errorf("%w: data URI without payload", ErrDecode)
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]

	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		data, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if int64(len(data)) > maxBytes {
			return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), maxBytes)
		}
		return []byte(data), nil
	}

	payload = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, payload)
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+2 {
		return nil, fmt.Errorf("%w: data URI larger than %d bytes", ErrTooLarge, maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// some encoders drop the padding
		if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), maxBytes)
	}
	return data, nil
}

// Decode sniffs data and decodes it: SVG through oksvg, WebP through
// x/image/webp, everything else through imaging with EXIF orientation.
func Decode(data []byte) (image.Image, error) {
	mime := mimetype.Detect(data)
	switch {
	case mime.Is("image/svg+xml"):
		return decodeSVG(data)
	case mime.Is("image/webp"):
		cfg, err := webp.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrDecode, err)
		}
		if err := checkPixels(cfg); err != nil {
			return nil, err
		}
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrDecode, err)
		}
		return img, nil
	case strings.HasPrefix(mime.String(), "image/"):
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, mime.String(), err)
		}
		if err := checkPixels(cfg); err != nil {
			return nil, err
		}
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, mime.String(), err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mime.String())
	}
}

// checkPixels rejects images whose bitmap would exceed MaxPixels.
func checkPixels(cfg image.Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: empty image %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d pixels (max %d)", ErrTooLarge, cfg.Width, cfg.Height, MaxPixels)
	}
	return nil
}

// decodeSVG rasterizes an SVG with its longest side at svgRasterSize.
func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: svg: %v", ErrDecode, err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = svgRasterSize, svgRasterSize
	}
	scale := svgRasterSize / max(w, h)
	outW, outH := max(int(w*scale), 1), max(int(h*scale), 1)

	icon.SetTarget(0, 0, float64(outW), float64(outH))
	img := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(outW, outH, scanner), 1.0)
	return img, nil
}

// FileToDataURI reads a local image and returns it as a base64 data URI.
func FileToDataURI(path string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := fileutil.ReadFileLimited(path, maxBytes)
	if err != nil {
		if errors.Is(err, fileutil.ErrFileTooLarge) {
			return "", fmt.Errorf("%w: %v", ErrTooLarge, err)
		}
		return "", err
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: %s is %s", ErrNotImage, path, mime.String())
	}
	return "data:" + mime.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Redact shortens a reference for logs: data URIs lose their payload and
// URLs lose their query string.
func Redact(ref string) string {
	if isDataURI(ref) {
		if comma := strings.IndexByte(ref, ','); comma >= 0 {
			return ref[:comma] + ",…"
		}
		return "data:…"
	}
	if u, err := url.Parse(ref); err == nil && u.RawQuery != "" {
		u.RawQuery = ""
		return u.String() + "?…"
	}
	if len(ref) > 120 {
		return ref[:120] + "…"
	}
	return ref
}
