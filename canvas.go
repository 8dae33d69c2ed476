package tweetcard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"

	"github.com/alnah/go-tweetcard/internal/imagefetch"
	"github.com/alnah/go-tweetcard/internal/logger"
	"github.com/alnah/go-tweetcard/internal/textfit"
)

// AssetPolicy decides what a rasterizer does when an image cannot be loaded.
type AssetPolicy int

const (
	// AssetDefault picks the rasterizer's own default: fallback for the
	// canvas, strict for Chrome.
	AssetDefault AssetPolicy = iota
	// AssetFallback logs a warning and draws the fallback visuals: the brand
	// color instead of the background image, the flat fill instead of the avatar.
	AssetFallback
	// AssetStrict fails the render with ErrAssetLoad.
	AssetStrict
)

func (p AssetPolicy) String() string {
	switch p {
	case AssetStrict:
		return "strict"
	case AssetFallback:
		return "fallback"
	default:
		return "default"
	}
}

// orDefault resolves AssetDefault to def.
func (p AssetPolicy) orDefault(def AssetPolicy) AssetPolicy {
	if p == AssetDefault {
		return def
	}
	return p
}

// Scale bounds and the default render timeout.
const (
	MinScale       = 1
	MaxScale       = 3
	DefaultTimeout = 30 * time.Second
)

// imageLoader abstracts image loading to allow testing without a network.
type imageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Compile-time interface checks.
var (
	_ imageLoader = (*imagefetch.Fetcher)(nil)
	_ Rasterizer  = (*CanvasRasterizer)(nil)
)

// CanvasConfig configures a CanvasRasterizer. Zero values take defaults.
type CanvasConfig struct {
	Scale         int           // 1-3, default 1
	Timeout       time.Duration // image loading budget, default 30s
	Policy        AssetPolicy   // default AssetFallback
	HTTPClient    *http.Client  // default pooled non-retrying client
	MaxImageBytes int64         // default imagefetch.DefaultMaxBytes
	Logger        logrus.FieldLogger
}

// CanvasRasterizer paints a document's layout natively, without a browser.
// Every image is loaded before anything is painted. Safe for concurrent use.
type CanvasRasterizer struct {
	loader  imageLoader
	scale   int
	timeout time.Duration
	policy  AssetPolicy
	logger  logrus.FieldLogger
}

// NewCanvasRasterizer creates a CanvasRasterizer.
func NewCanvasRasterizer(cfg CanvasConfig) (*CanvasRasterizer, error) {
	if cfg.Scale == 0 {
		cfg.Scale = MinScale
	}
	if cfg.Scale < MinScale || cfg.Scale > MaxScale {
		return nil, fmt.Errorf("%w: scale %d (must be between %d and %d)", ErrInvalidOption, cfg.Scale, MinScale, MaxScale)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("%w: negative timeout", ErrInvalidOption)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Policy > AssetStrict {
		return nil, fmt.Errorf("%w: asset policy %d", ErrInvalidOption, cfg.Policy)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	return &CanvasRasterizer{
		loader: imagefetch.New(
			imagefetch.WithClient(cfg.HTTPClient),
			imagefetch.WithMaxBytes(cfg.MaxImageBytes),
		),
		scale:   cfg.Scale,
		timeout: cfg.Timeout,
		policy:  cfg.Policy.orDefault(AssetFallback),
		logger:  cfg.Logger,
	}, nil
}

// Scale returns the pixel ratio of the output.
func (r *CanvasRasterizer) Scale() int {
	return r.scale
}

// Rasterize loads the document's images, then paints its layout and
// returns a PNG of exactly CanvasSize*scale pixels square.
func (r *CanvasRasterizer) Rasterize(ctx context.Context, doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrEncode)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	images, err := r.loadImages(ctx, doc.Layout)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := newPainter(doc.Layout, float64(r.scale))
	if err != nil {
		return nil, err
	}
	p.paint(images)

	var buf bytes.Buffer
	if err := p.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// loadedImages holds decoded images; nil entries draw fallbacks.
type loadedImages struct {
	background image.Image
	avatar     image.Image
}

// loadImages fetches both images concurrently and applies the asset policy.
func (r *CanvasRasterizer) loadImages(ctx context.Context, layout Layout) (loadedImages, error) {
	refs := []struct {
		name string
		ref  string
		dst  *image.Image
	}{
		{FieldBackground, layout.BackgroundImage, nil},
		{FieldProfileImage, layout.AvatarImage, nil},
	}

	var out loadedImages
	refs[0].dst = &out.background
	refs[1].dst = &out.avatar

	errs := make([]error, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		i, ref := i, ref
		if ref.ref == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := r.loader.Load(ctx, ref.ref)
			if err != nil {
				errs[i] = fmt.Errorf("%s %s: %w", ref.name, imagefetch.Redact(ref.ref), err)
				return
			}
			*ref.dst = img
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err == nil {
			continue
		}
		if r.policy == AssetStrict {
			return loadedImages{}, fmt.Errorf("%w: %v", ErrAssetLoad, err)
		}
		r.logger.WithError(err).Warn("image not loaded, drawing fallback")
	}
	return out, nil
}

// painter draws a layout with gg at a pixel ratio. Coordinates are scaled
// explicitly because gg does not scale glyphs with its matrix.
type painter struct {
	dc     *gg.Context
	layout Layout
	scale  float64
	faces  map[textfit.Style]font.Face
}

func newPainter(layout Layout, scale float64) (*painter, error) {
	side := int(math.Round(layout.Size * scale))
	p := &painter{
		dc:     gg.NewContext(side, side),
		layout: layout,
		scale:  scale,
		faces:  make(map[textfit.Style]font.Face),
	}
	for _, line := range p.textLines() {
		if _, ok := p.faces[line.style()]; ok {
			continue
		}
		face, err := textfit.NewFace(line.style(), scale)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		p.faces[line.style()] = face
	}
	return p, nil
}

func (p *painter) textLines() []TextLine {
	lines := []TextLine{p.layout.Name, p.layout.Handle, p.layout.Menu}
	return append(lines, p.layout.Body...)
}

func (p *painter) s(v float64) float64 {
	return v * p.scale
}

func (p *painter) paint(images loadedImages) {
	p.paintBackground(images.background)
	p.paintCard()
	p.paintAvatar(images.avatar)
	for _, line := range p.textLines() {
		p.paintText(line)
	}
}

// paintBackground fills the brand color, then covers it with the image
// cropped to the canvas around its center.
func (p *painter) paintBackground(img image.Image) {
	p.dc.SetHexColor(p.layout.Background)
	p.dc.Clear()
	if img == nil {
		return
	}
	side := p.dc.Width()
	p.dc.DrawImage(imaging.Fill(img, side, side, imaging.Center, imaging.Lanczos), 0, 0)
}

func (p *painter) paintCard() {
	c := p.layout.Card
	p.dc.SetHexColor(p.layout.CardColor)
	if p.layout.CornerRadius > 0 {
		p.dc.DrawRoundedRectangle(p.s(c.X), p.s(c.Y), p.s(c.W), p.s(c.H), p.s(p.layout.CornerRadius))
	} else {
		p.dc.DrawRectangle(p.s(c.X), p.s(c.Y), p.s(c.W), p.s(c.H))
	}
	p.dc.Fill()
}

// paintAvatar draws the avatar cover-fit inside a circle with a 1px border.
func (p *painter) paintAvatar(img image.Image) {
	a := p.layout.Avatar
	cx, cy, radius := p.s(a.X+a.W/2), p.s(a.Y+a.H/2), p.s(a.W/2)

	p.dc.SetHexColor(p.layout.AvatarFill)
	p.dc.DrawCircle(cx, cy, radius)
	p.dc.Fill()

	if img != nil {
		side := int(math.Round(p.s(a.W)))
		fitted := imaging.Fill(img, side, side, imaging.Center, imaging.Lanczos)
		p.dc.DrawCircle(cx, cy, radius)
		p.dc.Clip()
		p.dc.DrawImage(fitted, int(math.Round(p.s(a.X))), int(math.Round(p.s(a.Y))))
		p.dc.ResetClip()
	}

	p.dc.SetHexColor(p.layout.AvatarBorder)
	p.dc.SetLineWidth(p.scale)
	p.dc.DrawCircle(cx, cy, radius-p.scale/2)
	p.dc.Stroke()
}

func (p *painter) paintText(line TextLine) {
	if line.Text == "" {
		return
	}
	p.dc.SetFontFace(p.faces[line.style()])
	p.dc.SetHexColor(line.Color)
	p.dc.DrawString(line.Text, p.s(line.X), p.s(line.Baseline))
}
