package tweetcard

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tweetcard/internal/logger"
)

// Engine names a built-in rasterizer.
type Engine string

const (
	// EngineChrome screenshots the markup in headless Chrome.
	EngineChrome Engine = "chrome"
	// EngineCanvas paints the layout natively, without a browser.
	EngineCanvas Engine = "canvas"
)

// Valid reports whether e names a built-in rasterizer.
func (e Engine) Valid() bool {
	return e == EngineChrome || e == EngineCanvas
}

// Rasterizer turns a composed document into PNG bytes.
// Implementations must be safe for concurrent use and release every
// resource they acquire before returning.
type Rasterizer interface {
	Rasterize(ctx context.Context, doc *Document) ([]byte, error)
}

// Result is a rendered card.
type Result struct {
	PNG      []byte
	Filename string // tweet-quote-<unix millis>.png
	Width    int
	Height   int
	Engine   Engine
}

// generatorConfig holds the options applied by NewGenerator.
type generatorConfig struct {
	engine     Engine
	rasterizer Rasterizer
	scale      int
	timeout    time.Duration
	theme      *Theme
	assetPath  string
	extraCSS   string
	policy     AssetPolicy
	browserBin string
	noSandbox  bool
	httpClient *http.Client
	logger     logrus.FieldLogger
	clock      func() time.Time
}

// Generator validates requests, composes cards and rasterizes them.
// Create with NewGenerator, call Generate per request, and Close when done.
// Safe for concurrent use.
type Generator struct {
	engine     Engine
	composer   *Composer
	rasterizer Rasterizer
	logger     logrus.FieldLogger
	clock      func() time.Time
}

// NewGenerator creates a Generator. The Chrome engine is used unless
// WithEngine or WithRasterizer says otherwise. No browser is started here.
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := generatorConfig{
		engine: EngineChrome,
		logger: logger.Discard(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.engine.Valid() {
		return nil, fmt.Errorf("%w: engine %q (must be %s or %s)", ErrInvalidOption, cfg.engine, EngineChrome, EngineCanvas)
	}

	composer, err := NewComposer(ComposerConfig{
		Theme:     cfg.theme,
		AssetPath: cfg.assetPath,
		ExtraCSS:  cfg.extraCSS,
	})
	if err != nil {
		return nil, err
	}

	rasterizer := cfg.rasterizer
	if rasterizer == nil {
		rasterizer, err = newRasterizer(cfg)
		if err != nil {
			return nil, err
		}
	}

	return &Generator{
		engine:     cfg.engine,
		composer:   composer,
		rasterizer: rasterizer,
		logger:     cfg.logger,
		clock:      cfg.clock,
	}, nil
}

// newRasterizer builds the built-in rasterizer for cfg.engine.
func newRasterizer(cfg generatorConfig) (Rasterizer, error) {
	switch cfg.engine {
	case EngineCanvas:
		return NewCanvasRasterizer(CanvasConfig{
			Scale:      cfg.scale,
			Timeout:    cfg.timeout,
			Policy:     cfg.policy,
			HTTPClient: cfg.httpClient,
			Logger:     cfg.logger,
		})
	default:
		return NewChromeRasterizer(ChromeConfig{
			Scale:      cfg.scale,
			Timeout:    cfg.timeout,
			Policy:     cfg.policy,
			BrowserBin: cfg.browserBin,
			NoSandbox:  cfg.noSandbox,
			Logger:     cfg.logger,
		})
	}
}

// Engine returns the engine reported in results.
func (g *Generator) Engine() Engine {
	return g.engine
}

// Compose validates fields and returns the composed document without
// rasterizing it.
func (g *Generator) Compose(f Fields) (*Document, error) {
	req, err := NewRequest(f)
	if err != nil {
		return nil, err
	}
	return g.composer.Compose(req)
}

// Generate validates fields, composes the card and rasterizes it.
// Invalid input returns a *ValidationError before any rasterizer runs.
// Rasterizer failures are wrapped in ErrRender.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (g *Generator) Generate(ctx context.Context, f Fields) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: internal error: %v", ErrRender, r)
		}
	}()

	doc, err := g.Compose(f)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	start := g.clock()
	data, err := g.rasterizer.Rasterize(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrRender, ErrEncode, err)
	}

	now := g.clock()
	g.logger.WithFields(logrus.Fields{
		"engine":   g.engine,
		"width":    cfg.Width,
		"height":   cfg.Height,
		"bytes":    len(data),
		"duration": now.Sub(start).String(),
	}).Debug("card rendered")

	return &Result{
		PNG:      data,
		Filename: Filename(now),
		Width:    cfg.Width,
		Height:   cfg.Height,
		Engine:   g.engine,
	}, nil
}

// Close releases the rasterizer if it holds resources.
// Built-in rasterizers hold none between calls.
func (g *Generator) Close() error {
	if c, ok := g.rasterizer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Filename returns the download name of a card rendered at t.
func Filename(t time.Time) string {
	return "tweet-quote-" + strconv.FormatInt(t.UnixMilli(), 10) + ".png"
}
