package tweetcard

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Option configures a Generator.
type Option func(*generatorConfig)

// WithEngine selects the built-in rasterizer. Ignored for rasterization
// when WithRasterizer is given, but still reported in Result.Engine.
func WithEngine(e Engine) Option {
	return func(c *generatorConfig) {
		c.engine = e
	}
}

// WithRasterizer replaces the built-in rasterizer.
// Panics if r is nil (programmer error).
func WithRasterizer(r Rasterizer) Option {
	if r == nil {
		panic("tweetcard: WithRasterizer rasterizer must not be nil")
	}
	return func(c *generatorConfig) {
		c.rasterizer = r
	}
}

// WithScale sets the pixel ratio, 1 to 3. Default: 3 for Chrome, 1 for canvas.
func WithScale(scale int) Option {
	return func(c *generatorConfig) {
		c.scale = scale
	}
}

// WithTimeout bounds one render, including image loading.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tweetcard: WithTimeout duration must be positive")
	}
	return func(c *generatorConfig) {
		c.timeout = d
	}
}

// WithTheme overrides the default colors and sizes.
func WithTheme(t Theme) Option {
	return func(c *generatorConfig) {
		c.theme = &t
	}
}

// WithAssetPath sets a directory whose templates/card.html and
// styles/card.css take precedence over the embedded ones.
func WithAssetPath(path string) Option {
	return func(c *generatorConfig) {
		c.assetPath = path
	}
}

// WithExtraCSS appends operator CSS after the card style.
func WithExtraCSS(css string) Option {
	return func(c *generatorConfig) {
		c.extraCSS = css
	}
}

// WithAssetPolicy sets what happens when an image cannot be loaded.
func WithAssetPolicy(p AssetPolicy) Option {
	return func(c *generatorConfig) {
		c.policy = p
	}
}

// WithBrowserBin sets the Chrome binary. Default: ROD_BROWSER_BIN, then
// a Chromium managed by rod.
func WithBrowserBin(path string) Option {
	return func(c *generatorConfig) {
		c.browserBin = path
	}
}

// WithNoSandbox disables the Chrome sandbox.
func WithNoSandbox(noSandbox bool) Option {
	return func(c *generatorConfig) {
		c.noSandbox = noSandbox
	}
}

// WithHTTPClient sets the client the canvas engine fetches remote images with.
func WithHTTPClient(client *http.Client) Option {
	return func(c *generatorConfig) {
		c.httpClient = client
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *generatorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the time source used for result filenames.
func WithClock(now func() time.Time) Option {
	return func(c *generatorConfig) {
		if now != nil {
			c.clock = now
		}
	}
}
