package tweetcard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-tweetcard/internal/logger"
	"github.com/alnah/go-tweetcard/internal/process"
)

// networkIdle is how long the page must stay without requests before
// images are considered fetched.
const networkIdle = 500 * time.Millisecond

// browserLauncher acquires an isolated browser for one render.
type browserLauncher interface {
	Launch(ctx context.Context) (browserSession, error)
}

// browserSession is one running browser. Close releases everything
// Launch acquired and must be safe to call once on every exit path.
type browserSession interface {
	Capture(ctx context.Context, html string, opts captureOptions) ([]byte, error)
	Close() error
}

// captureOptions holds per-capture settings.
type captureOptions struct {
	Scale  int
	Policy AssetPolicy
	Logger logrus.FieldLogger
}

// Compile-time interface checks.
var (
	_ browserLauncher = (*rodLauncher)(nil)
	_ browserSession  = (*rodSession)(nil)
	_ Rasterizer      = (*ChromeRasterizer)(nil)
)

// ChromeConfig configures a ChromeRasterizer. Zero values take defaults.
type ChromeConfig struct {
	Scale      int           // 1-3, default 3
	Timeout    time.Duration // launch, load and capture budget, default 30s
	Policy     AssetPolicy   // default AssetStrict
	BrowserBin string        // default ROD_BROWSER_BIN, then rod's managed Chromium
	NoSandbox  bool          // also enabled by CI=true, ROD_NO_SANDBOX=1 or ROD_BROWSER_BIN
	Logger     logrus.FieldLogger
}

// ChromeRasterizer screenshots a document's markup in headless Chrome.
// Each call launches its own browser and releases it before returning,
// whatever the outcome. Safe for concurrent use.
type ChromeRasterizer struct {
	launcher browserLauncher
	scale    int
	timeout  time.Duration
	policy   AssetPolicy
	logger   logrus.FieldLogger
}

// NewChromeRasterizer creates a ChromeRasterizer. It does not start a browser.
func NewChromeRasterizer(cfg ChromeConfig) (*ChromeRasterizer, error) {
	if cfg.Scale == 0 {
		cfg.Scale = MaxScale
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

	return &ChromeRasterizer{
		launcher: newRodLauncher(cfg.BrowserBin, cfg.NoSandbox, cfg.Logger),
		scale:    cfg.Scale,
		timeout:  cfg.Timeout,
		policy:   cfg.Policy.orDefault(AssetStrict),
		logger:   cfg.Logger,
	}, nil
}

// Scale returns the device scale factor of the screenshots.
func (r *ChromeRasterizer) Scale() int {
	return r.scale
}

// Rasterize launches a browser, loads the markup, waits for the network to
// go idle and the page to load, checks every image decoded, and captures a
// PNG of exactly CanvasSize*scale pixels square.
func (r *ChromeRasterizer) Rasterize(ctx context.Context, doc *Document) (png []byte, err error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrPageLoad)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	session, err := r.launcher.Launch(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			r.logger.WithError(cerr).Warn("releasing browser")
		}
	}()

	return session.Capture(ctx, doc.HTML, captureOptions{
		Scale:  r.scale,
		Policy: r.policy,
		Logger: r.logger,
	})
}

// rodLauncher starts Chrome through go-rod. Rod downloads Chromium on first
// use when no binary is configured.
type rodLauncher struct {
	bin       string
	noSandbox bool
	logger    logrus.FieldLogger
}

func newRodLauncher(bin string, noSandbox bool, log logrus.FieldLogger) *rodLauncher {
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		noSandbox = true
	}
	return &rodLauncher{bin: bin, noSandbox: noSandbox, logger: log}
}

// Launch starts a browser and connects to it. On failure everything started
// so far is released before returning.
func (l *rodLauncher) Launch(ctx context.Context) (browserSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	lch := launcher.New().Context(ctx).Headless(true)
	if l.bin != "" {
		lch = lch.Bin(l.bin)
	}
	if l.noSandbox {
		lch = lch.NoSandbox(true)
	}

	u, err := lch.Launch()
	if err != nil {
		abandonLauncher(lch)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		releaseLauncher(lch)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	l.logger.WithField("pid", lch.PID()).Debug("browser launched")
	return &rodSession{launcher: lch, browser: browser}, nil
}

// releaseLauncher kills the browser process group, waits for the browser
// to exit and removes its user-data directory. Only valid after a
// successful Launch: Cleanup blocks until the started process exits.
func releaseLauncher(l *launcher.Launcher) {
	if pid := l.PID(); pid > 0 {
		process.KillProcessGroup(pid)
		process.Kill(pid)
	}
	// launcher.Kill sleeps a second before signaling; the process is
	// already dead here, so it is not called.
	l.Cleanup()
}

// abandonLauncher releases a launcher whose Launch failed. The browser may
// never have started, so nothing waits for it to exit.
func abandonLauncher(l *launcher.Launcher) {
	if pid := l.PID(); pid > 0 {
		process.KillProcessGroup(pid)
		process.Kill(pid)
	}
	if dir := l.Get(flags.UserDataDir); dir != "" {
		_ = os.RemoveAll(dir)
	}
}

// rodSession is one launched browser.
type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// Close closes the browser, then kills and cleans up its process.
func (s *rodSession) Close() error {
	err := s.browser.Close()
	releaseLauncher(s.launcher)
	return err
}

// Capture renders html in a fresh page and screenshots the viewport.
func (s *rodSession) Capture(ctx context.Context, html string, opts captureOptions) ([]byte, error) {
	tmpPath, cleanup, err := writeTempFile(html)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer cleanup()

	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             CanvasSize,
		Height:            CanvasSize,
		DeviceScaleFactor: float64(opts.Scale),
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	waitIdle := page.WaitRequestIdle(networkIdle, nil, nil, nil)
	if err := page.Navigate(fileURL(tmpPath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	waitIdle()
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		return nil, fmt.Errorf("%w: waiting for fonts: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := checkImages(page, opts); err != nil {
		return nil, err
	}

	png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return png, nil
}

// brokenImagesJS lists the class of every image that did not decode.
const brokenImagesJS = `() => Array.from(document.images)
	.filter(img => !(img.complete && img.naturalWidth > 0))
	.map(img => img.className || img.src.slice(0, 32))`

// blankBrokenImagesJS swaps images that did not decode for a transparent
// pixel so the colors behind them show instead of a broken-image glyph.
const blankBrokenImagesJS = `async () => {
	const blank = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7";
	await Promise.all(Array.from(document.images)
		.filter(img => !(img.complete && img.naturalWidth > 0))
		.map(img => { img.src = blank; return img.decode().catch(() => {}); }));
	return true;
}`

// checkImages applies the asset policy to images that failed to load.
func checkImages(page *rod.Page, opts captureOptions) error {
	res, err := page.Eval(brokenImagesJS)
	if err != nil {
		return fmt.Errorf("%w: inspecting images: %v", ErrPageLoad, err)
	}

	var broken []string
	for _, v := range res.Value.Arr() {
		broken = append(broken, v.Str())
	}
	if len(broken) == 0 {
		return nil
	}

	if opts.Policy == AssetStrict {
		return fmt.Errorf("%w: %s", ErrAssetLoad, strings.Join(broken, ", "))
	}

	opts.Logger.WithField("images", broken).Warn("images not loaded, drawing fallback")
	if _, err := page.Eval(blankBrokenImagesJS); err != nil {
		return fmt.Errorf("%w: replacing broken images: %v", ErrPageLoad, err)
	}
	return nil
}

// writeTempFile writes html to a private temp file and returns its path
// and a cleanup function.
func writeTempFile(html string) (string, func(), error) {
	f, err := os.CreateTemp("", "tweetcard-*.html")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }

	if _, err := f.WriteString(html); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}
	return path, cleanup, nil
}

// fileURL converts an absolute path to a file:// URL.
func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// IsBrowserError reports whether err comes from the headless browser
// rather than from the card's content.
func IsBrowserError(err error) bool {
	return errors.Is(err, ErrBrowserConnect) ||
		errors.Is(err, ErrPageCreate) ||
		errors.Is(err, ErrPageLoad) ||
		errors.Is(err, ErrScreenshot)
}
