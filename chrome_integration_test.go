//go:build integration

package tweetcard

// Notes:
// - Renders through a real headless Chrome; rod downloads Chromium on first run
// - Set ROD_BROWSER_BIN to use an installed browser

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"
	"time"
)

// testTimeout is the standard timeout for integration test operations.
const testTimeout = 60 * time.Second

func TestGenerator_Chrome_Integration(t *testing.T) {
	t.Parallel()

	gen, err := NewGenerator(WithEngine(EngineChrome), WithScale(1), WithTimeout(testTimeout))
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	defer gen.Close()

	t.Run("scenario renders a square PNG", func(t *testing.T) {
		t.Parallel()

		res, err := gen.Generate(context.Background(), scenarioFields)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if res.Width != CanvasSize || res.Height != CanvasSize {
			t.Errorf("got %dx%d, want %dx%d", res.Width, res.Height, CanvasSize, CanvasSize)
		}

		img, err := png.Decode(bytes.NewReader(res.PNG))
		if err != nil {
			t.Fatalf("decoding: %v", err)
		}
		assertColor(t, img, 5, 5, brandColor)
	})

	t.Run("markdown body", func(t *testing.T) {
		t.Parallel()

		f := scenarioFields
		f.Tweet = "**bold**\n\n```go\nfmt.Println(1)\n```"
		f.Format = string(FormatMarkdown)
		if _, err := gen.Generate(context.Background(), f); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	})
}

func TestChromeRasterizer_BrokenImage_Integration(t *testing.T) {
	t.Parallel()

	// a data URI that is not a decodable image
	f := scenarioFields
	f.ProfileImage = "data:image/png;base64,bm90IGFuIGltYWdl"
	doc := composeScenario(t, f)

	t.Run("strict", func(t *testing.T) {
		t.Parallel()

		r, err := NewChromeRasterizer(ChromeConfig{Scale: 1, Timeout: testTimeout})
		if err != nil {
			t.Fatalf("NewChromeRasterizer: %v", err)
		}
		if _, err := r.Rasterize(context.Background(), doc); !errors.Is(err, ErrAssetLoad) {
			t.Errorf("expected ErrAssetLoad, got %v", err)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Parallel()

		r, err := NewChromeRasterizer(ChromeConfig{Scale: 1, Timeout: testTimeout, Policy: AssetFallback})
		if err != nil {
			t.Fatalf("NewChromeRasterizer: %v", err)
		}
		data, err := r.Rasterize(context.Background(), doc)
		if err != nil {
			t.Fatalf("Rasterize: %v", err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decoding: %v", err)
		}
		a := doc.Layout.Avatar
		assertColor(t, img, int(a.X+a.W/2), int(a.Y+a.H/2), avatarColor)
	})
}

func TestChromeRasterizer_MissingBinary_Integration(t *testing.T) {
	t.Parallel()

	r, err := NewChromeRasterizer(ChromeConfig{BrowserBin: "/nonexistent/chrome", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewChromeRasterizer: %v", err)
	}
	if _, err := r.Rasterize(context.Background(), composeScenario(t, scenarioFields)); !errors.Is(err, ErrBrowserConnect) {
		t.Errorf("expected ErrBrowserConnect, got %v", err)
	}
}
