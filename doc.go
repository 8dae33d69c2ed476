// Package tweetcard renders tweet-style quote cards as square PNG images.
//
// # Quick Start
//
// Create a generator, render a card, and close when done:
//
//	gen, err := tweetcard.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	result, err := gen.Generate(ctx, tweetcard.Fields{
//	    Name:   "Random Tweets",
//	    Handle: "irtph",
//	    Tweet:  "line one\nline two",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.PNG, 0644)
//
// # Rendering Pipeline
//
// A card goes through three stages:
//
//  1. Validation of the raw fields into a Request (*ValidationError lists
//     every missing and invalid field)
//  2. Composition into a Document: self-contained HTML for a browser and the
//     equivalent resolved Layout, measured with the Go fonts
//  3. Rasterization into a PNG of 1500x1500 CSS pixels times the scale
//
// Two rasterizers are built in. ChromeRasterizer screenshots the HTML in
// headless Chrome (go-rod), launching and releasing a browser per call.
// CanvasRasterizer paints the Layout natively with gg and needs no browser.
// Both load every image before painting.
//
// # Configuration
//
// Use functional options to customize the generator:
//
//	gen, err := tweetcard.NewGenerator(
//	    tweetcard.WithEngine(tweetcard.EngineCanvas),
//	    tweetcard.WithScale(2),
//	    tweetcard.WithTimeout(10 * time.Second),
//	    tweetcard.WithAssetPolicy(tweetcard.AssetStrict),
//	)
//
// Bodies are plain text by default. Set Fields.Format to "markdown" to render
// GFM with highlighted code; images, links and raw HTML are neutralized.
//
// # Custom Assets
//
// Override the card template and style with WithAssetPath:
//
//	assets/
//	├── styles/
//	│   └── card.css
//	└── templates/
//	    └── card.html
//
// # Browser Requirements
//
// The Chrome engine requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package tweetcard
