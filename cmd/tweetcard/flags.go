package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage wraps flag parsing and argument errors.
var ErrUsage = errors.New("invalid usage")

// errHelp is returned by the parsers when -h/--help was given.
var errHelp = flag.ErrHelp

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// engineFlags holds rasterizer selection flags.
type engineFlags struct {
	engine       string
	scale        int
	timeout      string
	strictAssets bool
	noSandbox    bool
	assetPath    string
}

// cardFlags holds the card content flags.
type cardFlags struct {
	name       string
	handle     string
	body       string
	bodyFile   string
	avatar     string
	background string
	markdown   bool
}

// outputFlags holds output mode flags.
type outputFlags struct {
	path     string // PNG (or HTML) destination
	htmlOnly bool   // write the composed markup, skip rasterization
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common commonFlags
	engine engineFlags
	card   cardFlags
	output outputFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	engine engineFlags
	addr   string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// addEngineFlags adds rasterizer flags to a FlagSet.
func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "rasterizer: chrome or canvas")
	fs.IntVar(&f.scale, "scale", 0, "device scale factor (1-3, 0 = engine default)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout (e.g., 30s, 1m)")
	fs.BoolVar(&f.strictAssets, "strict-assets", false, "fail when an image cannot be loaded")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding the card template and style")
}

// addCardFlags adds card content flags to a FlagSet.
func addCardFlags(fs *flag.FlagSet, f *cardFlags) {
	fs.StringVar(&f.name, "name", "", "display name")
	fs.StringVar(&f.handle, "handle", "", "handle, with or without @")
	fs.StringVar(&f.body, "body", "", "tweet text")
	fs.StringVar(&f.bodyFile, "body-file", "", "read the tweet text from a file (- = stdin)")
	fs.StringVar(&f.avatar, "avatar", "", "avatar image path or URL")
	fs.StringVar(&f.background, "background", "", "background image path or URL")
	fs.BoolVar(&f.markdown, "markdown", false, "render the body as markdown")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.path, "output", "o", "", "output file (default tweet-quote-<ms>.png)")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write the card HTML only, skip rasterization")
}

// newFlagSet returns a silent FlagSet; the caller reports errors.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	return fs
}

// parseError wraps a pflag error in ErrUsage, keeping errHelp as is.
func parseError(err error) error {
	if errors.Is(err, errHelp) {
		return errHelp
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseRenderFlags parses render command flags.
// Positional arguments are rejected.
func parseRenderFlags(args []string) (*renderFlags, error) {
	fs := newFlagSet("render")
	f := &renderFlags{}

	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addCardFlags(fs, &f.card)
	addOutputFlags(fs, &f.output)

	if err := fs.Parse(args); err != nil {
		return nil, parseError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	if f.card.body != "" && f.card.bodyFile != "" {
		return nil, fmt.Errorf("%w: --body and --body-file are mutually exclusive", ErrUsage)
	}
	return f, nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, error) {
	fs := newFlagSet("serve")
	f := &serveFlags{}

	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :3000)")

	if err := fs.Parse(args); err != nil {
		return nil, parseError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return f, nil
}
