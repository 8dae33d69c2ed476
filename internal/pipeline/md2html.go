package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// CodeStyle is the chroma style used for fenced code blocks.
// It is dark to sit on the card background.
const CodeStyle = "monokai"

// MarkdownRenderer converts Markdown bodies to neutralized HTML fragments
// and to plain text. Safe for concurrent use.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer creates a MarkdownRenderer with GFM extensions and
// inline syntax highlighting.
func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(CodeStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // no external stylesheet in a card
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			// WithUnsafe is not used: raw HTML in a body is omitted.
		),
	)
	return &MarkdownRenderer{md: md}
}

// ToHTML converts a Markdown body to a neutralized HTML fragment.
// Goldmark doesn't support context, so conversion runs in a goroutine
// and the caller stops waiting on cancellation.
func (r *MarkdownRenderer) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(PreprocessMarkdown(content)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		fragment, err := Neutralize(ConvertMarkPlaceholders(buf.String()))
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: fragment}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
