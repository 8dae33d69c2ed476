// Package textfit measures, truncates and wraps text with the Go fonts.
//
// The card template declares the same fonts, so lines computed here match
// what a browser lays out closely enough for the native rasterizer.
package textfit

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Ellipsis is appended to truncated text.
const Ellipsis = "…"

// Style selects a face.
type Style struct {
	Size float64 // pixels
	Bold bool
}

type fontSet struct {
	regular *truetype.Font
	bold    *truetype.Font
}

var loadFonts = sync.OnceValues(func() (*fontSet, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing Go regular: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing Go bold: %w", err)
	}
	return &fontSet{regular: regular, bold: bold}, nil
})

// NewFace returns a fresh face for style at the given scale.
// Faces are not safe for concurrent use; callers own the returned face.
func NewFace(style Style, scale float64) (font.Face, error) {
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	f := fonts.regular
	if style.Bold {
		f = fonts.bold
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    style.Size * scale,
		DPI:     72, // 1pt == 1px
		Hinting: font.HintingNone,
	}), nil
}

// Fitter measures text at scale 1. Safe for concurrent use.
type Fitter struct {
	mu    sync.Mutex
	faces map[Style]font.Face
}

// New creates a Fitter. Fails only if the embedded fonts cannot be parsed.
func New() (*Fitter, error) {
	if _, err := loadFonts(); err != nil {
		return nil, err
	}
	return &Fitter{faces: make(map[Style]font.Face)}, nil
}

// face returns the cached face for style. Caller holds f.mu.
func (f *Fitter) face(style Style) font.Face {
	if face, ok := f.faces[style]; ok {
		return face
	}
	face, _ := NewFace(style, 1) // fonts already parsed in New
	f.faces[style] = face
	return face
}

// Width returns the advance width of s in pixels.
func (f *Fitter) Width(s string, style Style) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return toFloat(font.MeasureString(f.face(style), s))
}

// Metrics returns the ascent and descent of style in pixels.
func (f *Fitter) Metrics(style Style) (ascent, descent float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.face(style).Metrics()
	return toFloat(m.Ascent), toFloat(m.Descent)
}

// Truncate shortens s to fit maxWidth, appending Ellipsis when it cut
// anything. Whitespace runs collapse to single spaces first.
func (f *Fitter) Truncate(s string, maxWidth float64, style Style) string {
	s = strings.Join(strings.Fields(s), " ")
	if f.Width(s, style) <= maxWidth {
		return s
	}

	runes := []rune(s)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.Width(strings.TrimRight(string(runes[:mid]), " ")+Ellipsis, style) <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return strings.TrimRight(string(runes[:lo]), " ") + Ellipsis
}

// Wrap breaks s into lines no wider than maxWidth. Explicit newlines are
// kept (empty lines included), whitespace runs inside a line collapse, lines
// break at spaces and words wider than maxWidth break between runes.
func (f *Fitter) Wrap(s string, maxWidth float64, style Style) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		lines = append(lines, f.wrapParagraph(paragraph, maxWidth, style)...)
	}
	return lines
}

func (f *Fitter) wrapParagraph(paragraph string, maxWidth float64, style Style) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if f.Width(candidate, style) <= maxWidth {
			current = candidate
			continue
		}

		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if f.Width(word, style) <= maxWidth {
			current = word
			continue
		}

		chunks := f.breakWord(word, maxWidth, style)
		lines = append(lines, chunks[:len(chunks)-1]...)
		current = chunks[len(chunks)-1]
	}
	return append(lines, current)
}

// breakWord splits a word into chunks no wider than maxWidth. Every chunk
// holds at least one rune so the loop always advances.
func (f *Fitter) breakWord(word string, maxWidth float64, style Style) []string {
	var chunks []string
	var b strings.Builder
	for _, r := range word {
		next := b.String() + string(r)
		if b.Len() > 0 && f.Width(next, style) > maxWidth {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 || len(chunks) == 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
