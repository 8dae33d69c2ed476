package tweetcard

import (
	"fmt"
	"regexp"
)

// CanvasSize is the side of the square output in logical pixels.
const CanvasSize = 1500

// Fixed spacing of the card, in logical pixels.
const (
	headerGap      = 12  // between avatar, names and menu glyph
	bodyGap        = 16  // between header and body
	nameLineHeight = 1.2 // name and handle lines
	menuGlyph      = "•••"
)

var hexColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Theme holds the colors and sizes shared by the markup and the native layout.
// Sizes are logical pixels; BodyLineHeight is a multiple of BodySize.
type Theme struct {
	Background   string
	Card         string
	AvatarFill   string
	AvatarBorder string
	NameColor    string
	MutedColor   string
	BodyColor    string

	CardWidth      float64
	CardPadding    float64
	CornerRadius   float64
	AvatarSize     float64
	NameSize       float64
	HandleSize     float64
	MenuSize       float64
	BodySize       float64
	BodyLineHeight float64
}

// DefaultTheme returns the dark card on the brand background.
func DefaultTheme() Theme {
	return Theme{
		Background:   "#15202B",
		Card:         "#151f2b",
		AvatarFill:   "#1f2937",
		AvatarBorder: "#374151",
		NameColor:    "#ffffff",
		MutedColor:   "#6b7280",
		BodyColor:    "#ffffff",

		CardWidth:      512,
		CardPadding:    48,
		CornerRadius:   0,
		AvatarSize:     48,
		NameSize:       20,
		HandleSize:     20,
		MenuSize:       14,
		BodySize:       24,
		BodyLineHeight: 1.5,
	}
}

// Validate checks colors and numeric bounds. Returns nil if t is nil.
func (t *Theme) Validate() error {
	if t == nil {
		return nil
	}

	colors := []struct{ name, value string }{
		{"background", t.Background},
		{"card", t.Card},
		{"avatar fill", t.AvatarFill},
		{"avatar border", t.AvatarBorder},
		{"name color", t.NameColor},
		{"muted color", t.MutedColor},
		{"body color", t.BodyColor},
	}
	for _, c := range colors {
		if !hexColorPattern.MatchString(c.value) {
			return fmt.Errorf("%w: %s %q (must be #rgb or #rrggbb)", ErrInvalidTheme, c.name, c.value)
		}
	}

	bounds := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"card width", t.CardWidth, 200, CanvasSize},
		{"card padding", t.CardPadding, 0, 200},
		{"corner radius", t.CornerRadius, 0, 64},
		{"avatar size", t.AvatarSize, 16, 200},
		{"name size", t.NameSize, 8, 96},
		{"handle size", t.HandleSize, 8, 96},
		{"menu size", t.MenuSize, 8, 96},
		{"body size", t.BodySize, 8, 96},
		{"body line height", t.BodyLineHeight, 1, 3},
	}
	for _, b := range bounds {
		if !(b.value >= b.min && b.value <= b.max) { // also rejects NaN
			return fmt.Errorf("%w: %s %.1f (must be between %.0f and %.0f)", ErrInvalidTheme, b.name, b.value, b.min, b.max)
		}
	}

	if t.contentWidth() < t.AvatarSize+2*headerGap {
		return fmt.Errorf("%w: card width %.0f leaves no room for text with padding %.0f", ErrInvalidTheme, t.CardWidth, t.CardPadding)
	}
	return nil
}

// contentWidth is the card width minus horizontal padding.
func (t *Theme) contentWidth() float64 {
	return t.CardWidth - 2*t.CardPadding
}

// bodyLineHeight returns the body line height in pixels.
func (t *Theme) bodyLineHeight() float64 {
	return t.BodySize * t.BodyLineHeight
}
