package tweetcard

import (
	"math"

	"github.com/alnah/go-tweetcard/internal/textfit"
)

// Rect is an axis-aligned box in logical pixels.
type Rect struct {
	X, Y, W, H float64
}

// TextLine is one line of text positioned on the canvas.
// X is the left edge and Baseline the baseline, both in logical pixels.
type TextLine struct {
	Text     string
	X        float64
	Baseline float64
	Size     float64
	Bold     bool
	Color    string
}

func (l TextLine) style() textfit.Style {
	return textfit.Style{Size: l.Size, Bold: l.Bold}
}

// Layout is the fully resolved geometry of a card: what a native
// rasterizer paints without interpreting markup.
type Layout struct {
	Size            float64 // canvas side
	Background      string  // canvas color
	BackgroundImage string  // image reference, empty for color only

	Card         Rect
	CardColor    string
	CornerRadius float64

	Avatar       Rect
	AvatarImage  string // image reference; the placeholder when none was given
	AvatarFill   string
	AvatarBorder string

	Name   TextLine
	Handle TextLine
	Menu   TextLine
	Body   []TextLine

	// BodyClipped is set when body lines past the canvas were dropped.
	BodyClipped bool
}

// layoutInput is what computeLayout needs besides the theme.
type layoutInput struct {
	name            string
	handle          string // without "@"
	body            string // plain text
	avatarImage     string
	backgroundImage string
}

// computeLayout positions the card. Header text truncates with an ellipsis,
// the body wraps inside the content box and the card grows with the body,
// centered on the canvas. Lines that cannot fit on the canvas are dropped.
func computeLayout(in layoutInput, theme Theme, fit *textfit.Fitter) Layout {
	cardW := math.Min(theme.CardWidth, CanvasSize)
	pad := theme.CardPadding
	contentW := cardW - 2*pad
	bodyLH := theme.bodyLineHeight()

	menuStyle := textfit.Style{Size: theme.MenuSize}
	nameStyle := textfit.Style{Size: theme.NameSize, Bold: true}
	handleStyle := textfit.Style{Size: theme.HandleSize}
	bodyStyle := textfit.Style{Size: theme.BodySize}

	menuW := fit.Width(menuGlyph, menuStyle)
	textW := math.Max(contentW-theme.AvatarSize-2*headerGap-menuW, 0)

	lines := fit.Wrap(in.body, contentW, bodyStyle)
	maxLines := int(math.Floor((CanvasSize - 2*pad - theme.AvatarSize - bodyGap) / bodyLH))
	clipped := false
	if len(lines) > maxLines {
		lines = lines[:max(maxLines, 0)]
		clipped = true
	}

	cardH := 2*pad + theme.AvatarSize + bodyGap + float64(len(lines))*bodyLH
	cardX := (CanvasSize - cardW) / 2
	cardY := (CanvasSize - cardH) / 2

	headerTop := cardY + pad
	left := cardX + pad
	textX := left + theme.AvatarSize + headerGap

	// Name and handle stack as one block centered on the avatar.
	nameLH := theme.NameSize * nameLineHeight
	handleLH := theme.HandleSize * nameLineHeight
	blockTop := headerTop + (theme.AvatarSize-nameLH-handleLH)/2
	menuLH := theme.MenuSize * nameLineHeight

	layout := Layout{
		Size:            CanvasSize,
		Background:      theme.Background,
		BackgroundImage: in.backgroundImage,
		Card:            Rect{X: cardX, Y: cardY, W: cardW, H: cardH},
		CardColor:       theme.Card,
		CornerRadius:    theme.CornerRadius,
		Avatar:          Rect{X: left, Y: headerTop, W: theme.AvatarSize, H: theme.AvatarSize},
		AvatarImage:     in.avatarImage,
		AvatarFill:      theme.AvatarFill,
		AvatarBorder:    theme.AvatarBorder,
		Name: TextLine{
			Text:     fit.Truncate(in.name, textW, nameStyle),
			X:        textX,
			Baseline: baseline(fit, blockTop, nameLH, nameStyle),
			Size:     theme.NameSize,
			Bold:     true,
			Color:    theme.NameColor,
		},
		Handle: TextLine{
			Text:     fit.Truncate("@"+in.handle, textW, handleStyle),
			X:        textX,
			Baseline: baseline(fit, blockTop+nameLH, handleLH, handleStyle),
			Size:     theme.HandleSize,
			Color:    theme.MutedColor,
		},
		Menu: TextLine{
			Text:     menuGlyph,
			X:        left + contentW - menuW,
			Baseline: baseline(fit, headerTop+(theme.AvatarSize-menuLH)/2, menuLH, menuStyle),
			Size:     theme.MenuSize,
			Color:    theme.MutedColor,
		},
		BodyClipped: clipped,
	}

	bodyTop := headerTop + theme.AvatarSize + bodyGap
	layout.Body = make([]TextLine, 0, len(lines))
	for i, line := range lines {
		layout.Body = append(layout.Body, TextLine{
			Text:     line,
			X:        left,
			Baseline: baseline(fit, bodyTop+float64(i)*bodyLH, bodyLH, bodyStyle),
			Size:     theme.BodySize,
			Color:    theme.BodyColor,
		})
	}
	return layout
}

// baseline places text in a line box the way CSS does: half the leading
// above the ascent.
func baseline(fit *textfit.Fitter, top, lineHeight float64, style textfit.Style) float64 {
	ascent, descent := fit.Metrics(style)
	return top + (lineHeight-(ascent+descent))/2 + ascent
}
