package tweetcard

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/alnah/go-tweetcard/internal/assets"
	"github.com/alnah/go-tweetcard/internal/pipeline"
	"github.com/alnah/go-tweetcard/internal/textfit"
)

// Document is the composed card: self-contained markup for a browser and
// the equivalent resolved layout for the native rasterizer.
type Document struct {
	HTML   string
	Layout Layout
}

// ComposerConfig configures a Composer. The zero value uses the default
// theme and the embedded template.
type ComposerConfig struct {
	Theme     *Theme // nil = DefaultTheme()
	AssetPath string // directory overriding templates/card.html and styles/card.css
	ExtraCSS  string // appended after the card style
}

// Composer maps requests to documents. It performs no I/O after
// construction and is safe for concurrent use.
type Composer struct {
	theme    Theme
	tmpl     *template.Template
	style    template.CSS
	markdown *pipeline.MarkdownRenderer
	fit      *textfit.Fitter
}

// cardView is the data the card template is executed with.
type cardView struct {
	Style      template.CSS
	Background template.URL
	Avatar     template.URL
	Name       string
	Handle     string
	Body       string
	BodyHTML   template.HTML
}

// NewComposer loads the card template and style and prepares the fonts.
func NewComposer(cfg ComposerConfig) (*Composer, error) {
	theme := DefaultTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	if err := theme.Validate(); err != nil {
		return nil, err
	}

	resolver, err := assets.NewResolver(cfg.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	tmplSrc, style, err := assets.Card(resolver)
	if err != nil {
		return nil, fmt.Errorf("loading card assets: %w", err)
	}
	tmpl, err := template.New("card").Parse(tmplSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing: %v", ErrTemplate, err)
	}

	fit, err := textfit.New()
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}

	return &Composer{
		theme:    theme,
		tmpl:     tmpl,
		style:    buildStyle(theme, style, cfg.ExtraCSS),
		markdown: pipeline.NewMarkdownRenderer(),
		fit:      fit,
	}, nil
}

// Theme returns the composer's theme.
func (c *Composer) Theme() Theme {
	return c.theme
}

// Compose renders req into a document. Identical requests yield
// byte-identical HTML and equal layouts.
func (c *Composer) Compose(req *Request) (*Document, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrMissingField)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	avatar := req.AvatarImage
	if avatar == "" {
		avatar = placeholderAvatar(c.theme)
	}

	view := cardView{
		Style:      c.style,
		Background: template.URL(req.BackgroundImage), // #nosec G203 -- validated by Request.Validate
		Avatar:     template.URL(avatar),              // #nosec G203 -- validated or generated
		Name:       strings.Join(strings.Fields(req.DisplayName), " "),
		Handle:     strings.Join(strings.Fields(req.Handle), " "),
		Body:       req.Body,
	}

	plain := req.Body
	if req.Format == FormatMarkdown {
		fragment, err := c.markdown.ToHTML(context.Background(), req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
		}
		view.BodyHTML = template.HTML(fragment) // #nosec G203 -- neutralized by pipeline.Neutralize
		plain = c.markdown.PlainText(req.Body)
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}

	layout := computeLayout(layoutInput{
		name:            view.Name,
		handle:          view.Handle,
		body:            plain,
		avatarImage:     avatar,
		backgroundImage: req.BackgroundImage,
	}, c.theme, c.fit)

	return &Document{HTML: buf.String(), Layout: layout}, nil
}

// placeholderAvatar returns a flat square in the avatar fill color as an
// SVG data URI. The template clips it to a circle.
func placeholderAvatar(theme Theme) string {
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="96" height="96" viewBox="0 0 96 96"><rect width="96" height="96" fill="%s"/></svg>`, theme.AvatarFill)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// buildStyle concatenates the embedded fonts, the theme variables, the card
// style and the operator's extra CSS.
func buildStyle(theme Theme, style, extraCSS string) template.CSS {
	var b strings.Builder
	b.WriteString(fontFaces())
	b.WriteString(themeVariables(theme))
	b.WriteString(pipeline.SanitizeCSS(style))
	if extraCSS != "" {
		b.WriteString("\n")
		b.WriteString(pipeline.SanitizeCSS(extraCSS))
	}
	return template.CSS(b.String()) // #nosec G203 -- sanitized above
}

// themeVariables renders the theme as CSS custom properties.
func themeVariables(t Theme) string {
	vars := []struct{ name, value string }{
		{"canvas", px(CanvasSize)},
		{"background", t.Background},
		{"card", t.Card},
		{"avatar-fill", t.AvatarFill},
		{"avatar-border", t.AvatarBorder},
		{"name-color", t.NameColor},
		{"muted-color", t.MutedColor},
		{"body-color", t.BodyColor},
		{"card-width", px(t.CardWidth)},
		{"card-padding", px(t.CardPadding)},
		{"card-radius", px(t.CornerRadius)},
		{"avatar-size", px(t.AvatarSize)},
		{"header-gap", px(headerGap)},
		{"body-gap", px(bodyGap)},
		{"name-size", px(t.NameSize)},
		{"handle-size", px(t.HandleSize)},
		{"menu-size", px(t.MenuSize)},
		{"body-size", px(t.BodySize)},
		{"body-line-height", strconv.FormatFloat(t.BodyLineHeight, 'f', -1, 64)},
	}

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range vars {
		fmt.Fprintf(&b, "  --tc-%s: %s;\n", v.name, v.value)
	}
	b.WriteString("}\n")
	return b.String()
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// fontFaces embeds the Go fonts so browsers lay text out with the same
// metrics as the native layout.
var fontFaces = sync.OnceValue(func() string {
	faces := []struct {
		family string
		weight int
		data   []byte
	}{
		{"Go", 400, goregular.TTF},
		{"Go", 700, gobold.TTF},
		{"Go Mono", 400, gomono.TTF},
	}

	var b strings.Builder
	for _, f := range faces {
		fmt.Fprintf(&b, "@font-face {\n  font-family: %q;\n  font-weight: %d;\n  src: url(data:font/ttf;base64,%s) format(\"truetype\");\n}\n",
			f.family, f.weight, base64.StdEncoding.EncodeToString(f.data))
	}
	return b.String()
})
