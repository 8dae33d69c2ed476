package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// droppedElements are removed with their content. A card is a static image:
// nothing in it may load a resource, run code or take input.
var droppedElements = map[atom.Atom]bool{
	atom.Img:      true,
	atom.Picture:  true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Video:    true,
	atom.Audio:    true,
	atom.Source:   true,
	atom.Svg:      true,
	atom.Math:     true,
	atom.Form:     true,
	atom.Button:   true,
	atom.Textarea: true,
	atom.Select:   true,
	atom.Link:     true,
	atom.Meta:     true,
	atom.Base:     true,
}

// allowedAttrs lists the attributes kept on surviving elements.
// style carries the inline chroma colors of code blocks.
var allowedAttrs = map[string]bool{
	"style":   true,
	"colspan": true,
	"rowspan": true,
	"align":   true,
}

// Neutralize rewrites an HTML fragment so it is inert inside a card:
//   - images, media, scripts, styles, frames and form controls are dropped
//   - task list checkboxes become "[x] " / "[ ] " text
//   - links become spans
//   - comments are dropped
//   - every attribute except inline styles and table spans is dropped
func Neutralize(fragment string) (string, error) {
	doc, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	neutralizeNode(doc)
	return renderFragment(doc)
}

// parseFragment parses HTML with a body context and wraps the resulting
// nodes in a container for uniform traversal.
func parseFragment(content string) (*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// renderFragment renders the container's children without a wrapper.
func renderFragment(doc *html.Node) (string, error) {
	var buf strings.Builder
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// neutralizeNode rewrites the children of n in place.
func neutralizeNode(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling

		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && c.DataAtom == atom.Input:
			n.InsertBefore(&html.Node{Type: html.TextNode, Data: checkboxText(c)}, c)
			n.RemoveChild(c)
		case c.Type == html.ElementNode && droppedElements[c.DataAtom]:
			n.RemoveChild(c)
		case c.Type == html.ElementNode:
			if c.DataAtom == atom.A {
				c.DataAtom = atom.Span
				c.Data = "span"
			}
			c.Attr = filterAttrs(c.Attr)
			neutralizeNode(c)
		}

		c = next
	}
}

// checkboxText renders a GFM task list checkbox as text.
func checkboxText(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Key == "checked" {
			return "[x] "
		}
	}
	return "[ ] "
}

func filterAttrs(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		if a.Namespace == "" && allowedAttrs[a.Key] && !strings.Contains(strings.ToLower(a.Val), "url(") {
			kept = append(kept, a)
		}
	}
	return kept
}
