// Package pipeline turns a card body into markup and plain text.
//
// Plain bodies need no conversion: the card template escapes them. Markdown
// bodies go through three stages:
//   - preprocessing (line normalization, ==highlight== syntax)
//   - Markdown to HTML conversion via Goldmark with inline-styled code blocks
//   - neutralization of the HTML fragment (no images, links, scripts or frames)
//
// PlainText extracts the same content as lines of text so the native
// rasterizer can lay it out without a browser.
package pipeline
