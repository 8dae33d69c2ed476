package pipeline

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText extracts the visible text of a Markdown body as it appears once
// rendered by ToHTML: one entry per line, top-level blocks separated by an
// empty line, list items prefixed with their marker. Images contribute nothing.
func (r *MarkdownRenderer) PlainText(content string) string {
	src := []byte(PreprocessMarkdown(content))
	doc := r.md.Parser().Parse(text.NewReader(src))

	var blocks []string
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if lines := blockLines(c, src); len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return stripMarkPlaceholders(strings.Join(blocks, "\n\n"))
}

// blockLines returns the text lines of one block node.
func blockLines(n ast.Node, src []byte) []string {
	switch node := n.(type) {
	case *ast.ThematicBreak, *ast.HTMLBlock:
		return nil
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return codeLines(node, src)
	case *ast.List:
		return listLines(node, src)
	case *east.Table:
		return tableLines(node, src)
	}

	if n.FirstChild() != nil && n.FirstChild().Type() == ast.TypeInline {
		return strings.Split(inlineText(n, src), "\n")
	}

	var lines []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		lines = append(lines, blockLines(c, src)...)
	}
	return lines
}

func codeLines(n ast.Node, src []byte) []string {
	segments := n.Lines()
	lines := make([]string, 0, segments.Len())
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		lines = append(lines, strings.TrimRight(string(seg.Value(src)), "\n"))
	}
	return lines
}

func listLines(list *ast.List, src []byte) []string {
	var lines []string
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + ". "
			number++
		}
		indent := strings.Repeat(" ", len([]rune(marker)))

		for i, line := range blockLines(item, src) {
			if i == 0 {
				lines = append(lines, marker+line)
			} else {
				lines = append(lines, indent+line)
			}
		}
	}
	return lines
}

func tableLines(table *east.Table, src []byte) []string {
	var lines []string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, inlineText(cell, src))
		}
		lines = append(lines, strings.Join(cells, "  "))
	}
	return lines
}

// inlineText concatenates the inline content of n. Soft and hard line
// breaks both become newlines because the renderer uses hard wraps.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	writeInline(&b, n, src)
	return b.String()
}

func writeInline(b *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(src))
		case *ast.Image, *ast.RawHTML:
			// dropped from the markup as well
		case *east.TaskCheckBox:
			if node.IsChecked {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		default:
			writeInline(b, c, src)
		}
	}
}
