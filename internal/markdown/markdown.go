// Package markdown extracts outbound document links and titles from markdown
// source by walking goldmark's AST rather than scanning raw text.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// AnyLevel makes Title accept the first heading regardless of its level.
const AnyLevel = 0

func parse(src []byte) ast.Node {
	md := goldmark.New()
	return md.Parser().Parse(text.NewReader(src))
}

// Links returns the raw destination of every link in src, in document order.
// Links inside code spans, code blocks, escaped text or raw HTML are not part
// of the AST and never appear. Image destinations are not links.
func Links(src []byte) []string {
	src = stripFrontMatter(src)
	doc := parse(src)

	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			links = append(links, string(node.Destination))
		case *ast.AutoLink:
			if node.AutoLinkType == ast.AutoLinkURL {
				links = append(links, string(node.URL(src)))
			}
		case *ast.Image:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return links
}

// Title returns the trimmed text of the first heading at the given level
// (AnyLevel for any) whose text is not empty. It returns "" when no such
// heading exists.
func Title(src []byte, level int) string {
	src = stripFrontMatter(src)
	doc := parse(src)

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if level != AnyLevel && h.Level != level {
			return ast.WalkSkipChildren, nil
		}
		if t := headingText(h, src); t != "" {
			title = t
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})
	return title
}

// headingText concatenates the text runs inside a heading.
func headingText(h *ast.Heading, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
