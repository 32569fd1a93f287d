package render

import (
	"bytes"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Result is a rendered body plus its headings, for a table of contents.
type Result struct {
	HTML     []byte
	Headings []Heading
}

type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Render converts src to HTML. Heading anchors come from a fresh
// headingIDs per call, so rich-text bodies get the same ids.
func (r *MarkdownRenderer) Render(src []byte) (Result, error) {
	pc := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	doc := r.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	var out bytes.Buffer
	if err := r.md.Renderer().Render(&out, src, doc); err != nil {
		return Result{}, err
	}
	return Result{HTML: out.Bytes(), Headings: markdownHeadings(doc, src)}, nil
}
