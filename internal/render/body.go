package render

import (
	"bytes"
	"fmt"
	"sitecms/internal/domain/content"
	"sitecms/internal/richtext"
	"strings"
)

// BodyRenderer turns either body shape into HTML. Markdown goes through
// goldmark; rich-text trees through a walker that emits the same markup
// goldmark would for the shared subset.
type BodyRenderer struct {
	md *MarkdownRenderer
}

func NewBodyRenderer() *BodyRenderer {
	return &BodyRenderer{md: NewMarkdownRenderer()}
}

func (r *BodyRenderer) Render(b *content.Body) (Result, error) {
	switch {
	case b == nil:
		return Result{}, nil
	case b.IsTree():
		return RenderTree(b.Tree), nil
	default:
		return r.md.Render([]byte(b.Markdown))
	}
}

func RenderTree(doc *richtext.Document) Result {
	w := &treeWriter{ids: newHeadingIDs()}
	if doc != nil {
		for _, n := range doc.Children {
			w.block(n)
		}
	}
	return Result{HTML: w.buf.Bytes(), Headings: w.heads}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

type treeWriter struct {
	buf   bytes.Buffer
	heads []Heading
	ids   *headingIDs
}

func headingLevel(t string) int {
	if len(t) == 2 && t[0] == 'h' && t[1] >= '1' && t[1] <= '6' {
		return int(t[1] - '0')
	}
	return 0
}

func (w *treeWriter) block(n richtext.Node) {
	if level := headingLevel(n.Type); level > 0 {
		txt := plainText(n)
		id := w.ids.next(txt)
		fmt.Fprintf(&w.buf, `<h%d id="%s">`, level, htmlEscaper.Replace(id))
		w.inlines(n.Children)
		fmt.Fprintf(&w.buf, "</h%d>\n", level)
		w.heads = append(w.heads, Heading{Level: level, ID: id, Text: txt})
		return
	}

	switch n.Type {
	case richtext.TypeParagraph:
		// goldmark never writes an empty paragraph
		if plainText(n) == "" {
			return
		}
		w.buf.WriteString("<p>")
		w.inlines(n.Children)
		w.buf.WriteString("</p>\n")
	case "blockquote":
		w.buf.WriteString("<blockquote>\n")
		for _, c := range n.Children {
			w.blockOrInline(c)
		}
		w.buf.WriteString("</blockquote>\n")
	case "ul", "ol":
		fmt.Fprintf(&w.buf, "<%s>\n", n.Type)
		for _, c := range n.Children {
			w.listItem(c)
		}
		fmt.Fprintf(&w.buf, "</%s>\n", n.Type)
	case "hr":
		w.buf.WriteString("<hr>\n")
	case richtext.TypeText, "a":
		// inline content at block level gets its own paragraph
		w.buf.WriteString("<p>")
		w.inline(n)
		w.buf.WriteString("</p>\n")
	default:
		for _, c := range n.Children {
			w.block(c)
		}
	}
}

func (w *treeWriter) blockOrInline(n richtext.Node) {
	if n.Type == "lic" {
		w.buf.WriteString("<p>")
		w.inlines(n.Children)
		w.buf.WriteString("</p>\n")
		return
	}
	w.block(n)
}

func (w *treeWriter) listItem(n richtext.Node) {
	w.buf.WriteString("<li>")
	nested := false
	for _, c := range n.Children {
		switch c.Type {
		case "lic", richtext.TypeText, "a":
			w.inline(c)
		case richtext.TypeParagraph:
			w.inlines(c.Children)
		default:
			if !nested {
				w.buf.WriteString("\n")
				nested = true
			}
			w.block(c)
		}
	}
	w.buf.WriteString("</li>\n")
}

func (w *treeWriter) inlines(ns []richtext.Node) {
	for _, n := range ns {
		w.inline(n)
	}
}

func (w *treeWriter) inline(n richtext.Node) {
	switch n.Type {
	case richtext.TypeText:
		if n.Text == "" {
			return
		}
		openTag, closeTag := "", ""
		if n.Italic {
			openTag, closeTag = "<em>", "</em>"
		}
		if n.Bold {
			openTag, closeTag = openTag+"<strong>", "</strong>"+closeTag
		}
		w.buf.WriteString(openTag)
		w.buf.WriteString(htmlEscaper.Replace(n.Text))
		w.buf.WriteString(closeTag)
	case "a":
		fmt.Fprintf(&w.buf, `<a href="%s">`, htmlEscaper.Replace(n.URL))
		w.inlines(n.Children)
		w.buf.WriteString("</a>")
	default:
		w.inlines(n.Children)
	}
}

func plainText(n richtext.Node) string {
	if n.Type == richtext.TypeText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(plainText(c))
	}
	return b.String()
}
