package render

import (
	"bytes"
	"fmt"
	"github.com/yuin/goldmark/ast"
)

type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// headingIDs hands out heading anchors for one document. It satisfies
// goldmark's parser.IDs so markdown and rich-text bodies share one scheme:
// ASCII letters and digits lowercased, whitespace, '-' and '_' become '-',
// everything else dropped, repeats suffixed -1, -2, ...
type headingIDs struct {
	used map[string]bool
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{used: map[string]bool{}}
}

func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	value = bytes.TrimSpace(value)
	out := make([]byte, 0, len(value))
	for _, c := range value {
		switch {
		case c >= 0x80:
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case c == '-' || c == '_' || c == ' ' || (c >= '\t' && c <= '\r'):
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		if kind == ast.KindHeading {
			out = []byte("heading")
		} else {
			out = []byte("id")
		}
	}
	return []byte(h.claim(string(out)))
}

func (h *headingIDs) Put(value []byte) {
	h.used[string(value)] = true
}

func (h *headingIDs) next(text string) string {
	return string(h.Generate([]byte(text), ast.KindHeading))
}

func (h *headingIDs) claim(id string) string {
	if !h.used[id] {
		h.used[id] = true
		return id
	}
	for i := 1; ; i++ {
		alt := fmt.Sprintf("%s-%d", id, i)
		if !h.used[alt] {
			h.used[alt] = true
			return alt
		}
	}
}

// markdownHeadings lists the headings goldmark anchored while parsing doc.
func markdownHeadings(doc ast.Node, src []byte) []Heading {
	var out []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		var id string
		if v, ok := h.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				id = string(b)
			}
		}
		var buf bytes.Buffer
		writeText(&buf, h, src)
		out = append(out, Heading{Level: h.Level, ID: id, Text: buf.String()})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// writeText collects the literal text under n, styled runs included.
func writeText(buf *bytes.Buffer, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			writeText(buf, c, src)
		}
	}
}
