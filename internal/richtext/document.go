package richtext

import (
	"encoding/json"
	"strings"
)

const (
	TypeRoot      = "root"
	TypeH1        = "h1"
	TypeH2        = "h2"
	TypeH3        = "h3"
	TypeParagraph = "p"
	TypeText      = "text"
)

// Document is the root of a rich-text tree, shaped like the CMS's native
// rich-text JSON: {"type":"root","children":[...]}.
type Document struct {
	Type     string `json:"type"`
	Children []Node `json:"children"`
}

// Node is a block (h1..h3, p, or any block type the CMS emits) or an inline
// text run. Only text nodes carry Text/Bold/Italic.
type Node struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Bold     bool   `json:"bold,omitempty"`
	Italic   bool   `json:"italic,omitempty"`
	URL      string `json:"url,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// MarshalJSON always writes "text" on text nodes, including the empty run of
// an empty document.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	if n.Type != TypeText {
		return json.Marshal(plain(n))
	}
	return json.Marshal(struct {
		plain
		Text string `json:"text"`
	}{plain: plain(n), Text: n.Text})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == "" {
		p.Type = TypeRoot
	}
	*d = Document(p)
	return nil
}

// Empty returns the canonical empty document: one paragraph holding one
// empty text run.
func Empty() *Document {
	return &Document{
		Type: TypeRoot,
		Children: []Node{{
			Type:     TypeParagraph,
			Children: []Node{{Type: TypeText, Text: ""}},
		}},
	}
}

func Heading(level int, text string) Node {
	t := TypeH1
	switch level {
	case 2:
		t = TypeH2
	case 3:
		t = TypeH3
	}
	return Node{Type: t, Children: []Node{{Type: TypeText, Text: text}}}
}

// HeadingLevel reports the level of an h1..h6 node, or 0.
func HeadingLevel(n Node) int {
	if len(n.Type) == 2 && n.Type[0] == 'h' && n.Type[1] >= '1' && n.Type[1] <= '6' {
		return int(n.Type[1] - '0')
	}
	return 0
}

// PlainText flattens the document, one block per paragraph-separated chunk.
func PlainText(d *Document) string {
	if d == nil {
		return ""
	}
	parts := make([]string, 0, len(d.Children))
	for _, b := range d.Children {
		if s := strings.TrimSpace(nodeText(b)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func nodeText(n Node) string {
	if n.Type == TypeText {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
