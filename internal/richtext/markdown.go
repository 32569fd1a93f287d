package richtext

import (
	"strings"
)

// FromMarkdown converts the supported markdown subset (# / ## / ### headings,
// paragraphs, **bold**, *italic*) into a Document. Anything else (lists,
// links, code, tables) comes through as paragraph text.
//
// The result is never empty: input with no content yields Empty().
func FromMarkdown(src string) *Document {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")

	var s blockScanner
	for _, line := range strings.Split(src, "\n") {
		s.feed(line)
	}
	s.flush()

	if len(s.blocks) == 0 {
		return Empty()
	}
	return &Document{Type: TypeRoot, Children: s.blocks}
}

type lineState int

const (
	lineIdle lineState = iota
	lineParagraph
)

// blockScanner is the line-level state machine. In lineParagraph it holds the
// lines of the paragraph being built; a heading or a blank line flushes it.
type blockScanner struct {
	state  lineState
	para   []string
	blocks []Node
}

func (s *blockScanner) feed(line string) {
	if level, text, ok := headingLine(line); ok {
		s.flush()
		// an empty heading would carry an empty leaf; drop it
		if text != "" {
			s.blocks = append(s.blocks, Heading(level, text))
		}
		return
	}
	if strings.TrimSpace(line) == "" {
		s.flush()
		return
	}
	s.para = append(s.para, line)
	s.state = lineParagraph
}

func (s *blockScanner) flush() {
	if s.state != lineParagraph {
		return
	}
	text := strings.TrimSpace(strings.Join(s.para, "\n"))
	s.para = s.para[:0]
	s.state = lineIdle
	if text == "" {
		return
	}
	s.blocks = append(s.blocks, Node{
		Type:     TypeParagraph,
		Children: parseInline(text),
	})
}

// headingLine checks the longest prefix first so "### x" is never read as a
// level-1 heading.
func headingLine(line string) (int, string, bool) {
	for _, h := range [...]struct {
		prefix string
		level  int
	}{
		{"### ", 3},
		{"## ", 2},
		{"# ", 1},
	} {
		if strings.HasPrefix(line, h.prefix) {
			return h.level, strings.TrimSpace(line[len(h.prefix):]), true
		}
	}
	return 0, "", false
}

type inlineState int

const (
	inPlain inlineState = iota
	inBold
	inItalic
)

// parseInline scans one block's text. "**" toggles bold, a lone "*" toggles
// italic; inside bold a single "*" is literal. End of text is an implicit
// close: an unterminated "**abc" yields a bold "abc" run.
func parseInline(text string) []Node {
	var (
		state = inPlain
		buf   strings.Builder
		out   []Node
	)
	emit := func() {
		if buf.Len() == 0 {
			return
		}
		n := Node{Type: TypeText, Text: buf.String()}
		switch state {
		case inBold:
			n.Bold = true
		case inItalic:
			n.Italic = true
		}
		out = append(out, n)
		buf.Reset()
	}

	for i := 0; i < len(text); {
		star := text[i] == '*'
		double := star && i+1 < len(text) && text[i+1] == '*'

		switch {
		case state == inPlain && double:
			emit()
			state = inBold
			i += 2
			continue
		case state == inPlain && star:
			emit()
			state = inItalic
			i++
			continue
		case state == inBold && double:
			emit()
			state = inPlain
			i += 2
			continue
		case state == inItalic && star:
			emit()
			state = inPlain
			i++
			continue
		}
		buf.WriteByte(text[i])
		i++
	}
	emit()

	if len(out) == 0 {
		return []Node{{Type: TypeText, Text: text}}
	}
	return out
}

// Serialize writes a document back to the supported markdown subset. For
// trees produced by FromMarkdown, FromMarkdown(Serialize(d)) equals d.
func Serialize(d *Document) string {
	if d == nil {
		return ""
	}
	blocks := make([]string, 0, len(d.Children))
	for _, b := range d.Children {
		var sb strings.Builder
		switch HeadingLevel(b) {
		case 1:
			sb.WriteString("# ")
		case 2:
			sb.WriteString("## ")
		case 3, 4, 5, 6:
			sb.WriteString("### ")
		}
		writeInline(&sb, b.Children)
		if s := sb.String(); strings.TrimSpace(s) != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func writeInline(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		if n.Type != TypeText {
			writeInline(sb, n.Children)
			continue
		}
		switch {
		case n.Bold:
			sb.WriteString("**" + n.Text + "**")
		case n.Italic:
			sb.WriteString("*" + n.Text + "*")
		default:
			sb.WriteString(n.Text)
		}
	}
}
