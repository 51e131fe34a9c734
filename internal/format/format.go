// Package format converts the assistant's lightweight text format (bold,
// italics, line breaks, bullet lists, paragraphs) into structured markup.
//
// Formatting is pure: the same input always yields the same output and
// nothing outside the returned value is touched.
package format

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// BlockKind identifies a block in the intermediate representation
type BlockKind int

const (
	Paragraph BlockKind = iota
	ListStart
	ListItem
	ListEnd
)

// String returns the block kind name
func (k BlockKind) String() string {
	switch k {
	case Paragraph:
		return "Paragraph"
	case ListStart:
		return "ListStart"
	case ListItem:
		return "ListItem"
	case ListEnd:
		return "ListEnd"
	default:
		return fmt.Sprintf("BlockKind(%d)", int(k))
	}
}

// Block is one element of a formatted message. Text is set for Paragraph
// and ListItem only and already carries inline markup.
type Block struct {
	Kind BlockKind
	Text string
}

// String renders the block for debugging, e.g. ListItem(one)
func (b Block) String() string {
	switch b.Kind {
	case Paragraph, ListItem:
		return fmt.Sprintf("%s(%s)", b.Kind, b.Text)
	default:
		return b.Kind.String()
	}
}

// Route is the structuring strategy chosen once per message
type Route int

const (
	// RouteParagraphs splits on blank lines only
	RouteParagraphs Route = iota
	// RouteList scans line by line, grouping bullet lines into lists
	RouteList
)

// String returns the route name
func (r Route) String() string {
	if r == RouteList {
		return "list"
	}
	return "paragraphs"
}

// Inline markers stand in for dialect markup until serialization, so a
// dialect whose strong markup contains '*' is never re-read by the italic
// pass. NUL is stripped from input; it is the marker alphabet.
const (
	markStrongOpen  = "\x00S"
	markStrongClose = "\x00s"
	markEmOpen      = "\x00E"
	markEmClose     = "\x00e"
	markBreak       = "\x00B"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
)

const bulletMarkers = "•-"

// Formatter turns raw assistant text into markup
type Formatter struct {
	dialect  Dialect
	lineScan bool
	escape   bool
}

// Option configures a Formatter
type Option func(*Formatter)

// WithDialect selects the output markup (default HTML)
func WithDialect(d Dialect) Option {
	return func(f *Formatter) {
		f.dialect = d
	}
}

// WithLineScan routes a message through list scanning only when one of its
// lines actually starts with a bullet marker. Without it, any '•' or '-'
// anywhere in the text selects list scanning, which is what the web widget
// does.
func WithLineScan() Option {
	return func(f *Formatter) {
		f.lineScan = true
	}
}

// WithEscaping HTML-escapes raw text before any substitution
func WithEscaping() Option {
	return func(f *Formatter) {
		f.escape = true
	}
}

// New creates a Formatter
func New(opts ...Option) *Formatter {
	f := &Formatter{dialect: HTML}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var defaultFormatter = New()

// Format renders raw with the default formatter (HTML, web widget routing)
func Format(raw string) string {
	return defaultFormatter.Format(raw)
}

// Dialect returns the formatter's output dialect
func (f *Formatter) Dialect() Dialect {
	return f.dialect
}

// Format renders raw into the formatter's dialect
func (f *Formatter) Format(raw string) string {
	return Serialize(f.Blocks(raw), f.dialect)
}

// Route reports which structuring strategy raw would take
func (f *Formatter) Route(raw string) Route {
	return f.route(f.inline(raw))
}

// Blocks returns the block sequence for raw with inline markup rendered in
// the formatter's dialect.
func (f *Formatter) Blocks(raw string) []Block {
	text := f.inline(raw)
	if text == "" {
		return nil
	}

	var blocks []Block
	switch f.route(text) {
	case RouteList:
		blocks = scanLines(text)
	default:
		blocks = splitParagraphs(text)
	}

	r := f.inlineReplacer()
	for i := range blocks {
		if blocks[i].Text != "" {
			blocks[i].Text = r.Replace(blocks[i].Text)
		}
	}
	return blocks
}

// inline applies emphasis and newline substitution. Bold runs first so
// that "**x**" is never half-consumed by the italic rule.
func (f *Formatter) inline(raw string) string {
	s := strings.ReplaceAll(raw, "\x00", "")
	if f.escape {
		s = html.EscapeString(s)
	}
	s = boldPattern.ReplaceAllString(s, markStrongOpen+"${1}"+markStrongClose)
	s = italicPattern.ReplaceAllString(s, markEmOpen+"${1}"+markEmClose)
	return strings.ReplaceAll(s, "\n", markBreak)
}

func (f *Formatter) route(text string) Route {
	if f.lineScan {
		for _, line := range strings.Split(text, markBreak) {
			if _, ok := cutMarker(strings.TrimSpace(line)); ok {
				return RouteList
			}
		}
		return RouteParagraphs
	}
	if strings.ContainsAny(text, bulletMarkers) {
		return RouteList
	}
	return RouteParagraphs
}

func (f *Formatter) inlineReplacer() *strings.Replacer {
	d := f.dialect
	return strings.NewReplacer(
		markStrongOpen, d.StrongOpen,
		markStrongClose, d.StrongClose,
		markEmOpen, d.EmphasisOpen,
		markEmClose, d.EmphasisClose,
		markBreak, d.LineBreak,
	)
}

// scanLines groups consecutive bullet lines into one list; every other
// non-blank line becomes a paragraph. An open list is closed at the end.
func scanLines(text string) []Block {
	var blocks []Block
	inList := false

	for _, line := range strings.Split(text, markBreak) {
		trimmed := strings.TrimSpace(line)
		if item, ok := cutMarker(trimmed); ok {
			if !inList {
				blocks = append(blocks, Block{Kind: ListStart})
				inList = true
			}
			blocks = append(blocks, Block{Kind: ListItem, Text: item})
			continue
		}

		if inList {
			blocks = append(blocks, Block{Kind: ListEnd})
			inList = false
		}
		if trimmed != "" {
			blocks = append(blocks, Block{Kind: Paragraph, Text: trimmed})
		}
	}

	if inList {
		blocks = append(blocks, Block{Kind: ListEnd})
	}
	return blocks
}

// splitParagraphs splits on blank lines; single line breaks stay inside
// the paragraph.
func splitParagraphs(text string) []Block {
	var blocks []Block
	for _, segment := range strings.Split(text, markBreak+markBreak) {
		if trimmed := strings.TrimSpace(segment); trimmed != "" {
			blocks = append(blocks, Block{Kind: Paragraph, Text: trimmed})
		}
	}
	return blocks
}

// cutMarker strips one leading bullet marker and the whitespace after it
func cutMarker(line string) (string, bool) {
	for _, marker := range []string{"•", "-"} {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}

// Serialize concatenates blocks in order using the dialect's markup
func Serialize(blocks []Block, d Dialect) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch b.Kind {
		case ListStart:
			sb.WriteString(d.ListOpen)
		case ListItem:
			sb.WriteString(d.ListItemOpen)
			sb.WriteString(b.Text)
			sb.WriteString(d.ListItemClose)
		case ListEnd:
			sb.WriteString(d.ListClose)
		case Paragraph:
			sb.WriteString(d.ParagraphOpen)
			sb.WriteString(b.Text)
			sb.WriteString(d.ParagraphClose)
		}
	}

	out := sb.String()
	if d.TrimTrailingNewlines {
		out = strings.TrimRight(out, "\n")
	}
	return out
}
