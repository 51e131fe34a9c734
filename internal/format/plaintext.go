package format

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// PlainText strips HTML markup produced by the HTML dialect, keeping line
// structure: paragraphs are separated by a blank line, list items are
// prefixed with a bullet and entities are decoded.
func PlainText(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var sb strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			out := blankRuns.ReplaceAllString(sb.String(), "\n\n")
			return strings.TrimSpace(out)

		case html.TextToken:
			sb.Write(z.Text())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br":
				sb.WriteString("\n")
			case "li":
				sb.WriteString("• ")
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "p":
				sb.WriteString("\n\n")
			case "li":
				sb.WriteString("\n")
			case "ul":
				sb.WriteString("\n")
			}
		}
	}
}
