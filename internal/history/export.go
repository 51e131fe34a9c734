package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/diogo/hrdesk/internal/format"
	"github.com/diogo/hrdesk/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
	ExportFormatHTML     ExportFormat = "html"
)

// ParseExportFormat maps a flag value or file extension to a format
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "markdown", "md", "":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	case "html", "htm":
		return ExportFormatHTML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use markdown, json or html)", s)
	}
}

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format ExportFormat
	// IncludeRaw keeps the unformatted server text in JSON exports
	IncludeRaw bool
	// LineScan and EscapeHTML configure how bot turns are re-rendered
	LineScan   bool
	EscapeHTML bool
}

// DefaultExportOptions returns the default export options
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:     ExportFormatMarkdown,
		IncludeRaw: true,
	}
}

func (o ExportOptions) formatter(d format.Dialect) *format.Formatter {
	opts := []format.Option{format.WithDialect(d)}
	if o.LineScan {
		opts = append(opts, format.WithLineScan())
	}
	if o.EscapeHTML {
		opts = append(opts, format.WithEscaping())
	}
	return format.New(opts...)
}

// Export renders a conversation in opts.Format
func (s *Store) Export(id string, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return s.ExportToJSONWithOptions(id, opts)
	case ExportFormatHTML:
		out, err := s.ExportToHTMLWithOptions(id, opts)
		return []byte(out), err
	default:
		out, err := s.ExportToMarkdownWithOptions(id, opts)
		return []byte(out), err
	}
}

// ExportToMarkdown exports a conversation to Markdown format
func (s *Store) ExportToMarkdown(id string) (string, error) {
	return s.ExportToMarkdownWithOptions(id, DefaultExportOptions())
}

// ExportToMarkdownWithOptions exports a conversation to Markdown. Bot turns
// are re-rendered from their raw text with the Markdown dialect.
func (s *Store) ExportToMarkdownWithOptions(id string, opts ExportOptions) (string, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return "", err
	}

	md := opts.formatter(format.Markdown)
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(conv.Title)
	sb.WriteString("\n\n")

	if conv.BaseURL != "" {
		fmt.Fprintf(&sb, "**Portal:** %s\n", conv.BaseURL)
	}
	if conv.Username != "" {
		fmt.Fprintf(&sb, "**User:** %s\n", conv.Username)
	}
	fmt.Fprintf(&sb, "**Created:** %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Updated:** %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Messages:** %d\n\n---\n\n", len(conv.Messages))

	for i, msg := range conv.Messages {
		sb.WriteString("## ")
		sb.WriteString(senderLabel(msg.Sender))
		if !msg.SentAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.SentAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		if msg.IsBot() && msg.Raw != "" {
			sb.WriteString(md.Format(msg.Raw))
		} else {
			sb.WriteString(msg.Content)
		}
		sb.WriteString("\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String(), nil
}

// ExportToJSON exports a conversation to JSON format
func (s *Store) ExportToJSON(id string) ([]byte, error) {
	return s.ExportToJSONWithOptions(id, DefaultExportOptions())
}

// ExportToJSONWithOptions exports a conversation to JSON with options
func (s *Store) ExportToJSONWithOptions(id string, opts ExportOptions) ([]byte, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return nil, err
	}

	type ExportMessage struct {
		Sender  models.Sender `json:"sender"`
		Content string        `json:"content"`
		Raw     string        `json:"raw,omitempty"`
		SentAt  time.Time     `json:"sent_at"`
	}

	type ExportConversation struct {
		ID        string          `json:"id"`
		Title     string          `json:"title"`
		BaseURL   string          `json:"base_url,omitempty"`
		Username  string          `json:"username,omitempty"`
		CreatedAt time.Time       `json:"created_at"`
		UpdatedAt time.Time       `json:"updated_at"`
		Messages  []ExportMessage `json:"messages"`
	}

	export := ExportConversation{
		ID:        conv.ID,
		Title:     conv.Title,
		BaseURL:   conv.BaseURL,
		Username:  conv.Username,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Messages:  make([]ExportMessage, len(conv.Messages)),
	}

	for i, msg := range conv.Messages {
		export.Messages[i] = ExportMessage{
			Sender:  msg.Sender,
			Content: msg.Content,
			SentAt:  msg.SentAt,
		}
		if opts.IncludeRaw {
			export.Messages[i].Raw = msg.Raw
		}
	}

	return json.MarshalIndent(export, "", "  ")
}

var htmlExport = template.Must(template.New("conversation").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; color: #1f2937; }
.message { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 0.75rem; }
.user-message { background: #dbeafe; margin-left: 20%; }
.bot-message { background: #f3f4f6; margin-right: 20%; }
.meta { color: #6b7280; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{if .BaseURL}}{{.BaseURL}} · {{end}}{{.Created}}</p>
{{range .Messages}}<div class="message {{.Sender}}-message">
<div class="meta">{{.Label}}{{if .Time}} · {{.Time}}{{end}}</div>
<div class="message-content">{{.Body}}</div>
</div>
{{end}}</body>
</html>
`))

type htmlMessage struct {
	Sender string
	Label  string
	Time   string
	Body   template.HTML
}

// ExportToHTML exports a conversation as a standalone HTML page
func (s *Store) ExportToHTML(id string) (string, error) {
	return s.ExportToHTMLWithOptions(id, DefaultExportOptions())
}

// ExportToHTMLWithOptions renders bot turns with the HTML dialect, the same
// markup the portal's web widget shows. User turns are escaped.
func (s *Store) ExportToHTMLWithOptions(id string, opts ExportOptions) (string, error) {
	conv, err := s.GetConversation(id)
	if err != nil {
		return "", err
	}

	f := opts.formatter(format.HTML)
	data := struct {
		Title    string
		BaseURL  string
		Created  string
		Messages []htmlMessage
	}{
		Title:   conv.Title,
		BaseURL: conv.BaseURL,
		Created: conv.CreatedAt.Format("2006-01-02 15:04"),
	}

	for _, msg := range conv.Messages {
		hm := htmlMessage{
			Sender: string(msg.Sender),
			Label:  senderLabel(msg.Sender),
		}
		if !msg.SentAt.IsZero() {
			hm.Time = msg.SentAt.Format("15:04:05")
		}
		if msg.IsBot() {
			// Bot markup comes from the formatter, not from the user
			hm.Body = template.HTML(f.Format(msg.Source()))
		} else {
			hm.Body = template.HTML(template.HTMLEscapeString(msg.Content))
		}
		data.Messages = append(data.Messages, hm)
	}

	var buf bytes.Buffer
	if err := htmlExport.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render HTML export: %w", err)
	}
	return buf.String(), nil
}

func senderLabel(s models.Sender) string {
	if s == models.SenderBot {
		return "Assistant"
	}
	return "You"
}

// SearchResult represents a search match in conversations
type SearchResult struct {
	Conversation *Conversation
	MatchSnippet string // Snippet where the term was found
	MatchField   string // "title" or "content"
	MatchIndex   int    // Message index if MatchField is "content", -1 for title
}

// SearchConversations searches titles and, optionally, message text.
// Bot turns are searched by their plain text.
func (s *Store) SearchConversations(query string, searchContent bool) ([]*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	conversations, err := s.ListConversations()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var results []*SearchResult

	for _, conv := range conversations {
		if strings.Contains(strings.ToLower(conv.Title), queryLower) {
			results = append(results, &SearchResult{
				Conversation: conv,
				MatchSnippet: conv.Title,
				MatchField:   "title",
				MatchIndex:   -1,
			})
			continue
		}

		if !searchContent {
			continue
		}
		for i, msg := range conv.Messages {
			text := msg.Source()
			if strings.Contains(strings.ToLower(text), queryLower) {
				results = append(results, &SearchResult{
					Conversation: conv,
					MatchSnippet: extractSnippet(text, query, 100),
					MatchField:   "content",
					MatchIndex:   i,
				})
				break
			}
		}
	}

	return results, nil
}

// extractSnippet returns up to maxLen runes around the first match of query
func extractSnippet(content, query string, maxLen int) string {
	runes := []rune(strings.Join(strings.Fields(content), " "))
	lower := []rune(strings.ToLower(string(runes)))
	q := []rune(strings.ToLower(query))

	idx := indexRunes(lower, q)
	if idx == -1 {
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return string(runes)
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(q) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(runes) {
		end = len(runes)
		start = max(end-maxLen, 0)
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// FormatRelativeTime formats a time as "2h ago", "yesterday" and so on
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d min ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		if months < 12 {
			return fmt.Sprintf("%d months ago", months)
		}
		return t.Format("2006-01-02")
	}
}
