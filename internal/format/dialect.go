package format

// Dialect is the markup vocabulary a block sequence is serialized into.
type Dialect struct {
	Name string

	StrongOpen, StrongClose     string
	EmphasisOpen, EmphasisClose string
	LineBreak                   string

	ListOpen, ListClose           string
	ListItemOpen, ListItemClose   string
	ParagraphOpen, ParagraphClose string

	// TrimTrailingNewlines strips newlines left at the end of the output
	TrimTrailingNewlines bool
}

// HTML is the markup the portal's web widget renders
var HTML = Dialect{
	Name:           "html",
	StrongOpen:     "<strong>",
	StrongClose:    "</strong>",
	EmphasisOpen:   "<em>",
	EmphasisClose:  "</em>",
	LineBreak:      "<br>",
	ListOpen:       "<ul>",
	ListClose:      "</ul>",
	ListItemOpen:   "<li>",
	ListItemClose:  "</li>",
	ParagraphOpen:  "<p>",
	ParagraphClose: "</p>",
}

// Markdown re-emits the same block structure as CommonMark so it can be
// handed to a terminal renderer.
var Markdown = Dialect{
	Name:                 "markdown",
	StrongOpen:           "**",
	StrongClose:          "**",
	EmphasisOpen:         "*",
	EmphasisClose:        "*",
	LineBreak:            "\n",
	ListOpen:             "",
	ListClose:            "\n",
	ListItemOpen:         "- ",
	ListItemClose:        "\n",
	ParagraphOpen:        "",
	ParagraphClose:       "\n\n",
	TrimTrailingNewlines: true,
}

// DialectByName returns a built-in dialect
func DialectByName(name string) (Dialect, bool) {
	switch name {
	case HTML.Name:
		return HTML, true
	case Markdown.Name, "md":
		return Markdown, true
	default:
		return Dialect{}, false
	}
}
