package models

import "time"

// Sender identifies who authored a transcript entry
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is a known sender
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Message is one transcript entry. Content holds the display text: the
// trimmed input for user turns, formatter output (or the fallback text) for
// bot turns. Raw keeps the unformatted server text for bot turns.
type Message struct {
	Content string    `json:"content"`
	Sender  Sender    `json:"sender"`
	Raw     string    `json:"raw,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// IsUser reports whether the message was typed by the user
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// IsBot reports whether the message came from the assistant
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}

// Source returns the text the message was built from: Raw when set,
// Content otherwise.
func (m Message) Source() string {
	if m.Raw != "" {
		return m.Raw
	}
	return m.Content
}
