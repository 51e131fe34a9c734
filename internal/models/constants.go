// Package models contains data types and constants shared by the HR portal
// client packages.
package models

// Portal endpoints, relative to the configured base URL
const (
	EndpointChat   = "/api/chat"
	EndpointLogin  = "/login"
	EndpointLogout = "/logout"
)

// SessionCookieName is the portal's session cookie
const SessionCookieName = "session"

// DefaultBaseURL is where the portal listens in development
const DefaultBaseURL = "http://127.0.0.1:5000"

// DefaultSeedMessage is the greeting shown as the first transcript entry.
// It is never removed by a clear.
const DefaultSeedMessage = "Hello! I'm your HR assistant. Ask me about your leave balances, documents, salary or employment details."

// FallbackReply replaces the bot turn whenever a chat request fails
const FallbackReply = "Sorry, I encountered an error. Please try again later."

// DefaultQuickQuestions are the onboarding examples offered with the seed
var DefaultQuickQuestions = []string{
	"How many sick days do I have?",
	"When does my passport expire?",
	"What's my salary information?",
	"Show me all my leave balances",
	"How many vacation days are left?",
}

// QuickQuestions returns a copy of the default onboarding questions
func QuickQuestions() []string {
	out := make([]string, len(DefaultQuickQuestions))
	copy(out, DefaultQuickQuestions)
	return out
}

// DefaultHeaders returns the headers sent with every portal request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// ChatHeaders returns the headers for the chat endpoint
func ChatHeaders() map[string]string {
	h := DefaultHeaders()
	h["Content-Type"] = "application/json"
	return h
}

// LoginHeaders returns the headers for the form login
func LoginHeaders() map[string]string {
	h := DefaultHeaders()
	h["Content-Type"] = "application/x-www-form-urlencoded"
	h["Accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	return h
}
