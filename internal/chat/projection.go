package chat

import (
	"strings"

	"github.com/diogo/hrdesk/internal/models"
)

// Entry is one transcript row of a View
type Entry struct {
	Sender  models.Sender
	Content string
	Seed    bool
}

// View describes what the chat surface should show for a state
type View struct {
	Entries []Entry

	// InputEnabled is false while a reply is pending
	InputEnabled bool
	// SendEnabled requires an idle controller and non-blank input
	SendEnabled bool
	// ShowPending toggles the typing indicator
	ShowPending bool
	// ScrollToEnd keeps the latest entry visible
	ScrollToEnd bool
	// Onboarding is set while only the seed message is present
	Onboarding bool
}

// Project maps a conversation state and the current input buffer to a View.
// It is pure.
func Project(state ConversationState, input string) View {
	entries := make([]Entry, len(state.Messages))
	for i, m := range state.Messages {
		entries[i] = Entry{
			Sender:  m.Sender,
			Content: m.Content,
			Seed:    i == 0,
		}
	}

	return View{
		Entries:      entries,
		InputEnabled: !state.Pending,
		SendEnabled:  !state.Pending && strings.TrimSpace(input) != "",
		ShowPending:  state.Pending,
		ScrollToEnd:  true,
		Onboarding:   len(state.Messages) == 1,
	}
}
