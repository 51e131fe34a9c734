package history

import (
	"sync"

	"github.com/diogo/hrdesk/internal/models"
)

// Recorder appends every message it receives to one conversation
type Recorder struct {
	store *Store

	mu       sync.Mutex
	id       string
	baseURL  string
	username string
}

// Recorder returns a sink that writes to conversation id
func (s *Store) Recorder(id string) *Recorder {
	return &Recorder{store: s, id: id}
}

// NewConversationRecorder returns a sink whose conversation is created on
// the first Record, so a session that never sends leaves no file behind.
func (s *Store) NewConversationRecorder(baseURL, username string) *Recorder {
	return &Recorder{store: s, baseURL: baseURL, username: username}
}

// ConversationID returns the conversation being written, empty until the
// first message of a lazily created conversation
func (r *Recorder) ConversationID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// Record appends msg to the conversation
func (r *Recorder) Record(msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.id == "" {
		conv, err := r.store.CreateConversation(r.baseURL, r.username)
		if err != nil {
			return err
		}
		r.id = conv.ID
	}
	return r.store.AddMessage(r.id, msg)
}
