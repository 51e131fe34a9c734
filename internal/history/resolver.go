package history

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver resolves user-friendly references to conversation IDs
type Resolver struct {
	store *Store
}

// NewResolver creates a new alias resolver
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve converts a user-friendly reference to a conversation ID
//
// Supported references:
//   - "@last" - most recently updated conversation
//   - "@first" - oldest conversation
//   - "1", "2", "3" - by index (1-based, newest first)
//   - "conv-..." - full ID
//   - "3f2a9c1b" - unique ID prefix, as shown by 'history list'
//   - "substring" - title match (error if ambiguous)
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	conversations, err := r.store.ListConversations()
	if err != nil {
		return "", fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(conversations) == 0 {
		return "", fmt.Errorf("no conversations found")
	}

	switch strings.ToLower(ref) {
	case "@last":
		return conversations[0].ID, nil
	case "@first":
		return conversations[len(conversations)-1].ID, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(conversations) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(conversations))
		}
		return conversations[index-1].ID, nil
	}

	if strings.HasPrefix(ref, idPrefix) {
		for _, conv := range conversations {
			if conv.ID == ref {
				return conv.ID, nil
			}
		}
		return "", fmt.Errorf("conversation not found: %s", ref)
	}

	var byID []*Conversation
	for _, conv := range conversations {
		if strings.HasPrefix(strings.TrimPrefix(conv.ID, idPrefix), strings.ToLower(ref)) {
			byID = append(byID, conv)
		}
	}
	if len(byID) == 1 {
		return byID[0].ID, nil
	}

	refLower := strings.ToLower(ref)
	var matches []*Conversation
	for _, conv := range conversations {
		if strings.Contains(strings.ToLower(conv.Title), refLower) {
			matches = append(matches, conv)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no conversation matching '%s'", ref)
	case 1:
		return matches[0].ID, nil
	default:
		titles := make([]string, 0, len(matches))
		for _, m := range matches {
			titles = append(titles, fmt.Sprintf("'%s' (%s)", m.Title, m.ShortID()))
		}
		return "", fmt.Errorf("multiple conversations match '%s': %s. Use the ID or be more specific",
			ref, strings.Join(titles, ", "))
	}
}

// ResolveWithInfo resolves a reference and loads the conversation
func (r *Resolver) ResolveWithInfo(ref string) (*Conversation, error) {
	id, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return r.store.GetConversation(id)
}

// ListAliases returns help text for the supported references
func ListAliases() string {
	return `Supported references:
  @last          Most recently updated conversation
  @first         Oldest conversation
  1, 2, 3        By index (1-based, from most recent)
  3f2a9c1b       By ID prefix
  "text"         Search by title substring
  conv-...       Full conversation ID`
}
