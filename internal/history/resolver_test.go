package history

import (
	"strings"
	"testing"
	"time"
)

func resolverFixture(t *testing.T) (*Resolver, []*Conversation) {
	t.Helper()
	store, _ := NewStore(t.TempDir())

	var convs []*Conversation
	for _, title := range []string{"Sick days", "Passport expiry", "Sick leave policy"} {
		conv, _ := store.CreateConversation("", "")
		store.AddMessage(conv.ID, userMsg(title))
		conv, _ = store.GetConversation(conv.ID)
		convs = append(convs, conv)
		time.Sleep(10 * time.Millisecond)
	}
	return NewResolver(store), convs
}

func TestResolver_Resolve(t *testing.T) {
	r, convs := resolverFixture(t)
	oldest, middle, newest := convs[0], convs[1], convs[2]

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr string
	}{
		{"last", "@last", newest.ID, ""},
		{"first", "@FIRST", oldest.ID, ""},
		{"index 1", "1", newest.ID, ""},
		{"index 3", "3", oldest.ID, ""},
		{"index out of range", "4", "", "out of range"},
		{"full id", middle.ID, middle.ID, ""},
		{"missing full id", "conv-nope", "", "not found"},
		{"short id", middle.ShortID(), middle.ID, ""},
		{"unique title", "passport", middle.ID, ""},
		{"ambiguous title", "sick", "", "multiple conversations"},
		{"no match", "salary", "", "no conversation matching"},
		{"empty", "  ", "", "empty reference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Resolve(%q) error = %v, want %q", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolver_Empty(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	if _, err := NewResolver(store).Resolve("@last"); err == nil {
		t.Error("expected error with no conversations")
	}
}

func TestResolver_ResolveWithInfo(t *testing.T) {
	r, convs := resolverFixture(t)

	conv, err := r.ResolveWithInfo("@last")
	if err != nil {
		t.Fatalf("ResolveWithInfo failed: %v", err)
	}
	if conv.ID != convs[2].ID || len(conv.Messages) != 1 {
		t.Errorf("conv = %+v", conv)
	}
}

func TestListAliases(t *testing.T) {
	if !strings.Contains(ListAliases(), "@last") {
		t.Error("ListAliases() should document @last")
	}
}
