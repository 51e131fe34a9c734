package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diogo/hrdesk/internal/history"
	"github.com/diogo/hrdesk/internal/models"
)

// seedHistory stores two conversations, the leave one updated last
func seedHistory(t *testing.T) (*history.Store, []*history.Conversation) {
	t.Helper()
	store, err := history.DefaultStore()
	if err != nil {
		t.Fatal(err)
	}

	add := func(question, raw, content string) *history.Conversation {
		conv, err := store.CreateConversation("https://hr.example.com", "jdoe")
		if err != nil {
			t.Fatal(err)
		}
		msgs := []models.Message{
			{Content: question, Sender: models.SenderUser},
			{Content: content, Raw: raw, Sender: models.SenderBot},
		}
		for _, m := range msgs {
			if err := store.AddMessage(conv.ID, m); err != nil {
				t.Fatal(err)
			}
		}
		conv, _ = store.GetConversation(conv.ID)
		return conv
	}

	passport := add("Passport expiry", "Renew **soon**", "<p>Renew <strong>soon</strong></p>")
	time.Sleep(10 * time.Millisecond)
	leave := add("Show my leave balances", "Sick: **8**", "<p>Sick: <strong>8</strong></p>")
	return store, []*history.Conversation{leave, passport}
}

func TestHistory_ListEmpty(t *testing.T) {
	te := newTestEnv(t)
	if err := te.run(t, "history", "list"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(te.stdout.String(), "No conversations found.") {
		t.Errorf("stdout = %q", te.stdout.String())
	}
}

func TestHistory_List(t *testing.T) {
	te := newTestEnv(t)
	_, convs := seedHistory(t)

	if err := te.run(t, "history", "list"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(te.stdout.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows, got:\n%s", te.stdout.String())
	}
	if !strings.Contains(lines[2], convs[0].ShortID()) || !strings.Contains(lines[2], "Show my leave balances") {
		t.Errorf("first row should be the newest conversation: %q", lines[2])
	}
}

func TestHistory_Show(t *testing.T) {
	te := newTestEnv(t)
	seedHistory(t)

	if err := te.run(t, "history", "show", "@last"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := te.stdout.String()
	for _, want := range []string{"Title: Show my leave balances", "Portal: https://hr.example.com", "[2] Assistant", "Sick: **8**"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestHistory_ShowUnknownRef(t *testing.T) {
	te := newTestEnv(t)
	seedHistory(t)
	if err := te.run(t, "history", "show", "9"); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestHistory_Export(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		file  string
		check func(t *testing.T, out string)
	}{
		{
			name: "markdown to stdout",
			args: []string{"@last"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "Sick: **8**") || strings.Contains(out, "<strong>") {
					t.Errorf("markdown export = %q", out)
				}
			},
		},
		{
			name: "format from extension",
			file: "leave.html",
			args: []string{"1"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "<!DOCTYPE html>") || !strings.Contains(out, "<strong>8</strong>") {
					t.Errorf("html export = %q", out)
				}
			},
		},
		{
			name: "json without raw",
			args: []string{"passport", "--format", "json", "--no-raw"},
			check: func(t *testing.T, out string) {
				if !json.Valid([]byte(out)) {
					t.Fatalf("invalid JSON: %s", out)
				}
				if strings.Contains(out, `"raw"`) {
					t.Errorf("raw should be omitted: %s", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t)
			seedHistory(t)

			args := append([]string{"history", "export"}, tt.args...)
			var path string
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), tt.file)
				args = append(args, "-o", path)
			}
			if err := te.run(t, args...); err != nil {
				t.Fatalf("run() error = %v", err)
			}

			out := te.stdout.String()
			if path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					t.Fatal(err)
				}
				out = string(data)
			}
			tt.check(t, out)
		})
	}
}

func TestHistory_ExportBadFormat(t *testing.T) {
	te := newTestEnv(t)
	seedHistory(t)
	if err := te.run(t, "history", "export", "@last", "--format", "pdf"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestHistory_RenameAndDelete(t *testing.T) {
	te := newTestEnv(t)
	store, convs := seedHistory(t)

	if err := te.run(t, "history", "rename", convs[1].ID, "Travel documents"); err != nil {
		t.Fatalf("rename error = %v", err)
	}
	got, _ := store.GetConversation(convs[1].ID)
	if got.Title != "Travel documents" {
		t.Errorf("Title = %q", got.Title)
	}

	if err := te.run(t, "history", "delete", convs[1].ID); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if _, err := store.GetConversation(convs[1].ID); err == nil {
		t.Error("conversation should be deleted")
	}
}

func TestHistory_Clear(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		stdin     string
		wantLeft  int
		wantInOut string
	}{
		{"declined", nil, "n\n", 2, "Aborted."},
		{"confirmed", nil, "yes\n", 0, "Deleted 2 conversation(s)."},
		{"forced", []string{"--force"}, "", 0, "Deleted 2 conversation(s)."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newTestEnv(t)
			store, _ := seedHistory(t)
			te.withStdin(tt.stdin)

			if err := te.run(t, append([]string{"history", "clear"}, tt.args...)...); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			convs, _ := store.ListConversations()
			if len(convs) != tt.wantLeft {
				t.Errorf("left = %d, want %d", len(convs), tt.wantLeft)
			}
			if !strings.Contains(te.stdout.String(), tt.wantInOut) {
				t.Errorf("stdout = %q", te.stdout.String())
			}
		})
	}
}

func TestHistory_Search(t *testing.T) {
	te := newTestEnv(t)
	seedHistory(t)

	if err := te.run(t, "history", "search", "renew"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := te.stdout.String()
	if !strings.Contains(out, "Passport expiry") || !strings.Contains(out, "#2:") {
		t.Errorf("search output = %q", out)
	}

	te.stdout.Reset()
	if err := te.run(t, "history", "search", "--titles", "renew"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(te.stdout.String(), "No matches.") {
		t.Errorf("titles-only search = %q", te.stdout.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged, got %s", got)
	}
	if got := truncate("abcdefghijklmnopqrstuvwxyz", 5); got != "abcde..." {
		t.Fatalf("expected truncated with ellipsis, got %s", got)
	}
	if got := truncate("férias férias", 6); got != "férias..." {
		t.Fatalf("expected rune-safe truncation, got %s", got)
	}
}
