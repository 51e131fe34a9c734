package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apierrors "github.com/diogo/hrdesk/internal/errors"
	"github.com/diogo/hrdesk/internal/models"
)

// Session holds the portal's session cookie
type Session struct {
	mu    sync.RWMutex `json:"-"`
	Name  string       `json:"name"`
	Value string       `json:"value"`
	Host  string       `json:"host,omitempty"`
}

// NewSession creates a session for the portal's session cookie
func NewSession(value, host string) *Session {
	return &Session{Name: models.SessionCookieName, Value: value, Host: host}
}

// GetValue returns the cookie value in a thread-safe manner
func (s *Session) GetValue() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Value
}

// GetName returns the cookie name, defaulting to the portal's
func (s *Session) GetName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Name == "" {
		return models.SessionCookieName
	}
	return s.Name
}

// SetValue replaces the cookie value
func (s *Session) SetValue(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Value = value
}

// Snapshot returns name, value and host atomically
func (s *Session) Snapshot() (name, value, host string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name = s.Name
	if name == "" {
		name = models.SessionCookieName
	}
	return name, s.Value, s.Host
}

// CookieListItem represents a cookie in browser export format
type CookieListItem struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
}

// ValidateSession checks that a session carries a cookie value
func ValidateSession(s *Session) error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	if s.GetValue() == "" {
		return fmt.Errorf("missing required cookie: %s", models.SessionCookieName)
	}
	return nil
}

// ParseSession parses a session from JSON data. It accepts the dict format
// {"session": "..."} and the browser export list format [{name, value}].
func ParseSession(data []byte) (*Session, error) {
	var dictFormat map[string]string
	if err := json.Unmarshal(data, &dictFormat); err == nil {
		value, ok := dictFormat[models.SessionCookieName]
		if !ok {
			// Our own session.json uses {"name", "value", "host"}
			if dictFormat["name"] == models.SessionCookieName && dictFormat["value"] != "" {
				return NewSession(dictFormat["value"], dictFormat["host"]), nil
			}
			return nil, fmt.Errorf("missing required cookie: %s", models.SessionCookieName)
		}
		if value == "" {
			return nil, fmt.Errorf("missing required cookie: %s", models.SessionCookieName)
		}
		return NewSession(value, dictFormat["host"]), nil
	}

	var listFormat []CookieListItem
	if err := json.Unmarshal(data, &listFormat); err == nil {
		for _, item := range listFormat {
			if item.Name == models.SessionCookieName && item.Value != "" {
				return NewSession(item.Value, item.Domain), nil
			}
		}
		return nil, fmt.Errorf("missing required cookie: %s", models.SessionCookieName)
	}

	return nil, fmt.Errorf("invalid session format: expected list [{name, value}] or dict {name: value}")
}

// LoadSession loads the stored session
func LoadSession() (*Session, error) {
	sessionPath, err := GetSessionPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(sessionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: run 'hrdesk login' or 'hrdesk import-session <file>'", apierrors.ErrNoSession)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	return ParseSession(data)
}

// SaveSession writes the session with owner-only permissions
func SaveSession(s *Session) error {
	if err := ValidateSession(s); err != nil {
		return err
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	s.mu.RLock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, "session.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// DeleteSession removes the stored session. A missing file is not an error.
func DeleteSession() error {
	sessionPath, err := GetSessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(sessionPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// ImportSession imports a session from a cookie export file
func ImportSession(sourcePath string) (*Session, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source file not found: %s", sourcePath)
		}
		return nil, fmt.Errorf("could not read file: %w", err)
	}

	s, err := ParseSession(data)
	if err != nil {
		return nil, err
	}

	if err := SaveSession(s); err != nil {
		return nil, err
	}
	return s, nil
}
