// Package config handles configuration and session persistence for hrdesk.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/diogo/hrdesk/internal/models"
)

// HomeEnv overrides the configuration directory
const HomeEnv = "HRDESK_HOME"

// MarkdownConfig configures terminal rendering of bot replies
type MarkdownConfig struct {
	Style            string `json:"style"`             // glamour style name, e.g. "dark" or "light"
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
	WordWrap         int    `json:"word_wrap"`         // 0 uses the terminal width
}

// Config represents the user configuration
type Config struct {
	BaseURL  string `json:"base_url"`
	Username string `json:"username,omitempty"`
	// TimeoutSeconds bounds each chat request. Zero waits indefinitely.
	TimeoutSeconds int `json:"timeout_seconds"`
	// LineScanLists only treats a reply as a list when a line starts with a
	// bullet, instead of whenever '•' or '-' appears anywhere.
	LineScanLists   bool           `json:"line_scan_lists"`
	EscapeHTML      bool           `json:"escape_html"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	SaveHistory     bool           `json:"save_history"`
	Verbose         bool           `json:"verbose"`
	LogFile         string         `json:"log_file,omitempty"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
	QuickQuestions  []string       `json:"quick_questions,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		PreserveNewLines: true,
		WordWrap:         0,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:         models.DefaultBaseURL,
		TimeoutSeconds:  0,
		LineScanLists:   false,
		EscapeHTML:      false,
		CopyToClipboard: false,
		SaveHistory:     true,
		Verbose:         false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// Questions returns the configured quick questions or the defaults
func (c Config) Questions() []string {
	if len(c.QuickQuestions) > 0 {
		return append([]string(nil), c.QuickQuestions...)
	}
	return models.QuickQuestions()
}

// Host returns the host part of BaseURL
func (c Config) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".hrdesk"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the session cookie
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetSessionPath returns the path to the session file
func GetSessionPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "session.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

type setter func(cfg *Config, value string) error

var setters = map[string]setter{
	"base_url": func(cfg *Config, v string) error {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid base_url %q: expected http(s)://host[:port]", v)
		}
		cfg.BaseURL = strings.TrimRight(v, "/")
		return nil
	},
	"username": func(cfg *Config, v string) error {
		cfg.Username = v
		return nil
	},
	"timeout_seconds": func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid timeout_seconds %q: expected a non-negative integer", v)
		}
		cfg.TimeoutSeconds = n
		return nil
	},
	"line_scan_lists":   boolSetter(func(cfg *Config, b bool) { cfg.LineScanLists = b }),
	"escape_html":       boolSetter(func(cfg *Config, b bool) { cfg.EscapeHTML = b }),
	"copy_to_clipboard": boolSetter(func(cfg *Config, b bool) { cfg.CopyToClipboard = b }),
	"save_history":      boolSetter(func(cfg *Config, b bool) { cfg.SaveHistory = b }),
	"verbose":           boolSetter(func(cfg *Config, b bool) { cfg.Verbose = b }),
	"log_file": func(cfg *Config, v string) error {
		cfg.LogFile = v
		return nil
	},
	"tui_theme": func(cfg *Config, v string) error {
		cfg.TUITheme = v
		return nil
	},
	"markdown.style": func(cfg *Config, v string) error {
		if v == "" {
			return fmt.Errorf("markdown.style cannot be empty")
		}
		cfg.Markdown.Style = v
		return nil
	},
	"markdown.preserve_newlines": boolSetter(func(cfg *Config, b bool) { cfg.Markdown.PreserveNewLines = b }),
	"markdown.word_wrap": func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid markdown.word_wrap %q: expected a non-negative integer", v)
		}
		cfg.Markdown.WordWrap = n
		return nil
	},
}

func boolSetter(apply func(cfg *Config, b bool)) setter {
	return func(cfg *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		apply(cfg, b)
		return nil
	}
}

// Set updates one key of cfg from its string form
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (available: %s)", key, strings.Join(Keys(), ", "))
	}
	return set(c, value)
}

// Keys returns the keys accepted by Set, sorted
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
