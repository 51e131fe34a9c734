package render

import (
	"os"

	"github.com/diogo/hrdesk/internal/config"
)

// StyleEnv overrides the configured markdown style
const StyleEnv = "GLAMOUR_STYLE"

// OptionsFromConfig builds render options from cfg. The StyleEnv variable
// wins over the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.PreserveNewLines = md.PreserveNewLines
	if md.WordWrap > 0 {
		opts.Width = md.WordWrap
	}

	if style := os.Getenv(StyleEnv); style != "" {
		opts.Style = style
	}
	return opts
}

// LoadOptionsFromConfig reads the user configuration and builds options.
// A missing or broken config file yields the defaults.
func LoadOptionsFromConfig() Options {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return OptionsFromConfig(cfg)
}
