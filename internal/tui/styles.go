// Package tui provides the terminal chat interface for hrdesk.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/hrdesk/internal/errors"
	"github.com/diogo/hrdesk/internal/render"
)

// Colors taken from the active theme
var (
	colorBorder  lipgloss.Color
	colorFocus   lipgloss.Color
	colorUser    lipgloss.Color
	colorBot     lipgloss.Color
	colorAccent  lipgloss.Color
	colorWarning lipgloss.Color
	colorError   lipgloss.Color
	colorText    lipgloss.Color
	colorTextDim lipgloss.Color
)

// Styles rebuilt by UpdateTheme
var (
	headerStyle    lipgloss.Style
	titleStyle     lipgloss.Style
	subtitleStyle  lipgloss.Style
	hintStyle      lipgloss.Style
	separatorStyle lipgloss.Style

	messagesAreaStyle lipgloss.Style
	userLabelStyle    lipgloss.Style
	userBubbleStyle   lipgloss.Style
	botLabelStyle     lipgloss.Style
	botBubbleStyle    lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	sendReadyStyle  lipgloss.Style
	sendIdleStyle   lipgloss.Style
	pendingStyle    lipgloss.Style

	pickerStyle         lipgloss.Style
	pickerTitleStyle    lipgloss.Style
	pickerItemStyle     lipgloss.Style
	pickerSelectedStyle lipgloss.Style
	pickerCursorStyle   lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style
	errorStyle      lipgloss.Style
)

func init() {
	UpdateTheme()
}

// UpdateTheme rebuilds all styles from render.GetTUITheme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorBorder = theme.Border
	colorFocus = theme.Focus
	colorUser = theme.User
	colorBot = theme.Bot
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	hintStyle = lipgloss.NewStyle().Foreground(colorTextDim).Italic(true)
	separatorStyle = lipgloss.NewStyle().Foreground(colorBorder)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().Foreground(colorUser).Bold(true).MarginLeft(4)
	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorUser).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(4)

	botLabelStyle = lipgloss.NewStyle().Foreground(colorBot).Bold(true)
	botBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBot).
		Padding(0, 1).
		MarginRight(4)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorFocus).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().Foreground(colorUser).Bold(true)
	sendReadyStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	sendIdleStyle = lipgloss.NewStyle().Foreground(colorTextDim).Faint(true)
	pendingStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	pickerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFocus).
		Padding(1, 2)
	pickerTitleStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	pickerItemStyle = lipgloss.NewStyle().Foreground(colorText)
	pickerSelectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	pickerCursorStyle = lipgloss.NewStyle().Foreground(colorAccent)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	statusKeyStyle = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	statusDescStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	noticeStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
}

// FormatError returns a styled error message with the details carried by
// the typed errors and a hint for the common failures.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}
	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	switch {
	case errors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: run 'hrdesk login' or 'hrdesk import-session' to refresh your session"))
	case errors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: the portal did not answer in time; raise timeout_seconds or try again"))
	case errors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: check that the portal is running and base_url is correct"))
	}

	return sb.String()
}
