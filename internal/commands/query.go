package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/format"
	"github.com/diogo/hrdesk/internal/render"
)

// queryFlags are the one-shot flags of the root command
type queryFlags struct {
	output string
	file   string
	html   bool
}

var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#9ece6a")).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#9ece6a")).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)

	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e"))
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
)

// runQuery sends one question and prints the reply. Unlike the chat
// window, a failed request is reported as an error.
func runQuery(cmd *cobra.Command, deps *Dependencies, flags *globalFlags, q *queryFlags, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	e, err := loadEnv(deps, flags, false)
	if err != nil {
		return err
	}
	defer e.close()

	client, err := connect(deps, e)
	if err != nil {
		return err
	}
	defer client.Close()

	dialect := format.Markdown
	if q.html {
		dialect = format.HTML
	}
	ctrl := newController(e, client, dialect, openRecorder(deps, e))

	ex, err := ctrl.Submit(cmd.Context(), question)
	if err != nil {
		return err
	}

	tty := deps.IsTerminal()
	var spin *spinner
	if tty {
		spin = newSpinner(deps.Stderr, "Asking the HR assistant")
		spin.start()
	}

	start := time.Now()
	reply, callErr := ex.Call()
	msg, _ := ctrl.Resolve(ex, reply, callErr)
	e.logger.Debug("exchange finished", "duration", time.Since(start).Round(time.Millisecond), "ok", callErr == nil)

	if callErr != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("chat request failed: %w", callErr)
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	if e.cfg.CopyToClipboard {
		if err := deps.Copy(msg.Source()); err != nil {
			fmt.Fprintln(deps.Stderr, warnStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(deps.Stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if q.output != "" {
		if err := os.WriteFile(q.output, []byte(msg.Content+"\n"), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintln(deps.Stderr, successStyle.Render(fmt.Sprintf("✓ Reply saved to %s", q.output)))
		return nil
	}

	// Pipes get the markup itself
	if q.html || !tty {
		fmt.Fprintln(deps.Stdout, msg.Content)
		return nil
	}

	bubbleWidth := min(max(deps.TerminalWidth()-4, 40), 120)
	opts := render.OptionsFromConfig(e.cfg).WithWidth(bubbleWidth - 4)

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ HR Assistant"))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(render.MarkdownOrPlain(msg.Content, opts)))
	return nil
}
