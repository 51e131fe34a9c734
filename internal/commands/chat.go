package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/format"
	"github.com/diogo/hrdesk/internal/render"
	"github.com/diogo/hrdesk/internal/tui"
)

func newChatCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat with the HR assistant.

Enter sends, Ctrl+O opens the quick questions, Ctrl+L clears the
conversation and Ctrl+Y copies the last reply. Esc cancels a pending
request or quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, flags)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies, flags *globalFlags) error {
	e, err := loadEnv(deps, flags, true)
	if err != nil {
		return err
	}
	defer e.close()

	client, err := connect(deps, e)
	if err != nil {
		return err
	}
	defer client.Close()

	ctrl := newController(e, client, format.Markdown, openRecorder(deps, e))
	e.logger.Info("chat started", "host", client.Host())

	return deps.RunTUI(ctrl, tui.Options{
		Host:        client.Host(),
		Render:      render.OptionsFromConfig(e.cfg),
		CopyReplies: e.cfg.CopyToClipboard,
		Context:     cmd.Context(),
	})
}
