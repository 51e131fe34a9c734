package commands

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/format"
	"github.com/diogo/hrdesk/internal/history"
	"github.com/diogo/hrdesk/internal/models"
)

func newHistoryCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage conversation history",
		Long: `View and manage the conversations saved when save_history is on.

` + history.ListAliases(),
	}

	cmd.AddCommand(
		newHistoryListCmd(deps),
		newHistoryShowCmd(deps),
		newHistoryExportCmd(deps, flags),
		newHistoryRenameCmd(deps),
		newHistoryDeleteCmd(deps),
		newHistoryClearCmd(deps),
		newHistorySearchCmd(deps),
	)
	return cmd
}

func openStore() (*history.Store, error) {
	store, err := history.DefaultStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

// resolveRef opens the store and resolves ref to a conversation ID
func resolveRef(ref string) (*history.Store, string, error) {
	store, err := openStore()
	if err != nil {
		return nil, "", err
	}
	id, err := history.NewResolver(store).Resolve(ref)
	if err != nil {
		return nil, "", err
	}
	return store, id, nil
}

func newHistoryListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			conversations, err := store.ListConversations()
			if err != nil {
				return fmt.Errorf("failed to list conversations: %w", err)
			}
			if len(conversations) == 0 {
				fmt.Fprintln(deps.Stdout, "No conversations found.")
				return nil
			}

			w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tMESSAGES\tUPDATED")
			_, _ = fmt.Fprintln(w, "-\t--\t-----\t--------\t-------")
			for i, conv := range conversations {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
					i+1, conv.ShortID(), truncate(conv.Title, 40), len(conv.Messages), history.FormatRelativeTime(conv.UpdatedAt))
			}
			return w.Flush()
		},
	}
}

func newHistoryShowCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, id, err := resolveRef(args[0])
			if err != nil {
				return err
			}
			conv, err := store.GetConversation(id)
			if err != nil {
				return err
			}

			out := deps.Stdout
			fmt.Fprintf(out, "ID: %s\n", conv.ID)
			fmt.Fprintf(out, "Title: %s\n", conv.Title)
			if conv.BaseURL != "" {
				fmt.Fprintf(out, "Portal: %s\n", conv.BaseURL)
			}
			fmt.Fprintf(out, "Created: %s\n", conv.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Updated: %s\n", conv.UpdatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Messages: %d\n\n", len(conv.Messages))

			for i, msg := range conv.Messages {
				role := "You"
				if msg.IsBot() {
					role = "Assistant"
				}
				fmt.Fprintf(out, "[%d] %s (%s):\n", i+1, role, msg.SentAt.Format("15:04"))
				fmt.Fprintf(out, "  %s\n\n", strings.ReplaceAll(truncate(displayText(msg), 500), "\n", "\n  "))
			}
			return nil
		},
	}
}

// displayText is the terminal text of a stored message
func displayText(msg models.Message) string {
	if msg.IsUser() {
		return msg.Content
	}
	if msg.Raw != "" {
		return msg.Raw
	}
	return format.PlainText(msg.Content)
}

func newHistoryExportCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	var (
		output string
		fmtArg string
		noRaw  bool
	)

	cmd := &cobra.Command{
		Use:   "export <ref>",
		Short: "Export a conversation as Markdown, JSON or HTML",
		Long: `Export a conversation. Bot turns are re-rendered from the saved
server text. The format follows --format, otherwise the extension of
--output, otherwise Markdown.

Examples:
  hrdesk history export @last
  hrdesk history export 2 -o leave.html
  hrdesk history export 3f2a9c1b --format json --no-raw`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(deps, flags, false)
			if err != nil {
				return err
			}
			defer e.close()

			name := fmtArg
			if name == "" && output != "" {
				name = filepath.Ext(output)
			}
			exportFormat, err := history.ParseExportFormat(name)
			if err != nil {
				return err
			}

			store, id, err := resolveRef(args[0])
			if err != nil {
				return err
			}

			opts := history.ExportOptions{
				Format:     exportFormat,
				IncludeRaw: !noRaw,
				LineScan:   e.cfg.LineScanLists,
				EscapeHTML: e.cfg.EscapeHTML,
			}
			data, err := store.Export(id, opts)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = deps.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintln(deps.Stderr, successStyle.Render(fmt.Sprintf("✓ Exported %s to %s", id, output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&fmtArg, "format", "", "Export format: markdown, json or html")
	cmd.Flags().BoolVar(&noRaw, "no-raw", false, "Omit the server text from JSON exports")
	return cmd
}

func newHistoryRenameCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <ref> <title>",
		Short: "Change a conversation title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, id, err := resolveRef(args[0])
			if err != nil {
				return err
			}
			if err := store.UpdateTitle(id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Renamed conversation: %s\n", id)
			return nil
		},
	}
}

func newHistoryDeleteCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, id, err := resolveRef(args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteConversation(id); err != nil {
				return fmt.Errorf("failed to delete: %w", err)
			}
			fmt.Fprintf(deps.Stdout, "Deleted conversation: %s\n", id)
			return nil
		},
	}
}

func newHistoryClearCmd(deps *Dependencies) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				fmt.Fprint(deps.Stderr, "Delete all conversations? [y/N] ")
				answer, _ := readLine(bufio.NewReader(deps.Stdin))
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(deps.Stdout, "Aborted.")
					return nil
				}
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			n, err := store.ClearAll()
			if err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintf(deps.Stdout, "Deleted %d conversation(s).\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "y", false, "Do not ask for confirmation")
	return cmd
}

func newHistorySearchCmd(deps *Dependencies) *cobra.Command {
	var titlesOnly bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search conversation titles and messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			results, err := store.SearchConversations(args[0], !titlesOnly)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(deps.Stdout, "No matches.")
				return nil
			}

			w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTITLE\tMATCH")
			for _, r := range results {
				where := "title"
				if r.MatchField == "content" {
					where = fmt.Sprintf("#%d: %s", r.MatchIndex+1, r.MatchSnippet)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Conversation.ShortID(), truncate(r.Conversation.Title, 40), where)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&titlesOnly, "titles", false, "Only search titles")
	return cmd
}

// truncate shortens s to n runes, adding an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
