package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/format"
)

type formatFlags struct {
	markdown bool
	lineScan bool
	escape   bool
	blocks   bool
}

func newFormatCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	f := &formatFlags{}

	cmd := &cobra.Command{
		Use:   "format [text]",
		Short: "Format raw assistant text without contacting the portal",
		Long: `Run the reply formatter over raw assistant text read from the
argument or stdin. Useful for checking how a portal reply will render.

Examples:
  hrdesk format "Balances: • Sick: **8** • Vacation: 15"
  cat reply.txt | hrdesk format --markdown
  hrdesk format --blocks < reply.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			switch {
			case len(args) == 1:
				raw = args[0]
			case stdinPiped(deps.Stdin):
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				raw = string(data)
			default:
				return fmt.Errorf("text is required as an argument or on stdin")
			}

			e, err := loadEnv(deps, flags, false)
			if err != nil {
				return err
			}
			defer e.close()

			cfg := e.cfg
			cfg.LineScanLists = cfg.LineScanLists || f.lineScan
			cfg.EscapeHTML = cfg.EscapeHTML || f.escape

			dialect := format.HTML
			if f.markdown {
				dialect = format.Markdown
			}
			formatter := formatterFor(cfg, dialect)

			if f.blocks {
				fmt.Fprintf(deps.Stdout, "route: %s\n", formatter.Route(raw))
				for _, b := range formatter.Blocks(raw) {
					fmt.Fprintln(deps.Stdout, b.String())
				}
				return nil
			}

			fmt.Fprintln(deps.Stdout, formatter.Format(raw))
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.markdown, "markdown", false, "Emit Markdown instead of HTML")
	cmd.Flags().BoolVar(&f.lineScan, "line-scan", false, "Detect list items per line")
	cmd.Flags().BoolVar(&f.escape, "escape", false, "Escape HTML in the server text")
	cmd.Flags().BoolVar(&f.blocks, "blocks", false, "Print the routing decision and parsed blocks")
	return cmd
}
