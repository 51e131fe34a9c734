// Package commands provides the hrdesk command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/hrdesk/internal/config"
	"github.com/diogo/hrdesk/internal/logging"
	"github.com/diogo/hrdesk/internal/render"
	"github.com/diogo/hrdesk/internal/tui"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	baseURL string
	verbose bool
	logFile string
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	flags := &globalFlags{}
	q := &queryFlags{}

	cmd := &cobra.Command{
		Use:   "hrdesk [question]",
		Short: "Chat with the HR portal assistant from the terminal",
		Long: `hrdesk talks to the HR portal's chat assistant. Ask about leave
balances, documents, salary or employment details.

Examples:
  hrdesk login                          Sign in to the portal
  hrdesk chat                           Start interactive chat
  hrdesk "How many sick days do I have?"
  hrdesk -f question.txt                Read the question from a file
  echo "My salary?" | hrdesk            Read the question from stdin
  hrdesk "My documents" --html -o a.html
  hrdesk history list                   Browse saved conversations`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "hrdesk %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if q.file != "" {
				data, err := os.ReadFile(q.file)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runQuery(cmd, deps, flags, q, string(data))
			}

			if len(args) > 0 {
				return runQuery(cmd, deps, flags, q, args[0])
			}

			if stdinPiped(deps.Stdin) {
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return runQuery(cmd, deps, flags, q, string(data))
			}

			return cmd.Help()
		},
	}

	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)
	cmd.SetIn(deps.Stdin)

	cmd.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "Portal URL (overrides base_url)")
	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Log requests to stderr or the log file")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Write JSON logs to this file (overrides log_file)")

	cmd.Flags().StringVarP(&q.output, "output", "o", "", "Save the reply to a file")
	cmd.Flags().StringVarP(&q.file, "file", "f", "", "Read the question from a file")
	cmd.Flags().BoolVar(&q.html, "html", false, "Print the reply as HTML markup")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(
		newChatCmd(deps, flags),
		newLoginCmd(deps, flags),
		newLogoutCmd(deps, flags),
		newImportSessionCmd(deps, flags),
		newConfigCmd(deps),
		newHistoryCmd(deps, flags),
		newFormatCmd(deps, flags),
	)

	return cmd
}

// Execute runs the root command
func Execute() {
	deps := NewDependencies()
	if err := NewRootCmd(deps).Execute(); err != nil {
		fmt.Fprintln(deps.Stderr, tui.FormatError(err))
		os.Exit(1)
	}
}

// stdinPiped reports whether r carries piped input. Readers other than
// files are always treated as piped.
func stdinPiped(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

// env is the loaded configuration and logger of one command run
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	closeLog func() error
}

func (e *env) close() {
	if e.closeLog != nil {
		_ = e.closeLog()
	}
}

// loadEnv loads the config, applies the global flags and sets up logging.
// Interactive commands never log to stderr; the TUI owns the terminal.
func loadEnv(deps *Dependencies, flags *globalFlags, interactive bool) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flags.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(flags.baseURL, "/")
	}
	if flags.verbose {
		cfg.Verbose = true
	}
	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		fmt.Fprintf(deps.Stderr, "Warning: unknown tui_theme %q, using %s\n", cfg.TUITheme, render.GetTUITheme().Name)
	}
	tui.UpdateTheme()

	logOpts := logging.Options{
		Path:    cfg.LogFile,
		Verbose: cfg.Verbose && !(interactive && cfg.LogFile == ""),
		Stderr:  deps.Stderr,
	}
	logger, closeLog, err := logging.Setup(logOpts)
	if err != nil {
		return nil, err
	}
	logger.Debug("config loaded", "base_url", cfg.BaseURL, "timeout_seconds", cfg.TimeoutSeconds)

	return &env{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}
