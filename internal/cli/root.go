package cli

import (
	"log/slog"
	"os"

	"github.com/me/tomoflow/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking TOMOFLOW_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("TOMOFLOW_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the tomoflow CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tomoflow",
		Short: "tomoflow — cryo-ET workflow template graphs",
		Long:  "tomoflow validates cryo-ET workflow templates, computes execution order, and tracks per-session step readiness.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(flagLogLevel, flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "tomoflow server URL (or TOMOFLOW_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newValidateCmd(),
		newOrderCmd(),
		newReadyCmd(),
		newPushCmd(),
		newListCmd(),
		newSessionCmd(),
		newMdocCmd(),
		newMenuCmd(),
	)

	return root
}
