package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/billmal071/bookfinder/internal/config"
	"github.com/billmal071/bookfinder/internal/logging"
	"github.com/billmal071/bookfinder/internal/tui"
)

var (
	cfgFile     string
	verbose     bool
	metricsAddr string

	logCloser     io.Closer
	metricsServer *metricsEndpoint
)

var rootCmd = &cobra.Command{
	Use:   "bookfinder",
	Short: "Search the Google Books catalog",
	Long: `bookfinder searches the Google Books catalog by keyword and shows
title, authors and cover for each result.

Run without a subcommand to open the interactive search screen.

Examples:
  bookfinder                               Open the interactive search
  bookfinder search "dune"                 Search and browse results
  bookfinder search --no-interactive dune  Print results and exit
  bookfinder search -o json dune           Print results as JSON
  bookfinder shell                         Line-oriented search prompt`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.UserAgent = "bookfinder/" + Version

		if err := config.Init(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if err := setupLogging(usesTerminalUI(cmd)); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		if metricsAddr != "" {
			srv, err := startMetrics(metricsAddr)
			if err != nil {
				return fmt.Errorf("failed to start metrics endpoint: %w", err)
			}
			metricsServer = srv
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession()
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), sess, "")
	},
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer cleanup()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		Errorf("%v", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/bookfinder/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	// Add subcommands
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// cleanup releases what PersistentPreRunE acquired. cobra skips
// PersistentPostRun when RunE fails, so Execute defers this instead.
func cleanup() {
	if metricsServer != nil {
		metricsServer.Close()
		metricsServer = nil
	}
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// usesTerminalUI reports whether cmd takes over the terminal, in which case
// logs must not go to stderr
func usesTerminalUI(cmd *cobra.Command) bool {
	if !cmd.HasParent() {
		return true
	}
	if cmd.Name() == "search" {
		noInteractive, _ := cmd.Flags().GetBool("no-interactive")
		return !noInteractive && !cmd.Flags().Changed("output")
	}
	return false
}

func setupLogging(terminalUI bool) error {
	cfg := config.Get()

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}

	file := cfg.Log.File
	if file == "" && terminalUI {
		file = config.GetLogPath()
	}

	closer, err := logging.Setup(level, file)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

// Printf prints if verbose mode is enabled
func Printf(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Errorf prints an error message to stderr
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// Successf prints a success message to w
func Successf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "✓ "+format+"\n", args...)
}
