package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/client"
	"github.com/jmylchreest/toastui/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		server     string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toastui",
	Short: "Transient toast notifications for terminals and browsers",
	Long: `toastui shows short-lived toast notifications.

It talks to a running toastuid over HTTP to send, list and dismiss toasts,
or runs a standalone notification center in the terminal.

Running toastui without a subcommand launches the interactive TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.server != "" {
			cfg.Client.Server = globalOpts.server
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error(err.Error())
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/toastui/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.server, "server", "",
		"toastuid address (default: "+config.DefaultServer+")")
}

// setupLogger configures the global slog logger. Records go to stderr so
// stdout stays clean for output.
func setupLogger() {
	l := chlog.NewWithOptions(os.Stderr, chlog.Options{
		ReportTimestamp: globalOpts.verbose,
		TimeFormat:      time.TimeOnly,
		Level:           chlog.WarnLevel,
	})
	if globalOpts.verbose {
		l.SetLevel(chlog.DebugLevel)
	}
	logger = slog.New(l)
	slog.SetDefault(logger)
}

// newClient creates a daemon client from the loaded config.
func newClient() (*client.Client, error) {
	return client.New(cfg.Client.Server, cfg.Client.Timeout.Duration())
}
