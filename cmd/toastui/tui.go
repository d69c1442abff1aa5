package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/tui"
)

var tuiOpts struct {
	daemonConfig string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run a notification center in the terminal",
	Long: `Launch a standalone notification center drawn in the terminal.

Timings, width and stacking come from the daemon config, so toasts behave as
they would under toastuid.

Key bindings:
  s/e/w/i     Show a success, error, warning or info toast
  n           Type a message (tab cycles severity, enter sends)
  d           Dismiss the newest toast (the selected one in list view)
  c           Clear all toasts
  l           Toggle the list of live toasts
  y           Copy the selected message to the clipboard
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiOpts.daemonConfig, "daemon-config", "",
		"Path to toastuid config (default: ~/.config/toastui/toastuid.toml)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	daemonCfg, err := config.LoadDaemonConfig(tuiOpts.daemonConfig)
	if err != nil {
		return fmt.Errorf("failed to load daemon config: %w", err)
	}

	return tui.Run(cmd.Context(), tui.RunOptions{
		Config:       cfg,
		DaemonConfig: daemonCfg,
		Logger:       logger,
	})
}
