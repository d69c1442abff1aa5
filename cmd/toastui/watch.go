package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/model"
	"github.com/jmylchreest/toastui/internal/server"
)

var watchOpts struct {
	json bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print toast events as they happen",
	Long: `Follow the daemon's event stream and print one line per event until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchOpts.json, "json", false,
		"Print each event as a JSON object")
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	return c.Watch(ctx, func(msg server.StreamMessage) {
		if watchOpts.json {
			msg.HTML = ""
			msg.Surface = ""
			if err := enc.Encode(msg); err != nil {
				logger.Warn("failed to encode event", "error", err)
			}
			return
		}
		fmt.Fprintln(out, formatEvent(msg))
	})
}

// formatEvent renders one event as a single line.
func formatEvent(msg server.StreamMessage) string {
	if msg.Toast == nil {
		return string(msg.Type)
	}
	line := fmt.Sprintf("%-8s %-7s %s %s", msg.Type, msg.Toast.Severity, msg.Toast.ID, msg.Toast.Message)
	if msg.Toast.Reason != model.RemoveReasonNone {
		line += fmt.Sprintf(" (%s)", msg.Toast.Reason)
	}
	return line
}
