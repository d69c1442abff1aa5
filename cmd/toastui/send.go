package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/adapter/input"
	"github.com/jmylchreest/toastui/internal/model"
)

var sendOpts struct {
	severity string
	duration time.Duration
	stdin    bool
	lines    bool
	quiet    bool
}

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Show a toast on the running daemon",
	Long: `Send one or more toasts to toastuid.

The message is taken from the arguments, or from stdin with --stdin (JSON
array or JSON lines of {"message","severity","duration_ms"}) or --lines
(one toast per line of plain text).

Examples:
  toastui send "Build finished" --severity success
  toastui send "Disk almost full" -s warning -d 10s
  make 2>&1 | tail -n 3 | toastui send --lines -s error
  echo '{"message":"Deployed","severity":"success"}' | toastui send --stdin`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.severity, "severity", "s", "info",
		"Severity (success, error, warning, info)")
	sendCmd.Flags().DurationVarP(&sendOpts.duration, "duration", "d", 0,
		"How long the toast stays visible (0 = severity default)")
	sendCmd.Flags().BoolVar(&sendOpts.stdin, "stdin", false,
		"Read JSON toast requests from stdin")
	sendCmd.Flags().BoolVar(&sendOpts.lines, "lines", false,
		"Read one toast per line of stdin")
	sendCmd.Flags().BoolVarP(&sendOpts.quiet, "quiet", "q", false,
		"Do not print created toast IDs")
	sendCmd.MarkFlagsMutuallyExclusive("stdin", "lines")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	requests, err := sendRequests(ctx, args)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("nothing to send: pass a message or use --stdin/--lines")
	}

	c, err := newClient()
	if err != nil {
		return err
	}

	for _, req := range requests {
		n, err := c.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to send toast: %w", err)
		}
		logger.Debug("toast sent", "id", n.ID, "severity", n.Severity)
		if !sendOpts.quiet {
			fmt.Fprintln(cmd.OutOrStdout(), n.ID)
		}
	}
	return nil
}

// sendRequests builds the requests from arguments or stdin. Flags fill in
// severity and duration where a request leaves them unset.
func sendRequests(ctx context.Context, args []string) ([]model.Request, error) {
	var requests []model.Request

	switch {
	case sendOpts.stdin || sendOpts.lines:
		source := "stdin"
		if sendOpts.lines {
			source = "lines"
		}
		adapter, err := input.NewAdapter(source, model.ParseSeverity(sendOpts.severity))
		if err != nil {
			return nil, err
		}
		requests, err = adapter.Import(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read toasts: %w", err)
		}
	case len(args) > 0:
		requests = []model.Request{{Message: strings.Join(args, " ")}}
	}

	for i := range requests {
		if requests[i].Severity == "" {
			requests[i].Severity = sendOpts.severity
		}
		if requests[i].DurationMS <= 0 && sendOpts.duration > 0 {
			requests[i].DurationMS = sendOpts.duration.Milliseconds()
		}
	}
	return requests, nil
}
