package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/client"
	"github.com/jmylchreest/toastui/internal/core"
)

var dismissCmd = &cobra.Command{
	Use:   "dismiss <id|prefix>...",
	Short: "Remove toasts immediately",
	Long: `Dismiss toasts by ID or by a unique ID prefix.

Examples:
  toastui dismiss 01HZX3
  toastui list --format ids | xargs toastui dismiss`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDismiss,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every toast",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(dismissCmd)
	rootCmd.AddCommand(clearCmd)
}

func runDismiss(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	toasts, err := c.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list toasts: %w", err)
	}

	var errs []error
	for _, arg := range args {
		n, err := core.LookupByPrefix(toasts, arg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.Dismiss(cmd.Context(), n.ID); err != nil {
			// It may have expired since the listing.
			if errors.Is(err, client.ErrNotFound) {
				logger.Debug("toast already gone", "id", n.ID)
				continue
			}
			errs = append(errs, fmt.Errorf("failed to dismiss %s: %w", n.ID, err))
			continue
		}
		logger.Debug("toast dismissed", "id", n.ID)
	}
	return errors.Join(errs...)
}

func runClear(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	n, err := c.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to clear toasts: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d toasts\n", n)
	return nil
}
