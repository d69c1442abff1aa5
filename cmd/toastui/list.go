package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/adapter/output"
	"github.com/jmylchreest/toastui/internal/core"
)

var listOpts struct {
	format   string
	severity string
	state    string
	search   string
	sort     string
	limit    int
	index    bool
	template string
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the toasts currently on screen",
	Long: `List the live toasts held by toastuid.

Examples:
  toastui list
  toastui list --severity error --format json
  toastui list --sort remaining:asc
  toastui list --format dmenu | fuzzel -d`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", "",
		"Output format (plain, json, yaml, ids, dmenu; default from config)")
	listCmd.Flags().StringVar(&listOpts.severity, "severity", "",
		"Only toasts of this severity")
	listCmd.Flags().StringVar(&listOpts.state, "state", "",
		"Only toasts in this state (entering, visible, leaving)")
	listCmd.Flags().StringVar(&listOpts.search, "search", "",
		"Only toasts whose message contains this text")
	listCmd.Flags().StringVar(&listOpts.sort, "sort", "created:asc",
		"Sort by field[:order] (created, severity, remaining)")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of toasts (0=unlimited)")
	listCmd.Flags().BoolVar(&listOpts.index, "index", false,
		"Prefix plain output with a 1-based index")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Go template for plain and dmenu output")
}

func runList(cmd *cobra.Command, args []string) error {
	sev, err := core.ParseSeverityFilter(listOpts.severity)
	if err != nil {
		return err
	}
	state, err := core.ParseStateFilter(listOpts.state)
	if err != nil {
		return err
	}

	c, err := newClient()
	if err != nil {
		return err
	}
	toasts, err := c.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list toasts: %w", err)
	}

	core.Sort(toasts, core.ParseSort(listOpts.sort))
	toasts = core.Filter(toasts, core.FilterOptions{
		Severity: sev,
		State:    state,
		Search:   listOpts.search,
		Limit:    listOpts.limit,
	})

	format := listOpts.format
	if format == "" {
		format = cfg.Output.Format
	}
	opts := output.DefaultFormatterOptions()
	opts.ShowIndex = listOpts.index
	opts.Template = listOpts.template
	opts.MessageMaxLen = cfg.Output.MessageLength

	return output.NewFormatter(output.FormatType(format), opts).Format(cmd.OutOrStdout(), toasts)
}
