package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastui/internal/center"
	"github.com/jmylchreest/toastui/internal/clock"
	"github.com/jmylchreest/toastui/internal/config"
	"github.com/jmylchreest/toastui/internal/render"
	"github.com/jmylchreest/toastui/internal/surface"
)

var demoOpts struct {
	clearAt time.Duration
	width   int
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replay a toast lifecycle on a simulated clock",
	Long: `Run a short scripted scenario against an in-memory center and print the
surface at each step. No daemon is needed and no real time passes.

The script shows "Saved" (success, default duration) and "Oops" (error,
1s), then advances the clock through entry, expiry and removal. With
--clear-at both are cleared at that offset instead.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().DurationVar(&demoOpts.clearAt, "clear-at", 0,
		"Clear all toasts at this offset (0 = never)")
	demoCmd.Flags().IntVar(&demoOpts.width, "width", 60,
		"Width of the printed surface")
}

// demoCheckpoints are the offsets from the start at which frames are printed.
var demoCheckpoints = []time.Duration{
	0,
	100 * time.Millisecond,
	500 * time.Millisecond,
	1000 * time.Millisecond,
	1300 * time.Millisecond,
	5000 * time.Millisecond,
	5300 * time.Millisecond,
}

func runDemo(cmd *cobra.Command, args []string) error {
	return playDemo(cmd.OutOrStdout(), demoOpts.clearAt, demoOpts.width)
}

// playDemo runs the scripted scenario and writes the frames to w.
func playDemo(w io.Writer, clearAt time.Duration, width int) error {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start)
	doc := surface.NewDocument()
	c := center.New(doc, clk, config.DefaultDaemonConfig(), logger)

	unsubscribe := c.Subscribe(func(ev center.Event) {
		at := clk.Now().Sub(start).Milliseconds()
		if ev.Toast == nil {
			fmt.Fprintf(w, "  %5dms %s\n", at, ev.Type)
			return
		}
		fmt.Fprintf(w, "  %5dms %-8s %s\n", at, ev.Type, ev.Toast.Message)
	})
	defer unsubscribe()

	r := lipgloss.NewRenderer(w)
	term := render.NewTerminal(r, c.Config())
	term.ToastW = min(term.ToastW, width)

	c.Success("Saved", 0)
	c.Error("Oops", time.Second)

	checkpoints := demoCheckpoints
	if clearAt > 0 {
		checkpoints = insertCheckpoint(checkpoints, clearAt)
	}

	var elapsed time.Duration
	for _, at := range checkpoints {
		clk.Advance(at - elapsed)
		elapsed = at
		if clearAt > 0 && at == clearAt {
			c.ClearAll()
		}

		fmt.Fprintf(w, "t=%dms (%d live)\n", at.Milliseconds(), c.Len())
		var frame string
		c.View(func(doc *surface.Document) {
			frame = term.Render(doc)
		})
		if frame != "" {
			fmt.Fprintln(w, frame)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// insertCheckpoint adds at to the sorted checkpoints if not already present.
func insertCheckpoint(checkpoints []time.Duration, at time.Duration) []time.Duration {
	out := make([]time.Duration, 0, len(checkpoints)+1)
	inserted := false
	for _, c := range checkpoints {
		if !inserted && at <= c {
			if at < c {
				out = append(out, at)
			}
			inserted = true
		}
		out = append(out, c)
	}
	if !inserted {
		out = append(out, at)
	}
	return out
}
