package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storyreel/internal/harness"
)

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run one scenario and print its trace",
		Long: `Run a scenario on a virtual clock and print every controller event.

Waits in the scenario take no real time. Assertion failures are listed
after the trace.

Exit codes:
  0 - Scenario passed
  1 - Scenario failed
  2 - Command error (scenario could not be loaded)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSimulate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %s (%d steps)", scenario.Name, len(scenario.Steps))

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s: %s\n\n", scenario.Name, scenario.Description)
		for _, ev := range result.Trace {
			writeTraceLine(w, ev)
		}
		fmt.Fprintln(w)
		if result.Pass {
			fmt.Fprintln(w, "✓ passed")
		} else {
			fmt.Fprintln(w, "✗ failed")
			for _, e := range result.Errors {
				fmt.Fprintf(w, "  %s\n", strings.TrimRight(e, "\n"))
			}
		}
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

// writeTraceLine prints one event as
//
//	[3] +11500ms advance story[1] track=/songs/b.mp3
func writeTraceLine(w io.Writer, ev harness.TraceEvent) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] +%dms %s %s[%d]", ev.Seq, ev.AtMS, ev.Event, ev.Phase, ev.SlideIndex)
	if ev.Epoch > 0 {
		fmt.Fprintf(&b, " epoch=%d", ev.Epoch)
	}
	if ev.Paused {
		b.WriteString(" paused")
	}
	if ev.Finale != "idle" {
		fmt.Fprintf(&b, " finale=%s", ev.Finale)
	}
	if ev.HintVisible {
		b.WriteString(" hint")
	}
	if ev.OneMoreThing {
		b.WriteString(" one_more_thing")
	}
	if ev.Track != "" {
		fmt.Fprintf(&b, " track=%s", ev.Track)
	}
	fmt.Fprintln(w, b.String())
}
