package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storyreel/internal/story"
	"github.com/roach88/storyreel/internal/timing"
)

// SlideDuration is one row of the durations table.
type SlideDuration struct {
	Index      int    `json:"index"`
	ID         int    `json:"id"`
	Key        string `json:"key"`
	Lines      int    `json:"lines"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Indefinite bool   `json:"indefinite,omitempty"`
}

// DurationsResult lists every slide's auto-advance duration.
type DurationsResult struct {
	Slides  []SlideDuration `json:"slides"`
	TotalMS int64           `json:"total_ms"`
}

// NewDurationsCommand creates the durations command.
func NewDurationsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "durations [deck.yaml]",
		Short: "Show how long each slide stays on screen",
		Long: `Show the auto-advance duration of every slide.

Without a deck file the built-in deck is used. Finale slides never
auto-advance and are excluded from the total.

Examples:
  storyreel durations
  storyreel durations ./deck.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runDurations(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runDurations(opts *RootOptions, path string, cmd *cobra.Command) error {
	deck, err := loadDeck(path)
	if err != nil {
		return err
	}

	result := computeDurations(deck)
	if opts.Format == "json" {
		return newFormatter(opts, cmd).Success(result)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tKEY\tLINES\tDURATION")
	for _, s := range result.Slides {
		d := "never"
		if !s.Indefinite {
			d = (time.Duration(s.DurationMS) * time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\n", s.Index, s.ID, s.Key, s.Lines, d)
	}
	fmt.Fprintf(tw, "\t\ttotal\t\t%s\n", time.Duration(result.TotalMS)*time.Millisecond)
	return tw.Flush()
}

func computeDurations(deck story.Deck) DurationsResult {
	result := DurationsResult{Slides: make([]SlideDuration, 0, deck.Len())}
	for i, slide := range deck.Slides() {
		row := SlideDuration{
			Index: i,
			ID:    slide.ID,
			Key:   slide.Key,
			Lines: slide.LineCount(),
		}
		d := timing.ComputeDuration(slide)
		if timing.IsIndefinite(d) {
			row.Indefinite = true
		} else {
			row.DurationMS = d.Milliseconds()
			result.TotalMS += row.DurationMS
		}
		result.Slides = append(result.Slides, row)
	}
	return result
}

// loadDeck loads path, or returns the built-in deck when path is empty.
func loadDeck(path string) (story.Deck, error) {
	if path == "" {
		return story.Default(), nil
	}
	deck, err := story.LoadDeck(path)
	if err != nil {
		return story.Deck{}, WrapExitError(ExitCommandError, "failed to load deck", err)
	}
	return deck, nil
}
