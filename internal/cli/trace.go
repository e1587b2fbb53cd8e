package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storyreel/internal/journal"
	"github.com/roach88/storyreel/internal/playback"
	"github.com/roach88/storyreel/internal/stage"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Session string
	Event   string // optional - filter to one event name
	List    bool
}

// TraceEntry is a single journal entry in the timeline.
type TraceEntry struct {
	Seq        int64  `json:"seq"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	Event      string `json:"event"`
	Phase      string `json:"phase"`
	SlideIndex int    `json:"slide_index"`
	Paused     bool   `json:"paused"`
	Epoch      uint64 `json:"epoch"`
	Finale     string `json:"finale"`
	Track      string `json:"track,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session   string       `json:"session"`
	StartedAt time.Time    `json:"started_at"`
	Timeline  []TraceEntry `json:"timeline"`
	Stats     TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the session.
type TraceStats struct {
	TotalEvents   int  `json:"total_events"`
	Restarts      int  `json:"restarts"`
	SlidesVisited int  `json:"slides_visited"`
	TrackChanges  int  `json:"track_changes"`
	ReachedFinale bool `json:"reached_finale"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <journal.db>",
		Short: "Show a recorded playback session",
		Long: `Show the events recorded by "storyreel play --journal".

Without --session the most recent session is shown.

Examples:
  storyreel trace ./storyreel.db
  storyreel trace ./storyreel.db --list
  storyreel trace ./storyreel.db --session 0192... --event advance
  storyreel trace ./storyreel.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "session ID (default: latest)")
	cmd.Flags().StringVar(&opts.Event, "event", "", "filter to one event name")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list sessions instead of showing one")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Opening would create an empty journal.
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "journal not found", err)
	}
	j, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.List {
		return listSessions(ctx, opts, j, cmd)
	}

	sessionID := opts.Session
	if sessionID == "" {
		sessionID, err = j.Latest(ctx)
		if errors.Is(err, journal.ErrSessionNotFound) {
			return NewExitError(ExitCommandError, "journal has no sessions")
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find latest session", err)
		}
	}

	entries, err := j.Entries(ctx, sessionID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read session", err)
	}

	result := buildTrace(sessionID, entries, opts.Event)
	if sessions, err := j.Sessions(ctx); err == nil {
		for _, s := range sessions {
			if s.ID == sessionID {
				result.StartedAt = s.StartedAt
			}
		}
	}

	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(result)
	}
	return outputTraceText(cmd, result)
}

// buildTrace converts journal entries into the timeline. Stats always cover
// the whole session; the filter only narrows the timeline.
func buildTrace(sessionID string, entries []journal.Entry, eventFilter string) TraceResult {
	result := TraceResult{Session: sessionID, Timeline: []TraceEntry{}}

	type visit struct {
		epoch uint64
		index int
	}
	visited := make(map[visit]bool)

	for _, e := range entries {
		result.Stats.TotalEvents++
		switch e.Event {
		case playback.EventRestart:
			result.Stats.Restarts++
		case playback.EventTrack:
			result.Stats.TrackChanges++
		}
		if e.Phase == stage.Story {
			visited[visit{e.Epoch, e.SlideIndex}] = true
		}
		if e.Finale != stage.FinaleIdle {
			result.Stats.ReachedFinale = true
		}

		if eventFilter != "" && string(e.Event) != eventFilter {
			continue
		}
		result.Timeline = append(result.Timeline, TraceEntry{
			Seq:        e.Seq,
			ElapsedMS:  e.Elapsed.Milliseconds(),
			Event:      string(e.Event),
			Phase:      e.Phase.String(),
			SlideIndex: e.SlideIndex,
			Paused:     e.Paused,
			Epoch:      e.Epoch,
			Finale:     e.Finale.String(),
			Track:      e.Track,
		})
	}
	result.Stats.SlidesVisited = len(visited)
	return result
}

func listSessions(ctx context.Context, opts *TraceOptions, j *journal.Journal, cmd *cobra.Command) error {
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}
	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(sessions)
	}

	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(w, "%s  %s  %d slide(s)  %d event(s)\n",
			s.ID, s.StartedAt.Format(time.RFC3339), s.SlideCount, s.Entries)
	}
	return nil
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Session: %s\n", result.Session)
	if !result.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started: %s\n", result.StartedAt.Format(time.RFC3339))
	}
	fmt.Fprintln(w)

	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No events.")
	}
	for _, e := range result.Timeline {
		line := fmt.Sprintf("[%d] %8s  %-20s %s[%d]", e.Seq, formatElapsed(e.ElapsedMS), e.Event, e.Phase, e.SlideIndex)
		if e.Epoch > 0 {
			line += fmt.Sprintf(" epoch=%d", e.Epoch)
		}
		if e.Paused {
			line += " paused"
		}
		if e.Finale != stage.FinaleIdle.String() {
			line += " finale=" + e.Finale
		}
		if e.Track != "" {
			line += " track=" + e.Track
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Events: %d  Restarts: %d  Slides visited: %d  Track changes: %d  Finale: %t\n",
		result.Stats.TotalEvents, result.Stats.Restarts, result.Stats.SlidesVisited,
		result.Stats.TrackChanges, result.Stats.ReachedFinale)
	return nil
}

func formatElapsed(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(100 * time.Millisecond).String()
}
