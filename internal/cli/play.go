package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/roach88/storyreel/internal/audio"
	"github.com/roach88/storyreel/internal/clock"
	"github.com/roach88/storyreel/internal/engine"
	"github.com/roach88/storyreel/internal/gesture"
	"github.com/roach88/storyreel/internal/journal"
	"github.com/roach88/storyreel/internal/playback"
	"github.com/roach88/storyreel/internal/story"
)

// consoleSurface is the virtual screen size console gestures are placed on.
const consoleSurface = 1000.0

// barRefresh is how often the progress bar polls the engine.
const barRefresh = 100 * time.Millisecond

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions

	Deck    string
	Journal string
	Music   string
	Speed   float64
	Since   string
	Reprise bool
	TapZone bool
	Intro   bool
	NoBar   bool
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a deck in the terminal",
		Long: `Play a deck on the wall clock, reading commands from stdin.

Each input line is a command name (advance, retreat, pause, resume,
restart, accept, epilogue, ...), a short alias (n, b, p, r, q) or a
pointer gesture:

  tap [x]     press and release at x (0..1, default 0.8)
  down [x]    press
  up [x]      release
  click [x]   tap-zone click
  leave       pointer left the surface

A press held longer than 200ms pauses until released. Type "help" for the
full list. End of input or "quit" stops playback.

Examples:
  storyreel play
  storyreel play --deck ./deck.yaml --speed 4 --journal ./plays.db
  printf 'start\nn\nn\nquit\n' | storyreel play --no-bar`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Deck, "deck", "", "deck file (default: built-in deck)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the session to this SQLite file")
	cmd.Flags().StringVar(&opts.Music, "music", "", "directory holding the deck's track files")
	cmd.Flags().Float64Var(&opts.Speed, "speed", 1, "clock speed factor")
	cmd.Flags().StringVar(&opts.Since, "since", "", "anniversary date (YYYY-MM-DD) shown with the final reveal")
	cmd.Flags().BoolVar(&opts.Reprise, "reprise", false, "return to the opening track in the epilogue")
	cmd.Flags().BoolVar(&opts.TapZone, "tap-zone", false, "use the tap-zone gesture policy")
	cmd.Flags().BoolVar(&opts.Intro, "intro", false, "run the intro sequence; type start to finish loading")
	cmd.Flags().BoolVar(&opts.NoBar, "no-bar", false, "disable the progress bar")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	if opts.Speed <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid speed %v: must be positive", opts.Speed))
	}
	var since time.Time
	if opts.Since != "" {
		t, err := time.Parse(time.DateOnly, opts.Since)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --since date", err)
		}
		since = t
	}

	deck, err := loadDeck(opts.Deck)
	if err != nil {
		return err
	}

	logger := newLogger(opts.RootOptions)
	// The loop and the stdin reader both print.
	out := &syncWriter{w: cmd.OutOrStdout()}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var base clock.Clock = clock.System{}
	if opts.Speed != 1 {
		base = clock.NewScaled(base, opts.Speed)
	}

	sink := &consoleSink{logger: logger}
	ctlOpts := []playback.Option{
		playback.WithSink(sink),
		playback.WithReprise(opts.Reprise),
	}
	if opts.Music != "" {
		catalog := audio.NewCatalog(opts.Music)
		sink.catalog = catalog
		ctlOpts = append(ctlOpts, playback.WithTitler(catalog))
	}

	engOpts := []engine.EngineOption{
		engine.WithLogger(logger),
		engine.WithControllerOptions(ctlOpts...),
		engine.WithObserver(func(ev playback.Event) {
			if line := describeEvent(ev, deck, since); line != "" {
				fmt.Fprintln(out, line)
			}
		}),
	}
	if opts.TapZone {
		engOpts = append(engOpts, engine.WithTapZone())
	}

	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer j.Close()

		session, err := j.Begin(ctx, base.Now(), deck.Len())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start journal session", err)
		}
		logger.Info("journal session started", "session", session.ID(), "path", opts.Journal)

		// Appends must survive cancellation so the last events still land.
		writeCtx := context.WithoutCancel(ctx)
		engOpts = append(engOpts, engine.WithObserver(func(ev playback.Event) {
			if _, err := session.Append(writeCtx, ev, base.Now()); err != nil {
				logger.Error("journal append failed", "event", string(ev.Name), "error", err)
			}
		}))
	}

	eng := engine.New(deck, base, engOpts...)
	sink.report = func(track string, cause error) {
		go func() {
			err := eng.Call(ctx, func(c *playback.Controller) {
				if err := c.PlayFailed(track, cause); err != nil {
					logger.Warn("track unavailable", "track", track, "error", err)
				}
			})
			if err != nil {
				logger.Debug("play failure not delivered", "track", track, "error", err)
			}
		}()
	}

	if opts.Intro {
		eng.Dispatch(playback.CmdOpen)
	} else {
		eng.Dispatch(playback.CmdCompleteLoading)
	}

	// The reader is not waited for: it may still be blocked on stdin when
	// playback ends by signal.
	go func() {
		readConsole(cmd.InOrStdin(), out, eng, base, logger)
		eng.Stop()
	}()

	var bars sync.WaitGroup
	done := make(chan struct{})
	if !opts.NoBar {
		bars.Add(1)
		go func() {
			defer bars.Done()
			drawProgress(ctx, done, cmd.ErrOrStderr(), eng, deck)
		}()
	}

	err = eng.Run(ctx)
	close(done)
	bars.Wait()
	if err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "playback failed", err)
	}
	return nil
}

// readConsole feeds input lines to the engine until EOF or quit.
func readConsole(r io.Reader, out io.Writer, eng *engine.Engine, c clock.Clock, logger *slog.Logger) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		in, err := parseInput(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "? %v\n", err)
			continue
		}
		switch {
		case in.quit:
			return
		case in.help:
			writeConsoleHelp(out)
		case in.command != "":
			if !eng.Dispatch(in.command) {
				return
			}
		default:
			for _, kind := range in.gestures {
				ok := eng.Gesture(gesture.Event{
					Kind:   kind,
					X:      in.x * consoleSurface,
					Y:      consoleSurface / 2,
					Width:  consoleSurface,
					Height: consoleSurface,
					At:     c.Now(),
				})
				if !ok {
					return
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("reading input failed", "error", err)
	}
}

// consoleInput is one parsed input line. A line with nothing set is blank.
type consoleInput struct {
	quit     bool
	help     bool
	command  playback.Command
	gestures []gesture.Kind
	x        float64
}

// consoleAliases maps short names to commands.
var consoleAliases = map[string]playback.Command{
	"n":     playback.CmdAdvance,
	"next":  playback.CmdAdvance,
	"b":     playback.CmdRetreat,
	"back":  playback.CmdRetreat,
	"prev":  playback.CmdRetreat,
	"p":     playback.CmdPause,
	"r":     playback.CmdResume,
	"start": playback.CmdCompleteLoading,
	"go":    playback.CmdCompleteTransition,
	"yes":   playback.CmdAccept,
	"more":  playback.CmdEpilogue,
}

// defaultTapX lands a bare "tap" in the advance zone.
const defaultTapX = 0.8

func parseInput(line string) (consoleInput, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return consoleInput{}, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "q", "quit", "exit":
		return consoleInput{quit: true}, nil
	case "?", "help":
		return consoleInput{help: true}, nil
	case "tap", "down", "up", "click", "leave":
		if name == "leave" && len(args) > 0 {
			return consoleInput{}, fmt.Errorf("leave takes no position")
		}
		x, err := parsePosition(args)
		if err != nil {
			return consoleInput{}, err
		}
		in := consoleInput{x: x}
		switch name {
		case "tap":
			in.gestures = []gesture.Kind{gesture.Down, gesture.Up}
		case "down":
			in.gestures = []gesture.Kind{gesture.Down}
		case "up":
			in.gestures = []gesture.Kind{gesture.Up}
		case "click":
			in.gestures = []gesture.Kind{gesture.Click}
		case "leave":
			in.gestures = []gesture.Kind{gesture.Leave}
		}
		return in, nil
	}

	if len(args) > 0 {
		return consoleInput{}, fmt.Errorf("%s takes no arguments", name)
	}
	if cmd, ok := consoleAliases[name]; ok {
		return consoleInput{command: cmd}, nil
	}
	cmd, err := playback.ParseCommand(name)
	if err != nil {
		return consoleInput{}, err
	}
	return consoleInput{command: cmd}, nil
}

func parsePosition(args []string) (float64, error) {
	switch len(args) {
	case 0:
		return defaultTapX, nil
	case 1:
		x, err := strconv.ParseFloat(args[0], 64)
		if err != nil || x < 0 || x > 1 {
			return 0, fmt.Errorf("position %q must be a number in [0, 1]", args[0])
		}
		return x, nil
	default:
		return 0, fmt.Errorf("expected at most one position, got %d", len(args))
	}
}

func writeConsoleHelp(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	for _, c := range playback.Commands() {
		fmt.Fprintf(w, "  %s\n", c)
	}
	fmt.Fprintln(w, "aliases: n next b back prev p r start go yes more q quit")
	fmt.Fprintln(w, "gestures: tap [x]  down [x]  up [x]  click [x]  leave")
}

// describeEvent renders one controller event for the console, or "" when
// the event has nothing to show.
func describeEvent(ev playback.Event, deck story.Deck, since time.Time) string {
	s := ev.Snapshot
	switch ev.Name {
	case playback.EventOpen, playback.EventIntroStep:
		return "intro: " + s.Intro.String()
	case playback.EventLoadingComplete:
		return "loading complete"
	case playback.EventTransitionComplete, playback.EventAdvance, playback.EventRetreat:
		return describeSlide(deck, s.SlideIndex)
	case playback.EventPause:
		return "paused"
	case playback.EventResume:
		return "resumed"
	case playback.EventRestart:
		return "restarting"
	case playback.EventFinaleStep:
		return "finale: " + s.Finale.String()
	case playback.EventOneMoreThing:
		if since.IsZero() {
			return "one more thing..."
		}
		days := story.DaysSince(since, time.Now())
		return fmt.Sprintf("one more thing... %s days together", story.FormatCount(days))
	case playback.EventHint:
		return "hint: tap right to continue, left to go back, hold to pause"
	case playback.EventTrack:
		if s.Track == "" {
			return "♪ silence"
		}
		return "♪ " + s.NowPlaying
	default:
		return ""
	}
}

func describeSlide(deck story.Deck, i int) string {
	slide := deck.Slide(i)
	heading := slide.Title
	if heading == "" {
		heading = slide.Key
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] %s", i+1, deck.Len(), heading)
	for _, line := range slide.Lines {
		fmt.Fprintf(&b, "\n    %s", line)
	}
	return b.String()
}

// drawProgress polls the engine and mirrors the slide fraction on a bar
// until done is closed.
func drawProgress(ctx context.Context, done <-chan struct{}, w io.Writer, eng *engine.Engine, deck story.Deck) {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription("loading"),
	)
	defer func() { _ = bar.Clear() }()

	ticker := time.NewTicker(barRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		snap, err := eng.Snapshot(ctx)
		if err != nil {
			return
		}
		bar.Describe(progressLabel(snap, deck))
		_ = bar.Set(int(snap.Fraction * 100))
	}
}

func progressLabel(s playback.Snapshot, deck story.Deck) string {
	label := fmt.Sprintf("%s [%d/%d]", s.Phase, s.SlideIndex+1, deck.Len())
	if s.Paused {
		label += " paused"
	}
	return label
}

// consoleSink logs audio intents. With a catalog it also checks that each
// started track exists and reports the ones that do not.
type consoleSink struct {
	logger  *slog.Logger
	catalog *audio.Catalog
	// report is set once the engine exists; intents applied while the
	// controller is built are only logged.
	report func(track string, err error)
}

func (s *consoleSink) Apply(in audio.Intent) {
	s.logger.Debug("audio intent",
		"kind", in.Kind.String(),
		"handle", in.Handle,
		"track", in.Track,
		"fade", in.Fade.String(),
		"retry", in.Retry,
	)
	if in.Kind != audio.IntentPlay || s.catalog == nil || s.report == nil {
		return
	}
	if err := s.catalog.Check(in.Track); err != nil {
		s.report(in.Track, err)
	}
}

// syncWriter serializes writes from several goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
