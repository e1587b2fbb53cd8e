package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/storyreel/internal/story"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid          bool              `json:"valid"`
	Slides         int               `json:"slides,omitempty"`
	EndsWithFinale bool              `json:"ends_with_finale,omitempty"`
	Errors         []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one schema or parse problem in a deck file.
type ValidationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <deck.yaml>",
		Short: "Validate a deck file",
		Long: `Validate a YAML deck against the slide schema.

Unknown fields, unknown variants, empty keys, non-positive and duplicate
IDs are rejected. A deck that does not end with a finale slide is valid
but reported.

Exit codes:
  0 - Deck is valid
  1 - Deck is invalid
  2 - Command error (file not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "deck file not found", err)
	}

	deck, err := story.LoadDeck(path)
	if err != nil {
		issue := ValidationIssue{Message: err.Error()}
		var verr *story.ValidationError
		if errors.As(err, &verr) {
			issue = ValidationIssue{Field: verr.Field, Message: verr.Message}
			if verr.Pos.IsValid() {
				issue.Line = verr.Pos.Line()
			}
		}
		return outputValidationErrors(formatter, path, []ValidationIssue{issue})
	}

	formatter.VerboseLog("Loaded %d slide(s) from %s", deck.Len(), path)
	result := ValidationResult{
		Valid:          true,
		Slides:         deck.Len(),
		EndsWithFinale: deck.EndsWithFinale(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s: %d slide(s)\n", path, deck.Len())
	if !result.EndsWithFinale {
		fmt.Fprintln(w, "  note: the last slide is not a finale slide")
	}
	return nil
}

func outputValidationErrors(f *OutputFormatter, path string, issues []ValidationIssue) error {
	if f.Format == "json" {
		if err := f.Error(ErrCodeDeckInvalid, "deck is invalid", ValidationResult{Errors: issues}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ %s\n", path)
		for _, issue := range issues {
			switch {
			case issue.Line > 0:
				fmt.Fprintf(f.Writer, "  line %d: %s: %s\n", issue.Line, issue.Field, issue.Message)
			case issue.Field != "":
				fmt.Fprintf(f.Writer, "  %s: %s\n", issue.Field, issue.Message)
			default:
				fmt.Fprintf(f.Writer, "  %s\n", issue.Message)
			}
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(issues)))
}
