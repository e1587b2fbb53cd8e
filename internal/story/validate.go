package story

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError reports a deck that does not satisfy the CUE schema.
type ValidationError struct {
	// Field is the dotted path of the offending value (e.g. "slides.2.variant").
	Field string

	Message string

	// Pos is the CUE position when one is known.
	Pos token.Pos
}

func (e *ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks slides against the embedded #Deck schema. Definitions in
// CUE are closed, so unknown fields fail as well as bad variants, empty keys
// and non-positive IDs.
func Validate(slides []Slide) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile deck schema: %w", err)
	}

	encodable := make([]Slide, len(slides))
	for i, s := range slides {
		encodable[i] = s.clone()
	}
	doc := struct {
		Slides []Slide `json:"slides"`
	}{Slides: encodable}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return formatCUEError(err)
	}

	deck := schema.LookupPath(cue.ParsePath("#Deck")).Unify(value)
	if err := deck.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError keeps the first CUE error with its path and position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	first := errs[0]
	ve := &ValidationError{
		Field:   strings.Join(first.Path(), "."),
		Message: first.Error(),
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		ve.Pos = positions[0]
	}
	return ve
}
