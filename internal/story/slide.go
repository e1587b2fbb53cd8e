package story

import (
	"fmt"
	"slices"
)

// Variant tags how a slide is presented.
type Variant string

const (
	// VariantImage is a photo slide with sequentially revealed lines.
	VariantImage Variant = "image"
	// VariantFinale is the proposal slide. It never auto-advances.
	VariantFinale Variant = "finale"
)

// Valid reports whether v is a declared variant.
func (v Variant) Valid() bool {
	return v == VariantImage || v == VariantFinale
}

// Slide is one immutable narrative unit.
type Slide struct {
	ID           int      `yaml:"id" json:"id"`
	Key          string   `yaml:"key" json:"key"`
	Variant      Variant  `yaml:"variant" json:"variant"`
	Image        string   `yaml:"image,omitempty" json:"image,omitempty"`
	Title        string   `yaml:"title,omitempty" json:"title,omitempty"`
	Lines        []string `yaml:"lines" json:"lines"`
	AudioKeyword string   `yaml:"audio_keyword,omitempty" json:"audio_keyword,omitempty"`
	Song         string   `yaml:"song,omitempty" json:"song,omitempty"`
}

// IsFinale reports whether the slide is the finale variant.
func (s Slide) IsFinale() bool {
	return s.Variant == VariantFinale
}

// LineCount returns the number of text lines, never less than one.
func (s Slide) LineCount() int {
	return max(1, len(s.Lines))
}

// clone returns a deep copy so callers cannot alias the deck's line slices.
func (s Slide) clone() Slide {
	c := s
	c.Lines = slices.Clone(s.Lines)
	if c.Lines == nil {
		c.Lines = []string{}
	}
	return c
}

// Deck is the ordered, non-empty slide sequence.
type Deck struct {
	slides []Slide
}

// NewDeck copies slides into a Deck. It rejects an empty sequence, unknown
// variants and duplicate IDs; everything else is left to Validate.
func NewDeck(slides []Slide) (Deck, error) {
	if len(slides) == 0 {
		return Deck{}, fmt.Errorf("deck must contain at least one slide")
	}

	seen := make(map[int]bool, len(slides))
	copied := make([]Slide, len(slides))
	for i, s := range slides {
		if !s.Variant.Valid() {
			return Deck{}, fmt.Errorf("slides[%d]: unknown variant %q", i, s.Variant)
		}
		if seen[s.ID] {
			return Deck{}, fmt.Errorf("slides[%d]: duplicate id %d", i, s.ID)
		}
		seen[s.ID] = true
		copied[i] = s.clone()
	}

	return Deck{slides: copied}, nil
}

// MustDeck is NewDeck for static content; it panics on error.
func MustDeck(slides []Slide) Deck {
	d, err := NewDeck(slides)
	if err != nil {
		panic(err)
	}
	return d
}

// Len returns the number of slides.
func (d Deck) Len() int {
	return len(d.slides)
}

// LastIndex returns the index of the final slide.
func (d Deck) LastIndex() int {
	return len(d.slides) - 1
}

// Slide returns a copy of the slide at index i. It panics when i is out of
// range, like a slice index would.
func (d Deck) Slide(i int) Slide {
	return d.slides[i].clone()
}

// Slides returns a copy of the whole sequence.
func (d Deck) Slides() []Slide {
	out := make([]Slide, len(d.slides))
	for i, s := range d.slides {
		out[i] = s.clone()
	}
	return out
}

// EndsWithFinale reports whether the conventional finale slide is last.
// The controller does not require it; loaders log when it is false.
func (d Deck) EndsWithFinale() bool {
	return len(d.slides) > 0 && d.slides[len(d.slides)-1].IsFinale()
}
