package story

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// deckFile is the on-disk shape of a deck:
//
//	slides:
//	  - id: 1
//	    key: The Spark
//	    variant: image
//	    lines: ["..."]
//	    song: spark.mp3
type deckFile struct {
	Slides []Slide `yaml:"slides"`
}

// LoadDeck reads, validates and normalizes a YAML deck file.
func LoadDeck(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("failed to read deck file: %w", err)
	}
	deck, err := ParseDeck(data)
	if err != nil {
		return Deck{}, fmt.Errorf("%s: %w", path, err)
	}
	return deck, nil
}

// ParseDeck decodes YAML deck content. Unknown fields are rejected so a
// typo like "linez:" fails loudly instead of producing a silent slide.
func ParseDeck(data []byte) (Deck, error) {
	var file deckFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return Deck{}, fmt.Errorf("deck file is empty")
		}
		return Deck{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	slides := Normalize(file.Slides)
	if err := Validate(slides); err != nil {
		return Deck{}, fmt.Errorf("invalid deck: %w", err)
	}

	deck, err := NewDeck(slides)
	if err != nil {
		return Deck{}, fmt.Errorf("invalid deck: %w", err)
	}
	if !deck.EndsWithFinale() {
		slog.Warn("deck does not end with a finale slide", "slides", deck.Len())
	}
	return deck, nil
}

// Normalize returns copies of slides with all text in Unicode NFC.
func Normalize(slides []Slide) []Slide {
	out := make([]Slide, len(slides))
	for i, s := range slides {
		c := s.clone()
		c.Key = norm.NFC.String(c.Key)
		c.Title = norm.NFC.String(c.Title)
		for j, line := range c.Lines {
			c.Lines[j] = norm.NFC.String(line)
		}
		out[i] = c
	}
	return out
}
