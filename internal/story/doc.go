// Package story holds the narrative content: the slide record, the ordered
// deck, and the loaders that turn a YAML deck file into a validated Deck.
//
// A Deck is fixed at startup and never mutated. Every accessor returns
// copies so consumers cannot reorder or edit slides behind the controller's
// back.
//
// Deck files are decoded with gopkg.in/yaml.v3 in strict mode (unknown fields
// are rejected) and then checked against an embedded CUE schema. Slide text
// is NFC-normalized at load time so line counts and golden traces do not
// depend on how an editor composed accented characters.
package story
