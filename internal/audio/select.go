package audio

import (
	"path"

	"github.com/roach88/storyreel/internal/stage"
	"github.com/roach88/storyreel/internal/story"
)

// DefaultRoot is the path prefix of every track.
const DefaultRoot = "/songs"

// Selection is the playback position a track is selected for.
type Selection struct {
	Phase      stage.Phase
	SlideIndex int
	Finale     stage.FinaleStep
	// Reprise makes the epilogue return to the opening track instead of
	// continuing the finale track.
	Reprise bool
}

// SelectTrack returns the track path for sel, or "" for silence.
func SelectTrack(sel Selection, deck story.Deck) string {
	return Selector{Root: DefaultRoot}.Select(sel, deck)
}

// Selector maps a playback position to a track under Root.
type Selector struct {
	Root string
}

// Select implements the phase table:
//
//	loading        -> slides[0].song
//	transitioning  -> slides[0].song (the transition always precedes slide 0)
//	story          -> slides[index].song
//	story+epilogue -> slides[0].song when Reprise, else slides[index].song
//	restarting     -> silence
func (s Selector) Select(sel Selection, deck story.Deck) string {
	if deck.Len() == 0 {
		return ""
	}

	switch sel.Phase {
	case stage.Loading, stage.Transitioning:
		return s.trackOf(deck, 0)
	case stage.Story:
		if sel.Finale == stage.FinaleEpilogue && sel.Reprise {
			return s.trackOf(deck, 0)
		}
		return s.trackOf(deck, sel.SlideIndex)
	case stage.Restarting:
		return ""
	default:
		return ""
	}
}

func (s Selector) trackOf(deck story.Deck, i int) string {
	if i < 0 || i >= deck.Len() {
		return ""
	}
	song := deck.Slide(i).Song
	if song == "" {
		return ""
	}
	root := s.Root
	if root == "" {
		root = DefaultRoot
	}
	return path.Join(root, song)
}
