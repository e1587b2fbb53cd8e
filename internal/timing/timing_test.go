package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/storyreel/internal/story"
)

func lines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "line"
	}
	return out
}

func TestComputeDuration_Table(t *testing.T) {
	tests := []struct {
		name  string
		lines int
		want  time.Duration
	}{
		{"no lines floors to one", 0, 5000 * time.Millisecond},
		{"one line hits floor", 1, 5000 * time.Millisecond},
		{"two lines still under floor", 2, 5000 * time.Millisecond},
		{"three lines", 3, 5600 * time.Millisecond},
		{"five lines", 5, 7200 * time.Millisecond},
		{"eleven lines", 11, 12000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := story.Slide{Variant: story.VariantImage, Lines: lines(tt.lines)}
			assert.Equal(t, tt.want, ComputeDuration(s))
		})
	}
}

func TestComputeDuration_FinaleIsIndefinite(t *testing.T) {
	s := story.Slide{Variant: story.VariantFinale, Lines: lines(6)}
	d := ComputeDuration(s)
	assert.Equal(t, Indefinite, d)
	assert.True(t, IsIndefinite(d))
	assert.False(t, IsIndefinite(ForLines(6)))
}

func TestComputeDuration_DefaultDeck(t *testing.T) {
	deck := story.Default()
	// 5, 9, 10, 9, 11, 7 lines then the finale.
	want := []time.Duration{
		7200 * time.Millisecond,
		10400 * time.Millisecond,
		11200 * time.Millisecond,
		10400 * time.Millisecond,
		12000 * time.Millisecond,
		8800 * time.Millisecond,
		Indefinite,
	}
	for i, w := range want {
		assert.Equal(t, w, ComputeDuration(deck.Slide(i)), "slide %d", i)
	}
}

func TestLineRevealAt(t *testing.T) {
	assert.Equal(t, 400*time.Millisecond, LineRevealAt(0))
	assert.Equal(t, 2*time.Second, LineRevealAt(2))
	assert.Equal(t, 400*time.Millisecond, LineRevealAt(-3))
}
