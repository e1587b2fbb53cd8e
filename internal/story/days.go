package story

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DaysSince returns the whole days between start and now, rounded up. The
// order of the arguments does not matter.
func DaysSince(start, now time.Time) int {
	diff := now.Sub(start)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// FormatCount renders n with English digit grouping ("2,616").
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
