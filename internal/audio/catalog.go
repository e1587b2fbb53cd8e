package audio

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"
)

// Catalog resolves track paths to files under a directory and reads their
// tag metadata for display. Lookups are cached; a track whose file is
// missing or untagged falls back to its file name.
type Catalog struct {
	dir string

	mu     sync.Mutex
	titles map[string]string
}

// NewCatalog returns a catalog reading files from dir. Track paths such as
// "/songs/her JVKE.mp3" resolve to dir/"her JVKE.mp3".
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir, titles: make(map[string]string)}
}

// File returns the local file backing track.
func (c *Catalog) File(track string) string {
	return filepath.Join(c.dir, filepath.FromSlash(path.Base(track)))
}

// Check reports an AssetUnavailableError when the track file cannot be
// opened.
func (c *Catalog) Check(track string) error {
	f, err := os.Open(c.File(track))
	if err != nil {
		return &AssetUnavailableError{Track: track, Err: err}
	}
	return f.Close()
}

// Title returns "Title - Artist" from the file's tags, "Title" when there is
// no artist, or the file name without extension when the file is missing or
// carries no title. An empty track yields "".
func (c *Catalog) Title(track string) string {
	if track == "" {
		return ""
	}

	c.mu.Lock()
	if t, ok := c.titles[track]; ok {
		c.mu.Unlock()
		return t
	}
	c.mu.Unlock()

	title, err := c.readTitle(track)
	if err != nil || title == "" {
		title = FallbackTitle(track)
	}

	c.mu.Lock()
	c.titles[track] = title
	c.mu.Unlock()
	return title
}

func (c *Catalog) readTitle(track string) (string, error) {
	f, err := os.Open(c.File(track))
	if err != nil {
		return "", err
	}
	defer f.Close()

	md, err := tag.ReadFrom(f)
	if err != nil {
		return "", fmt.Errorf("read tags: %w", err)
	}

	title := strings.TrimSpace(md.Title())
	artist := strings.TrimSpace(md.Artist())
	switch {
	case title == "":
		return "", nil
	case artist == "":
		return title, nil
	default:
		return title + " - " + artist, nil
	}
}

// FallbackTitle derives a display title from the track's file name.
func FallbackTitle(track string) string {
	base := path.Base(track)
	return strings.TrimSuffix(base, path.Ext(base))
}
