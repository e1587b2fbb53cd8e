package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// id3v23 builds a minimal ID3v2.3 tag with the given text frames.
func id3v23(frames map[string]string, order ...string) []byte {
	var body bytes.Buffer
	for _, id := range order {
		text := frames[id]
		body.WriteString(id)
		size := make([]byte, 4)
		binary.BigEndian.PutUint32(size, uint32(len(text)+1))
		body.Write(size)
		body.Write([]byte{0, 0}) // flags
		body.WriteByte(0)        // ISO-8859-1
		body.WriteString(text)
	}

	n := body.Len()
	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{3, 0, 0})
	out.Write([]byte{
		byte(n >> 21 & 0x7f),
		byte(n >> 14 & 0x7f),
		byte(n >> 7 & 0x7f),
		byte(n & 0x7f),
	})
	out.Write(body.Bytes())
	out.Write(make([]byte, 64))
	return out.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestCatalog_TitleFromTags(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Sparkle Radwimps.mp3", id3v23(map[string]string{
		"TIT2": "Sparkle",
		"TPE1": "RADWIMPS",
	}, "TIT2", "TPE1"))

	c := NewCatalog(dir)
	assert.Equal(t, "Sparkle - RADWIMPS", c.Title("/songs/Sparkle Radwimps.mp3"))
}

func TestCatalog_TitleWithoutArtist(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mp3", id3v23(map[string]string{"TIT2": "Only Title"}, "TIT2"))

	assert.Equal(t, "Only Title", NewCatalog(dir).Title("/songs/a.mp3"))
}

func TestCatalog_FallsBackToFileName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "her JVKE.mp3", []byte("definitely not an audio file"))

	c := NewCatalog(dir)
	assert.Equal(t, "her JVKE", c.Title("/songs/her JVKE.mp3"))
	assert.Equal(t, "Golden Hour", c.Title("/songs/Golden Hour.mp3"), "missing file")
	assert.Equal(t, "", c.Title(""))
}

func TestCatalog_Check(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "present.mp3", []byte("x"))

	c := NewCatalog(dir)
	require.NoError(t, c.Check("/songs/present.mp3"))

	err := c.Check("/songs/absent.mp3")
	require.Error(t, err)
	assert.True(t, IsAssetUnavailable(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFallbackTitle(t *testing.T) {
	assert.Equal(t, "Die With A Smile Bruno Mars", FallbackTitle("/songs/Die With A Smile Bruno Mars.mp3"))
	assert.Equal(t, "plain", FallbackTitle("plain"))
}
