package trackstore_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cmus-go/playcore/internal/trackstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProber struct {
	duration int
	comments map[string]string
	err      error
}

func (f *fakeProber) Duration(string) (int, error) { return f.duration, f.err }
func (f *fakeProber) Comments(string) (map[string]string, error) {
	return f.comments, f.err
}

func Test_Store_Get_ProbesOnFirstEncounter(t *testing.T) {
	p := &fakeProber{duration: 180, comments: map[string]string{"artist": "Boards"}}
	s := trackstore.New(p, nil)

	info := s.Get("/music/a.flac")
	require.NotNil(t, info)
	assert.Equal(t, 180, info.Duration)
	assert.Equal(t, "Boards", info.Comments["artist"])
}

func Test_Store_Get_SecondCallReturnsSameRecordWithIncrementedRef(t *testing.T) {
	p := &fakeProber{duration: 10, comments: map[string]string{}}
	s := trackstore.New(p, nil)

	a := s.Get("/music/a.flac")
	b := s.Get("/music/a.flac")
	assert.Same(t, a, b)
	assert.Equal(t, 2, a.RefCount())
}

func Test_Store_Get_RemoteURL_BypassesProbe(t *testing.T) {
	p := &fakeProber{err: errors.New("should not be called")}
	s := trackstore.New(p, nil)

	info := s.Get("http://example.com/stream.mp3")
	require.NotNil(t, info)
	assert.True(t, info.Remote)
	assert.Equal(t, -1, info.Duration)
	assert.Equal(t, int64(-1), info.Mtime)
}

func Test_Store_Get_ProbeFailure_ReturnsNil(t *testing.T) {
	p := &fakeProber{err: errors.New("boom")}
	s := trackstore.New(p, nil)
	assert.Nil(t, s.Get("/music/broken.wav"))
}

func Test_Store_Remove_DropsEntry(t *testing.T) {
	p := &fakeProber{duration: 1, comments: map[string]string{}}
	s := trackstore.New(p, nil)
	s.Get("/music/a.flac")
	s.Remove("/music/a.flac")

	var seen int
	s.Iterate(func(*trackstore.Info) { seen++ })
	assert.Equal(t, 0, seen)
}

func Test_Store_Iterate_VisitsAllEntries(t *testing.T) {
	p := &fakeProber{duration: 1, comments: map[string]string{}}
	s := trackstore.New(p, nil)
	s.Get("/a.flac")
	s.Get("/b.flac")

	seen := map[string]bool{}
	s.Iterate(func(i *trackstore.Info) { seen[i.Filename] = true })
	assert.True(t, seen["/a.flac"])
	assert.True(t, seen["/b.flac"])
}

func Test_DiskCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	idx := filepath.Join(dir, "track.idx")
	dat := filepath.Join(dir, "track.dat")

	c := trackstore.Open(idx, dat)
	c.Insert("/music/a.flac", 1000, 180, map[string]string{"artist": "Boards"})
	require.NoError(t, c.Close())

	c2 := trackstore.Open(idx, dat)
	entry, ok := c2.Lookup("/music/a.flac")
	require.True(t, ok)
	assert.Equal(t, int64(1000), entry.Mtime)
	assert.Equal(t, 180, entry.Duration)
	assert.Equal(t, "Boards", entry.Comments["artist"])
}

func Test_DiskCache_CorruptIndex_TreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	idx := filepath.Join(dir, "track.idx")
	dat := filepath.Join(dir, "track.dat")
	require.NoError(t, os.WriteFile(idx, []byte{0xFF, 0xFF, 0xFF}, 0o644))

	c := trackstore.Open(idx, dat)
	_, ok := c.Lookup("/anything")
	assert.False(t, ok)
}

func Test_DiskCache_Lookup_Miss_ReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	c := trackstore.Open(filepath.Join(dir, "track.idx"), filepath.Join(dir, "track.dat"))
	_, ok := c.Lookup("/nope")
	assert.False(t, ok)
}
