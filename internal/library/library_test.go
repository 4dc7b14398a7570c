package library_test

import (
	"testing"

	"github.com/cmus-go/playcore/internal/library"
	"github.com/cmus-go/playcore/internal/trackstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func info(filename string, comments map[string]string, duration int) *trackstore.Info {
	i := &trackstore.Info{Filename: filename, Duration: duration, Comments: comments}
	return i
}

func Test_Tree_CaseInsensitiveArtistName_MergesIntoOneNode(t *testing.T) {
	l := library.New([]string{"artist", "album", "tracknumber"})
	l.Add(info("/a1.mp3", map[string]string{"artist": "Boards", "album": "Geogaddi", "tracknumber": "1"}, 100))
	l.Add(info("/a2.mp3", map[string]string{"artist": "boards", "album": "Geogaddi", "tracknumber": "2"}, 100))

	assert.Equal(t, 2, l.Count())

	// Merged, both tracks share one album node and play in tracknumber
	// order; two separate artist nodes would put "/a2.mp3" first.
	first, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, "/a1.mp3", first.Filename())
	second, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, "/a2.mp3", second.Filename())
}

func Test_Tree_AlbumMode_NoNextPastLastTrackOfAlbum(t *testing.T) {
	l := library.New([]string{"artist", "album", "tracknumber"})
	t1 := l.Add(info("/a1.mp3", map[string]string{"artist": "A", "album": "X", "tracknumber": "1"}, 100))
	l.Add(info("/a2.mp3", map[string]string{"artist": "A", "album": "X", "tracknumber": "2"}, 100))

	l.SetPlayMode(library.PlayTree)
	l.SetPlaylistMode(library.PlaylistAlbum)
	l.SetSelected(t1)

	_, ok := l.Next()
	require.True(t, ok)

	_, ok = l.Next()
	assert.False(t, ok, "expected no next past the last track of the album")
}

func Test_Shuffle_FullTraversalVisitsEveryTrackExactlyOnce(t *testing.T) {
	l := library.New([]string{"artist"})
	names := []string{"/1.mp3", "/2.mp3", "/3.mp3", "/4.mp3", "/5.mp3"}
	for i, n := range names {
		l.Add(info(n, map[string]string{"artist": "A", "tracknumber": itoa(i)}, 10))
	}

	l.SetPlayMode(library.PlayShuffle)
	l.SetPlaylistMode(library.PlaylistAll)

	seen := map[string]bool{}
	e, ok := l.Next()
	for ok {
		seen[e.Filename()] = true
		e, ok = l.Next()
	}
	assert.Len(t, seen, len(names))
}

func Test_Filter_SetThenClear_RestoresCountAndCurrent(t *testing.T) {
	l := library.New([]string{"artist"})
	l.Add(info("/short.mp3", map[string]string{"artist": "A"}, 30))
	long := l.Add(info("/long.mp3", map[string]string{"artist": "A"}, 300))

	l.SetSelected(long)
	require.NoError(t, l.SetFilter("duration>60"))
	assert.Equal(t, 1, l.Count())
	assert.Same(t, long, l.Current())

	require.NoError(t, l.ClearFilter())
	assert.Equal(t, 2, l.Count())
	assert.Same(t, long, l.Current())
}

func Test_RemoveArtist_LeavesOtherArtistCurrentUnaffected(t *testing.T) {
	l := library.New([]string{"artist", "tracknumber"})
	l.Add(info("/a1.mp3", map[string]string{"artist": "A", "tracknumber": "1"}, 10))
	l.Add(info("/a2.mp3", map[string]string{"artist": "A", "tracknumber": "2"}, 10))
	b1 := l.Add(info("/b1.mp3", map[string]string{"artist": "B", "tracknumber": "1"}, 10))

	l.SetSelected(b1)
	l.RemoveArtist("A")

	assert.Same(t, b1, l.Current())
	assert.Equal(t, 1, l.Count())
}

func Test_Filter_CompareOperators(t *testing.T) {
	f, err := library.ParseFilter(`artist="Boards" & duration>60`)
	require.NoError(t, err)

	e := &library.Entry{Info: info("/x.mp3", map[string]string{"artist": "Boards"}, 180)}
	assert.True(t, f.Matches(e))

	e2 := &library.Entry{Info: info("/y.mp3", map[string]string{"artist": "Other"}, 180)}
	assert.False(t, f.Matches(e2))
}

func Test_Filter_SugarForms(t *testing.T) {
	f, err := library.ParseFilter(`~a"boards"`)
	require.NoError(t, err)
	e := &library.Entry{Info: info("/x.mp3", map[string]string{"artist": "Boards of Canada"}, 100)}
	assert.True(t, f.Matches(e))

	f2, err := library.ParseFilter(`~d<120`)
	require.NoError(t, err)
	assert.True(t, f2.Matches(e))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}
