package library

import (
	"sort"
	"strings"
)

// AlbumNode groups an artist's tracks for one album, ordered by
// (disc, tracknumber, filename) with natural filename comparison as the
// final tie-breaker.
type AlbumNode struct {
	Name   string
	Date   string
	Tracks []*Entry
}

func (a *AlbumNode) insert(e *Entry) {
	i := sort.Search(len(a.Tracks), func(i int) bool { return !trackLess(a.Tracks[i], e) })
	a.Tracks = append(a.Tracks, nil)
	copy(a.Tracks[i+1:], a.Tracks[i:])
	a.Tracks[i] = e
}

func trackLess(x, y *Entry) bool {
	if dx, dy := x.discNumber(), y.discNumber(); dx != dy {
		return dx < dy
	}
	if nx, ny := x.trackNumber(), y.trackNumber(); nx != ny {
		return nx < ny
	}
	return naturalCompare(x.Filename(), y.Filename()) < 0
}

// ArtistNode groups an artist's albums. Expanded is UI-owned state that
// survives album add/remove and is cleared only when the artist itself is
// removed.
type ArtistNode struct {
	Name     string
	Expanded bool
	Albums   []*AlbumNode
}

func albumLess(x, y *AlbumNode) bool {
	if x.Date != y.Date {
		return x.Date < y.Date
	}
	return x.Name < y.Name
}

func (a *ArtistNode) findAlbum(name string) *AlbumNode {
	for _, al := range a.Albums {
		if al.Name == name {
			return al
		}
	}
	return nil
}

func (a *ArtistNode) insertAlbum(al *AlbumNode) {
	i := sort.Search(len(a.Albums), func(i int) bool { return !albumLess(a.Albums[i], al) })
	a.Albums = append(a.Albums, nil)
	copy(a.Albums[i+1:], a.Albums[i:])
	a.Albums[i] = al
}

// Tree is the artist/album/track projection.
type Tree struct {
	Artists []*ArtistNode
}

func (t *Tree) findArtist(name string) *ArtistNode {
	for _, a := range t.Artists {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

func artistLess(x, y *ArtistNode) bool {
	return strings.ToLower(x.Name) < strings.ToLower(y.Name)
}

func (t *Tree) insertArtist(a *ArtistNode) {
	i := sort.Search(len(t.Artists), func(i int) bool { return !artistLess(t.Artists[i], a) })
	t.Artists = append(t.Artists, nil)
	copy(t.Artists[i+1:], t.Artists[i:])
	t.Artists[i] = a
}

// Add inserts e into the tree, creating its artist/album nodes on demand.
func (t *Tree) Add(e *Entry) {
	artistName := e.artist()
	artist := t.findArtist(artistName)
	if artist == nil {
		artist = &ArtistNode{Name: artistName}
		t.insertArtist(artist)
	}

	albumName := e.album()
	album := artist.findAlbum(albumName)
	if album == nil {
		album = &AlbumNode{Name: albumName, Date: e.date()}
		artist.insertAlbum(album)
	}
	album.insert(e)
}

// Remove deletes e from the tree, collapsing empty albums/artists:
// removing the last track of an album removes the album; removing the
// last album of an artist removes the artist and collapses its expanded
// flag.
func (t *Tree) Remove(e *Entry) {
	artistName := e.artist()
	artist := t.findArtist(artistName)
	if artist == nil {
		return
	}
	albumName := e.album()
	album := artist.findAlbum(albumName)
	if album == nil {
		return
	}

	for i, tr := range album.Tracks {
		if tr == e {
			album.Tracks = append(album.Tracks[:i], album.Tracks[i+1:]...)
			break
		}
	}
	if len(album.Tracks) > 0 {
		return
	}

	for i, al := range artist.Albums {
		if al == album {
			artist.Albums = append(artist.Albums[:i], artist.Albums[i+1:]...)
			break
		}
	}
	if len(artist.Albums) > 0 {
		return
	}

	for i, a := range t.Artists {
		if a == artist {
			t.Artists = append(t.Artists[:i], t.Artists[i+1:]...)
			break
		}
	}
}

// Flatten walks the tree in display order (artist, then album, then
// track), the order the TREE play mode advances through.
func (t *Tree) Flatten() []*Entry {
	var out []*Entry
	for _, a := range t.Artists {
		for _, al := range a.Albums {
			out = append(out, al.Tracks...)
		}
	}
	return out
}
