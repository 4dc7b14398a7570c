package library

import (
	"sync"

	"github.com/cmus-go/playcore/internal/trackstore"
)

// PlayMode selects which projection drives next/prev.
type PlayMode int

const (
	PlayTree PlayMode = iota
	PlayShuffle
	PlaySorted
)

// PlaylistMode restricts how far next/prev may advance.
type PlaylistMode int

const (
	PlaylistAll PlaylistMode = iota
	PlaylistArtist
	PlaylistAlbum
)

// Library holds the full (unfiltered) track set plus the three filtered
// projections over it.
type Library struct {
	mu sync.Mutex

	all map[string]*Entry // every known entry, independent of the filter

	tree    *Tree
	sorted  *SortedList
	shuffle *ShuffleList
	filter  *Filter

	playMode     PlayMode
	playlistMode PlaylistMode
	repeat       bool

	current *Entry
}

// New creates an empty Library sorted by sortKeys (e.g. "artist,date,
// album,discnumber,tracknumber,title").
func New(sortKeys []string) *Library {
	return &Library{
		all:     make(map[string]*Entry),
		tree:    &Tree{},
		sorted:  NewSortedList(sortKeys),
		shuffle: &ShuffleList{},
	}
}

// Add inserts info into the store and, if it passes the active filter,
// into every projection. If an entry with info's filename is already
// present, Add returns that entry and changes nothing.
func (l *Library) Add(info *trackstore.Info) *Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.all[info.Filename]; ok {
		return existing
	}
	e := &Entry{Info: info}
	l.all[e.Filename()] = e
	if l.filter.Matches(e) {
		l.insertIntoViews(e)
	}
	return e
}

func (l *Library) insertIntoViews(e *Entry) {
	l.tree.Add(e)
	l.sorted.Insert(e)
	l.shuffle.Insert(e)
}

func (l *Library) removeFromViews(e *Entry) {
	l.tree.Remove(e)
	l.sorted.Remove(e)
	l.shuffle.Remove(e)
}

// Remove deletes filename from the store and every projection. If it was
// the current track, Current() becomes nil.
func (l *Library) Remove(filename string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.all[filename]
	if !ok {
		return
	}
	delete(l.all, filename)
	l.removeFromViews(e)
	if l.current == e {
		l.current = nil
	}
}

// RemoveArtist deletes every entry whose artist name matches artistName.
// A current track of another artist is unaffected; if the current track
// belongs to the removed artist, Current() becomes nil.
func (l *Library) RemoveArtist(artistName string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var toRemove []*Entry
	for _, e := range l.all {
		if equalFoldArtist(e, artistName) {
			toRemove = append(toRemove, e)
		}
	}
	for _, e := range toRemove {
		delete(l.all, e.Filename())
		l.removeFromViews(e)
		if l.current == e {
			l.current = nil
		}
	}
}

func equalFoldArtist(e *Entry, name string) bool {
	return foldEquals(e.artist(), name)
}

// SetFilter compiles and installs a new filter expression, re-projecting
// all views while preserving the currently-playing track's selection where
// possible.
func (l *Library) SetFilter(expr string) error {
	var f *Filter
	if expr != "" {
		compiled, err := ParseFilter(expr)
		if err != nil {
			return err
		}
		f = compiled
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	currentFilename := ""
	if l.current != nil {
		currentFilename = l.current.Filename()
	}

	l.tree = &Tree{}
	l.sorted = NewSortedList(l.sorted.keys)
	l.shuffle = &ShuffleList{}
	l.filter = f

	for _, e := range l.all {
		if f.Matches(e) {
			l.insertIntoViews(e)
		}
	}

	l.current = nil
	if currentFilename != "" {
		if e, ok := l.all[currentFilename]; ok && f.Matches(e) {
			l.current = e
		}
	}
	return nil
}

// ClearFilter removes the active filter, restoring every stored entry to
// every view.
func (l *Library) ClearFilter() error { return l.SetFilter("") }

// Count returns the number of entries the active filter currently admits
// into the views (all three projections always hold the same count).
func (l *Library) Count() int { return len(l.sorted.Entries()) }

// SetSortKeys changes the sorted projection's key sequence.
func (l *Library) SetSortKeys(keys []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sorted.SetKeys(keys)
}

// Reshuffle rebuilds the shuffle projection.
func (l *Library) Reshuffle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shuffle.Reshuffle()
}

// SetPlayMode selects which projection drives Next/Prev.
func (l *Library) SetPlayMode(m PlayMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.playMode = m
}

// SetPlaylistMode restricts how far Next/Prev may advance.
func (l *Library) SetPlaylistMode(m PlaylistMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.playlistMode = m
}

// SetRepeat toggles wraparound at the ends of the active projection.
func (l *Library) SetRepeat(repeat bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.repeat = repeat
}

// Current returns the currently-selected entry, or nil.
func (l *Library) Current() *Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// SetSelected sets the current track directly to whatever the caller has
// highlighted, independent of playback.
func (l *Library) SetSelected(e *Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = e
}

func foldEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
