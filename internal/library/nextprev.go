package library

// Next advances to the next track under the active play mode, playlist
// mode, and repeat flag, updating Current() on success.
func (l *Library) Next() (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.step(true)
	if ok {
		l.current = e
	}
	return e, ok
}

// Prev moves to the previous track, mirroring Next.
func (l *Library) Prev() (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.step(false)
	if ok {
		l.current = e
	}
	return e, ok
}

// step implements the next/prev algorithm: walk the active
// projection's linear order (the tree's artist/album/track walk is itself
// linear once flattened), restrict by playlist_mode scope, and wrap only
// when repeat is set.
func (l *Library) step(forward bool) (*Entry, bool) {
	entries := l.activeProjection()
	if len(entries) == 0 {
		return nil, false
	}

	scoped := l.scopeFilter(entries)
	idx := indexOfEntry(scoped, l.current)

	if idx == -1 {
		if len(scoped) == 0 {
			return nil, false
		}
		if forward {
			return scoped[0], true
		}
		return scoped[len(scoped)-1], true
	}

	if forward {
		if idx+1 < len(scoped) {
			return scoped[idx+1], true
		}
	} else {
		if idx-1 >= 0 {
			return scoped[idx-1], true
		}
	}

	if l.repeat && len(scoped) > 0 {
		if forward {
			return scoped[0], true
		}
		return scoped[len(scoped)-1], true
	}
	return nil, false
}

func (l *Library) activeProjection() []*Entry {
	switch l.playMode {
	case PlayShuffle:
		return l.shuffle.Entries()
	case PlaySorted:
		return l.sorted.Entries()
	default:
		return l.tree.Flatten()
	}
}

// scopeFilter restricts entries to the current track's artist/album when
// playlist_mode requires it; PlaylistAll returns entries unchanged.
func (l *Library) scopeFilter(entries []*Entry) []*Entry {
	if l.playlistMode == PlaylistAll || l.current == nil {
		return entries
	}

	out := entries[:0:0]
	for _, e := range entries {
		switch l.playlistMode {
		case PlaylistArtist:
			if foldEquals(e.artist(), l.current.artist()) {
				out = append(out, e)
			}
		case PlaylistAlbum:
			if foldEquals(e.artist(), l.current.artist()) && e.album() == l.current.album() {
				out = append(out, e)
			}
		}
	}
	return out
}

func indexOfEntry(entries []*Entry, target *Entry) int {
	if target == nil {
		return -1
	}
	for i, e := range entries {
		if e == target {
			return i
		}
	}
	return -1
}
