package player

import "github.com/cmus-go/playcore/internal/library"

// LibraryTrackSource adapts a *library.Library to the TrackSource
// interface the player consumes for EOF-driven and explicit next/prev.
type LibraryTrackSource struct {
	Library *library.Library
}

func (s *LibraryTrackSource) Next() (string, bool) {
	e, ok := s.Library.Next()
	if !ok {
		return "", false
	}
	return e.Filename(), true
}

func (s *LibraryTrackSource) Prev() (string, bool) {
	e, ok := s.Library.Prev()
	if !ok {
		return "", false
	}
	return e.Filename(), true
}
