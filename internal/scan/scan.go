// Package scan implements the library-scan background job (the C5
// "library scans, playlist loads" job type): walk a directory tree,
// probe every file the input layer recognises, and add it to the library.
package scan

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/library"
	"github.com/cmus-go/playcore/internal/trackstore"
)

// Scanner ties the input registry (to recognise playable extensions), the
// track-info store (to probe/cache metadata), and the library (to insert
// entries) together for a directory walk.
type Scanner struct {
	registry *input.Registry
	store    *trackstore.Store
	library  *library.Library
}

// New creates a Scanner over the given registry/store/library.
func New(registry *input.Registry, store *trackstore.Store, lib *library.Library) *Scanner {
	return &Scanner{registry: registry, store: store, library: lib}
}

// ScanDir walks root, adding every recognised audio file to the library.
// cancelling is polled between files so a worker-queue Remove can cut a
// scan short (the "cancelling()" contract).
func (s *Scanner) ScanDir(root string, cancelling func() bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cancelling() {
			return filepath.SkipAll
		}
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if input.IsPlaylistExtension(ext) || s.registry.ByExtension(ext) == nil {
			return nil
		}

		info := s.store.Get(path)
		if info == nil {
			return nil
		}
		s.library.Add(info)
		return nil
	})
}
