package trackstore

import (
	"strings"
	"sync"
)

// Prober is how the store asks the input layer (C3) to read duration and
// comments for a filename the first time it is seen. Callers wire this to
// the input opener; the store never imports the input package directly to
// avoid a dependency cycle (C3 does not depend on C6).
type Prober interface {
	Duration(filename string) (int, error)
	Comments(filename string) (map[string]string, error)
}

// Store is the hash table from absolute filename/URL to Info, guarded by a
// single mutex — the track-info store is the only cross-thread shared
// heap.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Info
	prober  Prober
	cache   *DiskCache // optional; nil disables persistence
}

// New creates a Store. cache may be nil.
func New(prober Prober, cache *DiskCache) *Store {
	return &Store{
		entries: make(map[string]*Info),
		prober:  prober,
		cache:   cache,
	}
}

// Get returns a new reference to the Info for filename, probing and
// inserting it on first encounter. Returns nil only if a local-file probe
// fails unrecoverably; remote URLs always succeed with placeholder values.
func (s *Store) Get(filename string) *Info {
	s.mu.Lock()
	if info, ok := s.entries[filename]; ok {
		info.ref()
		s.mu.Unlock()
		return info
	}
	s.mu.Unlock()

	remote := isRemoteName(filename)
	info := newInfo(filename, remote)

	if remote {
		s.mu.Lock()
		s.entries[filename] = info
		s.mu.Unlock()
		return info
	}

	if s.cache != nil {
		if cached, ok := s.cache.Lookup(filename); ok {
			info.Mtime = cached.Mtime
			info.Duration = cached.Duration
			info.Comments = cached.Comments
			s.mu.Lock()
			s.entries[filename] = info
			s.mu.Unlock()
			return info
		}
	}

	if s.prober == nil {
		s.mu.Lock()
		s.entries[filename] = info
		s.mu.Unlock()
		return info
	}

	duration, err := s.prober.Duration(filename)
	if err != nil {
		return nil
	}
	comments, err := s.prober.Comments(filename)
	if err != nil {
		return nil
	}
	info.Duration = duration
	info.Comments = comments

	s.mu.Lock()
	s.entries[filename] = info
	s.mu.Unlock()

	if s.cache != nil {
		s.cache.Insert(filename, info.Mtime, info.Duration, info.Comments)
	}

	return info
}

// Remove drops the store's own reference to filename's Info.
func (s *Store) Remove(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info, ok := s.entries[filename]; ok {
		info.Unref()
		delete(s.entries, filename)
	}
}

// Iterate calls cb for every entry. Iteration order is unspecified (spec
// ).
func (s *Store) Iterate(cb func(*Info)) {
	s.mu.Lock()
	infos := make([]*Info, 0, len(s.entries))
	for _, info := range s.entries {
		infos = append(infos, info)
	}
	s.mu.Unlock()

	for _, info := range infos {
		cb(info)
	}
}

func isRemoteName(filename string) bool {
	return strings.Contains(filename, "://")
}
