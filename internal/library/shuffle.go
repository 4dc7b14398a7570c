package library

import "math/rand/v2"

// ShuffleList is the randomised linear projection: a random permutation,
// re-randomised on demand, with new tracks inserted at a uniform random
// position.
type ShuffleList struct {
	entries []*Entry
}

// Insert places e at a uniformly random position among the current
// entries.
func (s *ShuffleList) Insert(e *Entry) {
	if len(s.entries) == 0 {
		s.entries = append(s.entries, e)
		return
	}
	i := rand.IntN(len(s.entries) + 1)
	s.entries = append(s.entries, nil)
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
}

// Remove deletes e from the list.
func (s *ShuffleList) Remove(e *Entry) {
	for i, x := range s.entries {
		if x == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Reshuffle rebuilds the list by reinserting every track at a fresh random
// position.
func (s *ShuffleList) Reshuffle() {
	old := s.entries
	s.entries = nil
	for _, e := range old {
		s.Insert(e)
	}
}

// Entries returns the current linear order.
func (s *ShuffleList) Entries() []*Entry { return s.entries }

// IndexOf returns e's position, or -1.
func (s *ShuffleList) IndexOf(e *Entry) int {
	for i, x := range s.entries {
		if x == e {
			return i
		}
	}
	return -1
}
