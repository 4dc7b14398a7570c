package library

import (
	"sort"
	"strings"
)

// numericSortKeys are compared numerically rather than as strings.
var numericSortKeys = map[string]bool{
	"tracknumber": true,
	"discnumber":  true,
}

// SortedList is the linear projection totally ordered by a user-supplied
// key sequence.
type SortedList struct {
	keys    []string
	entries []*Entry
}

// NewSortedList creates a SortedList driven by keys (e.g.
// []string{"artist", "date", "album", "discnumber", "tracknumber", "title"}).
func NewSortedList(keys []string) *SortedList {
	return &SortedList{keys: append([]string(nil), keys...)}
}

// SetKeys re-sorts the list under a new key sequence using a stable sort,
// so entries that compare equal keep their relative order.
func (s *SortedList) SetKeys(keys []string) {
	s.keys = append([]string(nil), keys...)
	sort.SliceStable(s.entries, func(i, j int) bool { return s.less(s.entries[i], s.entries[j]) })
}

func (s *SortedList) less(x, y *Entry) bool {
	for _, key := range s.keys {
		c := s.compareField(x, y, key)
		if c != 0 {
			return c < 0
		}
	}
	return false
}

// compareField compares x and y on one key: missing keys sort first,
// numeric keys compare numerically, everything else case-insensitively
//.
func (s *SortedList) compareField(x, y *Entry, key string) int {
	xv, yv := x.Field(key), y.Field(key)

	if numericSortKeys[strings.ToLower(key)] {
		xf, xok := x.NumericField(key)
		yf, yok := y.NumericField(key)
		switch {
		case !xok && !yok:
			return 0
		case !xok:
			return -1
		case !yok:
			return 1
		case xf < yf:
			return -1
		case xf > yf:
			return 1
		default:
			return 0
		}
	}

	xMissing, yMissing := xv == "", yv == ""
	switch {
	case xMissing && yMissing:
		return 0
	case xMissing:
		return -1
	case yMissing:
		return 1
	}
	return strings.Compare(strings.ToLower(xv), strings.ToLower(yv))
}

// Insert adds e at its sorted position.
func (s *SortedList) Insert(e *Entry) {
	i := sort.Search(len(s.entries), func(i int) bool { return !s.less(s.entries[i], e) })
	s.entries = append(s.entries, nil)
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
}

// Remove deletes e from the list.
func (s *SortedList) Remove(e *Entry) {
	for i, x := range s.entries {
		if x == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Entries returns the current linear order.
func (s *SortedList) Entries() []*Entry { return s.entries }

// IndexOf returns e's position, or -1.
func (s *SortedList) IndexOf(e *Entry) int {
	for i, x := range s.entries {
		if x == e {
			return i
		}
	}
	return -1
}
