package library

import (
	"strconv"
	"strings"

	"github.com/cmus-go/playcore/internal/trackstore"
)

// Entry is one track as seen by the library: a reference to the shared
// track-info record plus the filename used as its identity.
type Entry struct {
	Info *trackstore.Info
}

// Filename is the entry's identity: every track appears exactly once,
// de-duplicated by absolute filename.
func (e *Entry) Filename() string { return e.Info.Filename }

// Field returns a comment value, or the synthetic "duration"/"filename"
// fields, lowercased keys only.
func (e *Entry) Field(key string) string {
	switch strings.ToLower(key) {
	case "duration":
		return strconv.Itoa(e.Info.Duration)
	case "filename":
		return e.Info.Filename
	default:
		return e.Info.Comments[strings.ToLower(key)]
	}
}

// NumericField parses Field(key) as a float; ok is false for empty/
// non-numeric values (missing keys simply never match a </> comparison).
func (e *Entry) NumericField(key string) (float64, bool) {
	v := e.Field(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (e *Entry) artist() string {
	if a := e.Info.Comments["artist"]; a != "" {
		return a
	}
	return "Unknown Artist"
}

func (e *Entry) album() string {
	if a := e.Info.Comments["album"]; a != "" {
		return a
	}
	return "Unknown Album"
}

func (e *Entry) date() string { return e.Info.Comments["date"] }

func (e *Entry) discNumber() int {
	n, _ := strconv.Atoi(e.Info.Comments["discnumber"])
	return n
}

func (e *Entry) trackNumber() int {
	n, _ := strconv.Atoi(e.Info.Comments["tracknumber"])
	return n
}
