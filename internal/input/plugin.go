// Package input implements the input plugin layer (C3):
// opening a local file or remote URL, selecting a decoder by extension or
// MIME type, reading PCM and tags, and Shoutcast-style inline metadata
// extraction for live streams.
package input

import (
	"io"

	"github.com/cmus-go/playcore/internal/sampleformat"
)

// Comments is an unordered, duplicate-free mapping of lowercase comment keys
// to UTF-8 values (artist, album, title, date, tracknumber, ...).
type Comments map[string]string

// Context carries everything a plugin's Open needs and is free to populate.
type Context struct {
	Filename string
	Remote   bool
	File     io.ReadCloser // the open file or HTTP body (owns the fd/conn)
	Reader   io.Reader     // the byte stream plugins actually Read from
	// (identical to File for local files; for remote sources this is the
	// icy-metadata-stripping wrapper around File, so framing stays
	// transparent to the decoder)
	Format  sampleformat.Format
	Private any // plugin-private decoder state

	// Metaint is the Shoutcast byte interval between inline metadata
	// frames; 0 means no inline metadata.
	Metaint int
}

// Plugin is the vtable every input plugin implements.
type Plugin interface {
	Name() string
	Extensions() []string
	MIMETypes() []string

	Open(ctx *Context) error
	Close(ctx *Context) error
	Read(ctx *Context, buf []byte) (int, error)
	Seek(ctx *Context, seconds float64) error
	ReadComments(ctx *Context) (Comments, error)
	Duration(ctx *Context) (int, error) // whole seconds, -1 if unknown
}

// Registry holds every registered plugin and dispatches by extension or
// MIME type. Plugins are compiled in and registered at start-up into the
// same two tables the original dlopen-based dispatch used;
// registration order does not matter for correctness, but Register'ed-first
// wins a tie on ambiguous extensions: first match wins.
type Registry struct {
	plugins []Plugin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a plugin to the registry.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
}

// ByExtension returns the first registered plugin whose extension list
// contains ext (case-insensitive, without the leading dot), or nil.
func (r *Registry) ByExtension(ext string) Plugin {
	ext = lowerASCII(ext)
	for _, p := range r.plugins {
		for _, e := range p.Extensions() {
			if lowerASCII(e) == ext {
				return p
			}
		}
	}
	return nil
}

// ByMIME returns the first registered plugin whose MIME type list contains
// mime (case-insensitive), or nil.
func (r *Registry) ByMIME(mime string) Plugin {
	mime = lowerASCII(mime)
	for _, p := range r.plugins {
		for _, m := range p.MIMETypes() {
			if lowerASCII(m) == mime {
				return p
			}
		}
	}
	return nil
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
