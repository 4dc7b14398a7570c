package input

import (
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cmus-go/playcore/internal/sampleformat"
)

// readTimeout bounds how long a single Read call may block before returning
// a zero-length, nil-error result, so the producer never blocks longer than
// this waiting on a stalled stream.
const readTimeout = 50 * time.Millisecond

// maxPlaylistRedirects bounds the .pls/.m3u recursion depth.
const maxPlaylistRedirects = 8

// Source is a live, opened input: a plugin bound to a context. It returns
// the decoder's PCM in the format Format() reports; no PCM conversion is
// applied here.
type Source struct {
	plugin      Plugin
	ctx         *Context
	eof         bool
	icy         *icyReader
	metaCh      chan metadataEvent
	icyComments Comments // icy-name/icy-genre, set on remote open; nil for local files

	readOnce    sync.Once
	readReqCh   chan []byte
	readResCh   chan readResult
	readStop    chan struct{}
	readPending bool
}

type readResult struct {
	n   int
	err error
}

type metadataEvent struct {
	Title string
	URL   string
}

// Opener resolves filenames/URLs to a Source using the registry's
// extension/MIME dispatch.
type Opener struct {
	registry *Registry
}

func NewOpener(r *Registry) *Opener {
	return &Opener{registry: r}
}

// Open opens a local path or remote URL (http://, https://) and returns a
// live Source. Local files are matched by extension (first match wins);
// remote URLs whose path ends in a playlist extension are read as
// playlists, other remote URLs are matched by Content-Type.
func (o *Opener) Open(target string) (*Source, error) {
	if isRemote(target) {
		return o.openRemote(target, 0)
	}
	return o.openLocal(target, 0)
}

func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}

func (o *Opener) openLocal(path string, depth int) (*Source, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	if IsPlaylistExtension(ext) {
		if depth > maxPlaylistRedirects {
			return nil, newErr(KindFileFormat, path, nil)
		}
		target, err := resolveLocalPlaylist(path, ext)
		if err != nil {
			return nil, err
		}
		if isRemote(target) {
			return o.openRemote(target, depth+1)
		}
		return o.openLocal(target, depth+1)
	}

	plugin := o.registry.ByExtension(ext)
	if plugin == nil {
		return nil, newErr(KindUnrecognizedFileType, ext, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(KindErrno, path, err)
	}

	ctx := &Context{Filename: path, File: f, Reader: f}
	if err := plugin.Open(ctx); err != nil {
		f.Close()
		return nil, err
	}

	return &Source{plugin: plugin, ctx: ctx}, nil
}

func resolveLocalPlaylist(path, ext string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", newErr(KindErrno, path, err)
	}
	var target string
	var ok bool
	switch ext {
	case "pls":
		target, ok = ParsePLS(data)
	default: // m3u, pl
		target, ok = ParseM3U(data)
	}
	if !ok {
		return "", newErr(KindFileFormat, path, nil)
	}
	if !isRemote(target) && !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return target, nil
}

// openRemote implements the remote-open algorithm: GET the URL,
// treat it as a playlist if its path ends in .pls/.m3u/.pl, else
// dispatch on Content-Type (x-scpls / m3u recurse; otherwise select a
// plugin by MIME, defaulting to audio/mpeg, failing FILE_FORMAT if no
// plugin recognises it), and wire up icy-metaint framing when present.
func (o *Opener) openRemote(rawURL string, depth int) (*Source, error) {
	if depth > maxPlaylistRedirects {
		return nil, newErr(KindFileFormat, rawURL, nil)
	}

	body, headers, metaint, err := openHTTP(rawURL)
	if err != nil {
		return nil, err
	}

	ct := contentType(headers)
	// Playlist-by-extension is checked before the Content-Type.
	if u, err := url.Parse(rawURL); err == nil {
		switch strings.TrimPrefix(strings.ToLower(filepath.Ext(u.Path)), ".") {
		case "pls":
			ct = "audio/x-scpls"
		case "m3u", "pl":
			ct = "audio/m3u"
		}
	}

	switch ct {
	case "audio/x-scpls":
		data, err := readAllWithTimeout(body)
		body.Close()
		if err != nil {
			return nil, newErr(KindHTTPResponse, rawURL, err)
		}
		target, ok := ParsePLS(data)
		if !ok {
			return nil, newErr(KindFileFormat, rawURL, nil)
		}
		return o.openRemote(target, depth+1)

	case "audio/m3u", "audio/x-mpegurl", "application/x-mpegurl":
		data, err := readAllWithTimeout(body)
		body.Close()
		if err != nil {
			return nil, newErr(KindHTTPResponse, rawURL, err)
		}
		target, ok := ParseM3U(data)
		if !ok {
			return nil, newErr(KindFileFormat, rawURL, nil)
		}
		return o.openRemote(target, depth+1)
	}

	mime := ct
	plugin := o.registry.ByMIME(mime)
	if plugin == nil {
		plugin = o.registry.ByMIME("audio/mpeg")
		if plugin == nil {
			body.Close()
			return nil, newErr(KindFileFormat, rawURL, nil)
		}
	}

	src := &Source{plugin: plugin, icyComments: icyHeaderComments(headers)}
	src.metaCh = make(chan metadataEvent, 4)

	onMeta := func(title, url string) {
		select {
		case src.metaCh <- metadataEvent{Title: title, URL: url}:
		default:
		}
	}

	var reader io.Reader = body
	if metaint > 0 {
		src.icy = newICYReader(body, metaint, onMeta)
		reader = src.icy
	}

	ctx := &Context{Filename: rawURL, Remote: true, File: body, Reader: reader, Metaint: metaint}
	src.ctx = ctx

	if err := plugin.Open(ctx); err != nil {
		body.Close()
		return nil, err
	}

	return src, nil
}

// ensureReadPump lazily starts the single goroutine that owns every call to
// s.plugin.Read. Only one request is ever outstanding on it, so a timed-out
// Read never leaves a second call racing the first over s.ctx/buf.
func (s *Source) ensureReadPump() {
	s.readOnce.Do(func() {
		s.readReqCh = make(chan []byte)
		s.readResCh = make(chan readResult)
		s.readStop = make(chan struct{})
		go func() {
			for {
				select {
				case buf := <-s.readReqCh:
					n, err := s.plugin.Read(s.ctx, buf)
					select {
					case s.readResCh <- readResult{n, err}:
					case <-s.readStop:
						return
					}
				case <-s.readStop:
					return
				}
			}
		}()
	})
}

// Read reads decoded PCM via the underlying plugin, applying a
// read deadline so a stalled stream never blocks the caller longer than
// readTimeout. A (0, nil) result means "try again later",
// distinct from EOF. The actual plugin call runs on a single persistent
// goroutine (see ensureReadPump) so a caller that keeps retrying after a
// timeout never has two Read calls in flight on the same context.
func (s *Source) Read(buf []byte) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	s.ensureReadPump()

	if !s.readPending {
		select {
		case s.readReqCh <- buf:
			s.readPending = true
		case <-s.readStop:
			return 0, io.EOF
		}
	}

	select {
	case r := <-s.readResCh:
		s.readPending = false
		if r.err == io.EOF {
			s.eof = true
		}
		return r.n, r.err
	case <-time.After(readTimeout):
		// Timed out: report "nothing available yet". readPending stays
		// true so the next Read waits on the same outstanding request
		// instead of sending a second one.
		return 0, nil
	}
}

// Seek seeks the underlying decoder to the given offset in seconds.
func (s *Source) Seek(seconds float64) error {
	s.eof = false
	return s.plugin.Seek(s.ctx, seconds)
}

// ReadComments returns the tag/comment map for this source, merging in any
// icy-name/icy-genre response headers the remote server sent alongside
// icy-metaint (beyond the StreamTitle inline metadata already handled by
// Metadata).
func (s *Source) ReadComments() (Comments, error) {
	c, err := s.plugin.ReadComments(s.ctx)
	if err != nil {
		return nil, err
	}
	if len(s.icyComments) == 0 {
		return c, nil
	}
	if c == nil {
		c = Comments{}
	}
	for k, v := range s.icyComments {
		if _, exists := c[k]; !exists {
			c[k] = v
		}
	}
	return c, nil
}

// icyHeaderComments extracts the icy-name/icy-genre response headers a
// SHOUTcast/Icecast server sends alongside icy-metaint, surfacing them as
// read-only comment keys distinct from the inline StreamTitle metadata.
func icyHeaderComments(h http.Header) Comments {
	c := Comments{}
	if v := h.Get("icy-name"); v != "" {
		c["icy-name"] = v
	}
	if v := h.Get("icy-genre"); v != "" {
		c["icy-genre"] = v
	}
	if len(c) == 0 {
		return nil
	}
	return c
}

// Duration returns the track duration in whole seconds, -1 if unknown.
func (s *Source) Duration() (int, error) {
	return s.plugin.Duration(s.ctx)
}

// Format returns the sample format the plugin reported on Open.
func (s *Source) Format() sampleformat.Format {
	return s.ctx.Format
}

// Metadata drains any pending Shoutcast inline-metadata events
// (StreamTitle/StreamUrl) that arrived since the last call. Non-blocking.
func (s *Source) Metadata() (title, url string, ok bool) {
	if s.metaCh == nil {
		return "", "", false
	}
	select {
	case ev := <-s.metaCh:
		return ev.Title, ev.URL, true
	default:
		return "", "", false
	}
}

// Close releases the underlying plugin and file/connection, and stops the
// read pump goroutine if one was started.
func (s *Source) Close() error {
	if s.readStop != nil {
		close(s.readStop)
	}
	if s.ctx == nil {
		return nil
	}
	err := s.plugin.Close(s.ctx)
	if s.ctx.File != nil {
		s.ctx.File.Close()
	}
	return err
}
