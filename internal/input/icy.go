package input

import (
	"io"
	"strings"
)

// icyReader wraps an HTTP body that interleaves Shoutcast inline metadata
// with PCM bytes: exactly Metaint bytes of PCM, then one
// length byte L, then 16*L bytes of metadata, NUL-padded. Framing is
// transparent to the decoder: Read only ever returns PCM bytes.
type icyReader struct {
	src      io.Reader
	metaint  int
	remain   int // PCM bytes left before the next metadata frame
	onMeta   func(title, url string)
	lastMeta string
}

func newICYReader(src io.Reader, metaint int, onMeta func(title, url string)) *icyReader {
	return &icyReader{src: src, metaint: metaint, remain: metaint, onMeta: onMeta}
}

func (r *icyReader) Read(p []byte) (int, error) {
	if r.metaint <= 0 {
		return r.src.Read(p)
	}

	if r.remain == 0 {
		if err := r.consumeMetadata(); err != nil {
			return 0, err
		}
		r.remain = r.metaint
	}

	max := len(p)
	if max > r.remain {
		max = r.remain
	}
	n, err := r.src.Read(p[:max])
	r.remain -= n
	return n, err
}

func (r *icyReader) consumeMetadata() error {
	var lenByte [1]byte
	if _, err := io.ReadFull(r.src, lenByte[:]); err != nil {
		return err
	}
	n := int(lenByte[0]) * 16
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return err
	}
	r.lastMeta = string(buf)
	title, url := parseICYMetadata(buf)
	if r.onMeta != nil && (title != "" || url != "") {
		r.onMeta(title, url)
	}
	return nil
}

// parseICYMetadata extracts StreamTitle and StreamUrl from a semicolon-
// terminated list of KEY='VALUE'; pairs. Only those two keys are consumed.
func parseICYMetadata(buf []byte) (title, streamURL string) {
	s := string(buf)
	// Trim NUL padding.
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}

	for _, part := range splitSemicolonPairs(s) {
		key, val, ok := splitKeyQuotedValue(part)
		if !ok {
			continue
		}
		switch key {
		case "StreamTitle":
			title = val
		case "StreamUrl":
			streamURL = val
		}
	}
	return
}

// splitSemicolonPairs splits on ';' but only outside of single-quoted
// values, since values may themselves contain semicolons.
func splitSemicolonPairs(s string) []string {
	var parts []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}

func splitKeyQuotedValue(part string) (key, val string, ok bool) {
	eq := strings.IndexByte(part, '=')
	if eq < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(part[:eq])
	rest := strings.TrimSpace(part[eq+1:])
	rest = strings.TrimPrefix(rest, "'")
	rest = strings.TrimSuffix(rest, "'")
	return key, rest, true
}
