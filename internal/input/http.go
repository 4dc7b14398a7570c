package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// httpTimeout is the connect/read timeout (5s each).
const httpTimeout = 5 * time.Second

// openHTTP performs the HTTP/1.x GET: userinfo becomes HTTP
// Basic auth, Host/User-Agent/Icy-MetaData headers are always sent, 5s
// connect+read timeouts, redirects are not followed. Returns the response
// body reader, headers, and any icy-metaint framing interval.
func openHTTP(rawURL string) (io.ReadCloser, http.Header, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, 0, newErr(KindInvalidURI, rawURL, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, nil, 0, newErr(KindInvalidURI, rawURL, err)
	}
	req.Header.Set("Host", u.Host)
	req.Header.Set("User-Agent", "playcore/1.0")
	req.Header.Set("Icy-MetaData", "1")
	if u.User != nil {
		pass, _ := u.User.Password()
		req.SetBasicAuth(u.User.Username(), pass)
	}

	client := &http.Client{
		Timeout: httpTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Redirects are not followed by design: stream
			// endpoints publish direct URLs or SHOUTcast-style playlists.
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, nil, 0, newErr(KindHTTPResponse, rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		line := fmt.Sprintf("%s %s", resp.Proto, resp.Status)
		resp.Body.Close()
		cancel()
		return nil, nil, 0, httpStatusErr(resp.StatusCode, line)
	}

	metaint := 0
	if v := resp.Header.Get("icy-metaint"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			metaint = n
		}
	}

	return &cancelOnCloseBody{ReadCloser: resp.Body, cancel: cancel}, resp.Header, metaint, nil
}

type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnCloseBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

// readAllWithTimeout reads the whole body, used for playlist bodies that
// need to be fetched in full before recursing (x-scpls / m3u).
func readAllWithTimeout(r io.Reader) ([]byte, error) {
	br := bufio.NewReaderSize(r, 32*1024)
	return io.ReadAll(br)
}

func contentType(h http.Header) string {
	ct := h.Get("Content-Type")
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	return strings.TrimSpace(strings.ToLower(ct))
}
