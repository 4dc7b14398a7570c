// Package mp3plugin implements an input plugin over a real MP3 decoder
// (github.com/hajimehoshi/go-mp3), exercising the input layer's
// extension/MIME dispatch with a concrete, non-trivial codec.
package mp3plugin

import (
	"io"
	"os"

	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/dhowden/tag"
	"github.com/hajimehoshi/go-mp3"
)

type state struct {
	dec *mp3.Decoder
}

// Plugin decodes MPEG-1 Layer III audio. go-mp3 always produces signed
// 16-bit little-endian stereo, so every Read already matches the canonical
// format and the PCM converter treats it as a pass-through.
type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string         { return "mp3" }
func (p *Plugin) Extensions() []string { return []string{"mp3"} }
func (p *Plugin) MIMETypes() []string  { return []string{"audio/mpeg", "audio/mp3"} }

func (p *Plugin) Open(ctx *input.Context) error {
	// go-mp3 only needs an io.Reader; Seek (below) additionally requires
	// the underlying stream to support io.Seeker, which local files do and
	// remote streams do not (seeking a live stream is not meaningful).
	dec, err := mp3.NewDecoder(ctx.Reader)
	if err != nil {
		return err
	}
	ctx.Format = sampleformat.Format{Rate: dec.SampleRate(), Bits: 16, Channels: 2, Signed: true}
	ctx.Private = &state{dec: dec}
	return nil
}

func (p *Plugin) Close(ctx *input.Context) error { return nil }

func (p *Plugin) Read(ctx *input.Context, buf []byte) (int, error) {
	st := ctx.Private.(*state)
	return st.dec.Read(buf)
}

func (p *Plugin) Seek(ctx *input.Context, seconds float64) error {
	st := ctx.Private.(*state)
	frameSize := int64(ctx.Format.FrameSize())
	offset := int64(seconds*float64(ctx.Format.Rate)) * frameSize
	_, err := st.dec.Seek(offset, io.SeekStart)
	return err
}

func (p *Plugin) ReadComments(ctx *input.Context) (input.Comments, error) {
	f, err := os.Open(ctx.Filename)
	if err != nil {
		return input.Comments{}, nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return input.Comments{}, nil
	}
	c := input.Comments{}
	if v := m.Title(); v != "" {
		c["title"] = v
	}
	if v := m.Artist(); v != "" {
		c["artist"] = v
	}
	if v := m.Album(); v != "" {
		c["album"] = v
	}
	if v := m.Genre(); v != "" {
		c["genre"] = v
	}
	return c, nil
}

func (p *Plugin) Duration(ctx *input.Context) (int, error) {
	st := ctx.Private.(*state)
	if ctx.Format.SecondSize() == 0 {
		return -1, nil
	}
	return int(st.dec.Length() / int64(ctx.Format.SecondSize())), nil
}
