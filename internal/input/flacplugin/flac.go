// Package flacplugin implements an input plugin over a real FLAC decoder
// (github.com/mewkiz/flac), giving the input layer a second concrete codec
// so extension/MIME-based plugin selection is meaningfully exercised.
package flacplugin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/dhowden/tag"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

type state struct {
	stream   *flac.Stream
	pending  *bytes.Buffer // leftover interleaved PCM bytes from the last decoded frame
	samples  uint64        // total samples across the stream (for duration)
}

// Plugin decodes FLAC files via mewkiz/flac, re-interleaving its per-channel
// int32 subframes into signed-16-bit little-endian PCM.
type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string         { return "flac" }
func (p *Plugin) Extensions() []string { return []string{"flac"} }
func (p *Plugin) MIMETypes() []string  { return []string{"audio/flac", "audio/x-flac"} }

func (p *Plugin) Open(ctx *input.Context) error {
	stream, err := flac.NewSeek(readSeekerOrFile(ctx))
	if err != nil {
		// Fall back to the streaming (non-seekable) API for remote sources.
		stream, err = flac.New(ctx.Reader)
		if err != nil {
			return err
		}
	}

	info := stream.Info
	ctx.Format = sampleformat.Format{
		Rate:     int(info.SampleRate),
		Bits:     16, // this plugin normalises everything to s16 on Read
		Channels: int(info.NChannels),
		Signed:   true,
	}
	ctx.Private = &state{stream: stream, pending: new(bytes.Buffer), samples: info.NSamples}
	return nil
}

func readSeekerOrFile(ctx *input.Context) io.ReadSeeker {
	if rs, ok := ctx.Reader.(io.ReadSeeker); ok {
		return rs
	}
	if f, err := os.Open(ctx.Filename); err == nil {
		ctx.Reader = f
		return f
	}
	return nil
}

func (p *Plugin) Close(ctx *input.Context) error {
	st := ctx.Private.(*state)
	return st.stream.Close()
}

func (p *Plugin) Read(ctx *input.Context, buf []byte) (int, error) {
	st := ctx.Private.(*state)

	if st.pending.Len() == 0 {
		fr, err := st.stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, io.EOF
			}
			return 0, err
		}
		encodeFrameToS16LE(fr, st.pending)
	}

	n, _ := st.pending.Read(buf)
	return n, nil
}

// encodeFrameToS16LE writes fr's samples as interleaved signed-16 LE PCM,
// clamping each subframe's bit depth down to 16 bits by arithmetic shift
// (decoders beyond 16-bit source width are out of this spec's scope; the
// core only promises canonical s16le-stereo output).
func encodeFrameToS16LE(fr *frame.Frame, out *bytes.Buffer) {
	bps := fr.BitsPerSample
	shift := uint(0)
	if bps > 16 {
		shift = uint(bps - 16)
	}

	nsamples := fr.Subframes[0].NSamples
	for i := 0; i < nsamples; i++ {
		for ch := 0; ch < len(fr.Subframes); ch++ {
			v := fr.Subframes[ch].Samples[i] >> shift
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], uint16(int16(v)))
			out.Write(b[:])
		}
	}
}

func (p *Plugin) Seek(ctx *input.Context, seconds float64) error {
	st := ctx.Private.(*state)
	sampleNum := uint64(seconds * float64(ctx.Format.Rate))
	_, err := st.stream.Seek(sampleNum)
	st.pending.Reset()
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
	return c, nil
}

func (p *Plugin) Duration(ctx *input.Context) (int, error) {
	st := ctx.Private.(*state)
	if ctx.Format.Rate == 0 {
		return -1, nil
	}
	return int(st.samples / uint64(ctx.Format.Rate)), nil
}
