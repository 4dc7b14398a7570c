// Package wavplugin implements the reference WAV decoder plugin for the
// input layer (C3). It reads a canonical PCM WAV (RIFF/WAVE, fmt chunk,
// data chunk) and exposes it through the input.Plugin vtable.
package wavplugin

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/dhowden/tag"
)

// state is the plugin-private data stashed in Context.Private.
type state struct {
	dataStart int64
	dataSize  int64
	pos       int64 // bytes consumed from the data chunk so far
}

// Plugin decodes uncompressed WAV files.
type Plugin struct{}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string          { return "wav" }
func (p *Plugin) Extensions() []string  { return []string{"wav"} }
func (p *Plugin) MIMETypes() []string   { return []string{"audio/wav", "audio/x-wav", "audio/wave"} }

type riffHeader struct {
	ChunkID   [4]byte
	ChunkSize uint32
	Format    [4]byte
}

type fmtChunk struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

func (p *Plugin) Open(ctx *input.Context) error {
	r, ok := ctx.Reader.(io.ReadSeeker)
	if !ok && !ctx.Remote {
		// Fall back to re-opening the path directly so Seek still works.
		f, err := os.Open(ctx.Filename)
		if err != nil {
			return err
		}
		ctx.Reader = f
		r = f
		ok = true
	}
	if !ok {
		// Remote streams aren't seekable; buffer the whole body so the
		// chunk walk below (and any later Seek) still works in memory.
		data, err := io.ReadAll(ctx.Reader)
		if err != nil {
			return err
		}
		br := bytes.NewReader(data)
		ctx.Reader = br
		r = br
	}

	var hdr riffHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	if string(hdr.ChunkID[:]) != "RIFF" || string(hdr.Format[:]) != "WAVE" {
		return errors.New("wav: not a RIFF/WAVE file")
	}

	var fc fmtChunk
	var dataStart, dataSize int64

	for {
		var id [4]byte
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			break
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			break
		}
		switch string(id[:]) {
		case "fmt ":
			if err := binary.Read(r, binary.LittleEndian, &fc); err != nil {
				return err
			}
			if size > 16 {
				r.Seek(int64(size-16), io.SeekCurrent)
			}
		case "data":
			pos, _ := r.Seek(0, io.SeekCurrent)
			dataStart = pos
			dataSize = int64(size)
			r.Seek(int64(size), io.SeekCurrent)
		default:
			r.Seek(int64(size), io.SeekCurrent)
		}
		if size%2 == 1 {
			r.Seek(1, io.SeekCurrent)
		}
		if dataStart != 0 {
			break
		}
	}

	if dataStart == 0 {
		return errors.New("wav: no data chunk found")
	}

	r.Seek(dataStart, io.SeekStart)

	ctx.Format = sampleformat.Format{
		Rate:      int(fc.SampleRate),
		Bits:      int(fc.BitsPerSample),
		Channels:  int(fc.NumChannels),
		Signed:    fc.BitsPerSample != 8,
		BigEndian: false,
	}
	ctx.Private = &state{dataStart: dataStart, dataSize: dataSize}
	return nil
}

func (p *Plugin) Close(ctx *input.Context) error { return nil }

func (p *Plugin) Read(ctx *input.Context, buf []byte) (int, error) {
	st := ctx.Private.(*state)
	remaining := st.dataSize - st.pos
	if remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(buf)) > remaining {
		buf = buf[:remaining]
	}
	n, err := ctx.Reader.Read(buf)
	st.pos += int64(n)
	return n, err
}

func (p *Plugin) Seek(ctx *input.Context, seconds float64) error {
	st := ctx.Private.(*state)
	r := ctx.Reader.(io.ReadSeeker)

	frameSize := int64(ctx.Format.FrameSize())
	byteOffset := int64(seconds*float64(ctx.Format.Rate)) * frameSize
	if byteOffset > st.dataSize {
		byteOffset = st.dataSize
	}
	if _, err := r.Seek(st.dataStart+byteOffset, io.SeekStart); err != nil {
		return err
	}
	st.pos = byteOffset
	return nil
}

func (p *Plugin) ReadComments(ctx *input.Context) (input.Comments, error) {
	f, err := os.Open(ctx.Filename)
	if err != nil {
		return input.Comments{}, nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// Plain WAV files rarely carry tags; absence is not an error.
		return input.Comments{}, nil
	}
	return commentsFromTag(m), nil
}

func commentsFromTag(m tag.Metadata) input.Comments {
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
	if y := m.Year(); y != 0 {
		c["date"] = strconv.Itoa(y)
	}
	if n, _ := m.Track(); n != 0 {
		c["tracknumber"] = strconv.Itoa(n)
	}
	if n, _ := m.Disc(); n != 0 {
		c["discnumber"] = strconv.Itoa(n)
	}
	return c
}

func (p *Plugin) Duration(ctx *input.Context) (int, error) {
	st := ctx.Private.(*state)
	if ctx.Format.SecondSize() == 0 {
		return -1, nil
	}
	return int(st.dataSize / int64(ctx.Format.SecondSize())), nil
}
