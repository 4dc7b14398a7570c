//go:build portaudio

// Package portaudioplugin implements a real hardware output backend over
// github.com/gordonklaus/portaudio, grounded on the same library's use for
// live audio I/O. It is build-tagged off by default so the module compiles
// without PortAudio's cgo/native dependency present.
package portaudioplugin

import (
	"errors"
	"sync"

	"github.com/cmus-go/playcore/internal/output"
	"github.com/cmus-go/playcore/internal/sampleformat"
	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Plugin streams PCM to the default system output device via PortAudio's
// blocking stream API.
type Plugin struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	sf     sampleformat.Format
	buf    []int16 // backing buffer for the blocking stream's fixed-size writes
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string  { return "portaudio" }
func (p *Plugin) Priority() int { return 10 } // preferred over the file sink whenever available

func (p *Plugin) Init() error {
	return portaudio.Initialize()
}

func (p *Plugin) Exit() error {
	return portaudio.Terminate()
}

func (p *Plugin) Open(sf sampleformat.Format) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := make([]int16, sf.Channels*framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, sf.Channels, float64(sf.Rate), framesPerBuffer, buf)
	if err != nil {
		return err
	}
	if err := stream.Start(); err != nil {
		return err
	}
	p.stream = stream
	p.sf = sf
	p.buf = buf
	return nil
}

func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	err := p.stream.Close()
	p.stream = nil
	return err
}

func (p *Plugin) Drop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	return p.stream.Abort()
}

func (p *Plugin) Write(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return 0, errors.New("portaudioplugin: not open")
	}

	// Fill p.buf one fixed-size block at a time; leftover bytes that don't
	// fill a whole block are reported unwritten so the caller retries them.
	blockBytes := len(p.buf) * 2
	written := 0
	for written+blockBytes <= len(buf) {
		decodeS16Into(buf[written:written+blockBytes], p.buf)
		if err := p.stream.Write(); err != nil {
			return written, err
		}
		written += blockBytes
	}
	return written, nil
}

func decodeS16Into(src []byte, dst []int16) {
	for i := range dst {
		dst[i] = int16(uint16(src[2*i]) | uint16(src[2*i+1])<<8)
	}
}

func (p *Plugin) BufferSpace() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return 0, errors.New("portaudioplugin: not open")
	}
	return output.ClampBufferSpace(1<<20, p.sf), nil
}

func (p *Plugin) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	return p.stream.Stop()
}

func (p *Plugin) Unpause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return nil
	}
	return p.stream.Start()
}

func (p *Plugin) SetOption(key, value string) error {
	return output.ErrUnsupportedOption{Key: key}
}

func (p *Plugin) GetOption(key string) (string, error) {
	return "", output.ErrUnsupportedOption{Key: key}
}

// Mixer fills the Mixer interface for PortAudio, which has no native volume
// API: it stores the left/right volume (0..100) and reports it back. The
// stored volume is not applied to the samples Plugin writes.
type Mixer struct {
	mu          sync.Mutex
	left, right int
}

func NewMixer() *Mixer { return &Mixer{left: 100, right: 100} }

func (m *Mixer) Open() (int, error) { return 100, nil }
func (m *Mixer) Close() error       { return nil }

func (m *Mixer) GetVolume() (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.left, m.right, nil
}

func (m *Mixer) SetVolume(left, right int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.left, m.right = left, right
	return nil
}

func (m *Mixer) SetOption(key, value string) error {
	return output.ErrUnsupportedOption{Key: key}
}

func (m *Mixer) GetOption(key string) (string, error) {
	return "", output.ErrUnsupportedOption{Key: key}
}
