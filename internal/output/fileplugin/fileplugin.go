// Package fileplugin implements the default/test output backend: a raw-PCM
// sink written straight to a file, used by fixtures and by hosts with no
// real audio device configured.
package fileplugin

import (
	"errors"
	"os"
	"sync"

	"github.com/cmus-go/playcore/internal/output"
	"github.com/cmus-go/playcore/internal/sampleformat"
)

// Plugin writes every Write() call's bytes verbatim to an underlying file,
// simulating an unbounded-buffer device (BufferSpace always reports 1 MiB
// of room).
type Plugin struct {
	mu   sync.Mutex
	path string
	f    *os.File
	sf   sampleformat.Format
	open bool
}

// New creates a file-sink plugin writing raw PCM to path.
func New(path string) *Plugin {
	return &Plugin{path: path}
}

func (p *Plugin) Name() string  { return "file" }
func (p *Plugin) Priority() int { return 0 } // lowest priority: never auto-selected over a real device

func (p *Plugin) Init() error { return nil }
func (p *Plugin) Exit() error { return nil }

func (p *Plugin) Open(sf sampleformat.Format) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.Create(p.path)
	if err != nil {
		return err
	}
	p.f = f
	p.sf = sf
	p.open = true
	return nil
}

func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return nil
	}
	err := p.f.Close()
	p.f = nil
	p.open = false
	return err
}

func (p *Plugin) Drop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return nil
	}
	if err := p.f.Truncate(0); err != nil {
		return err
	}
	_, err := p.f.Seek(0, 0)
	return err
}

func (p *Plugin) Write(buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return 0, errors.New("fileplugin: not open")
	}
	return p.f.Write(buf)
}

// BufferSpace reports 1 MiB of room, more than any clamp window;
// output.Device.BufferSpace trims it with ClampBufferSpace to the
// 1024-frame ceiling.
func (p *Plugin) BufferSpace() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return 0, errors.New("fileplugin: not open")
	}
	return 1 << 20, nil
}

func (p *Plugin) Pause() error   { return nil }
func (p *Plugin) Unpause() error { return nil }

func (p *Plugin) SetOption(key, value string) error {
	return output.ErrUnsupportedOption{Key: key}
}

func (p *Plugin) GetOption(key string) (string, error) {
	return "", output.ErrUnsupportedOption{Key: key}
}
