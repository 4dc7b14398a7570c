package player

import (
	"sync"
	"time"

	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/output"
	"github.com/cmus-go/playcore/internal/pcm"
	"github.com/cmus-go/playcore/internal/ring"
	"github.com/cmus-go/playcore/internal/sampleformat"
)

// pollInterval is the producer/consumer sleep when the ring is momentarily
// full or empty.
const pollInterval = 50 * time.Millisecond

// TrackSource supplies the next/previous filename to play, decoupling the
// player from any particular library implementation.
type TrackSource interface {
	Next() (filename string, ok bool)
	Prev() (filename string, ok bool)
}

// Player orchestrates C1-C7 into the two-thread pipeline:
// a producer decode loop and a consumer write loop, coordinated through a
// ring buffer and mutated only through its exported command methods.
type Player struct {
	opener *input.Opener
	device *output.Device
	tracks TrackSource

	box *stateBox

	mu        sync.Mutex // guards everything below; never held during I/O
	ring      *ring.Buffer
	source    *input.Source
	converter *pcm.Converter
	status    Status

	quit chan struct{}
	wg   sync.WaitGroup
}

// New creates a Player. bufferSeconds sizes the initial ring; tracks may be
// nil if next/prev-on-EOF is not needed (e.g. single-file playback/tests).
func New(opener *input.Opener, device *output.Device, tracks TrackSource, sf sampleformat.Format, bufferSeconds int) *Player {
	p := &Player{
		opener: opener,
		device: device,
		tracks: tracks,
		box:    &stateBox{},
		ring:   newRingForSeconds(sf, bufferSeconds),
		quit:   make(chan struct{}),
	}
	p.box.state.Format = sf
	p.wg.Add(2)
	go p.produce()
	go p.consume()
	return p
}

func newRingForSeconds(sf sampleformat.Format, seconds int) *ring.Buffer {
	total := sf.SecondSize() * seconds
	if total <= 0 {
		total = ring.DefaultChunkCapacity * 4
	}
	n := total / ring.DefaultChunkCapacity
	if n < 2 {
		n = 2
	}
	return ring.New(n, ring.DefaultChunkCapacity, ring.LowWater)
}

// Snapshot returns the current user-visible state.
func (p *Player) Snapshot() State { return p.box.snapshot() }

// Close stops both threads and releases the current input/output.
func (p *Player) Close() {
	close(p.quit)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source != nil {
		p.source.Close()
	}
	p.device.Close()
}

// Play opens filename (if non-empty; otherwise resumes the current input)
// and transitions to Playing.
func (p *Player) Play(filename string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if filename != "" {
		if err := p.openLocked(filename); err != nil {
			return err
		}
	}
	p.status = Playing
	p.box.set(func(s *State) dirtyFlags {
		s.Status = Playing
		if filename != "" {
			s.Filename = filename
			s.Position = 0
		}
		return dirtyStatus | dirtyFilename | dirtyPosition
	})
	p.device.Unpause()
	return nil
}

func (p *Player) openLocked(filename string) error {
	if p.source != nil {
		p.source.Close()
		p.source = nil
	}
	src, err := p.opener.Open(filename)
	if err != nil {
		return err
	}
	p.source = src
	p.converter = pcm.New(src.Format())
	p.ring.Reset()
	return nil
}

// Pause toggles PLAYING <-> PAUSED.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.status {
	case Playing:
		p.status = Paused
		p.device.Pause()
	case Paused:
		p.status = Playing
		p.device.Unpause()
	default:
		return
	}
	st := p.status
	p.box.set(func(s *State) dirtyFlags { s.Status = st; return dirtyStatus })
}

// Stop halts playback, drops the output, closes the input, and resets the
// ring.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = Stopped
	p.device.Drop()
	if p.source != nil {
		p.source.Close()
		p.source = nil
	}
	p.ring.Reset()
	p.box.set(func(s *State) dirtyFlags { s.Status = Stopped; return dirtyStatus })
}

// Seek moves the current input to an absolute position in seconds,
// resetting the ring and dropping any buffered output.
func (p *Player) Seek(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == nil {
		return nil
	}
	if err := p.source.Seek(seconds); err != nil {
		return err
	}
	p.ring.Reset()
	p.device.Drop()
	pos := int(seconds)
	p.box.set(func(s *State) dirtyFlags { s.Position = pos; return dirtyPosition })
	return nil
}

// Next/Prev consult the TrackSource, close the current input, and open the
// new one, preserving the current status.
func (p *Player) Next() error { return p.switchTrack(true) }
func (p *Player) Prev() error { return p.switchTrack(false) }

func (p *Player) switchTrack(forward bool) error {
	if p.tracks == nil {
		p.Stop()
		return nil
	}
	var filename string
	var ok bool
	if forward {
		filename, ok = p.tracks.Next()
	} else {
		filename, ok = p.tracks.Prev()
	}
	if !ok {
		p.Stop()
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.openLocked(filename); err != nil {
		return err
	}
	p.box.set(func(s *State) dirtyFlags {
		s.Filename = filename
		s.Position = 0
		return dirtyFilename | dirtyPosition
	})
	return nil
}

// SetVolume forwards to the output device's mixer, in the 0..100 scale.
func (p *Player) SetVolume(left, right int) error {
	if err := p.device.SetVolume(left, right); err != nil {
		return err
	}
	p.box.set(func(s *State) dirtyFlags {
		s.VolumeLeft, s.VolumeRight = left, right
		return dirtyVolume
	})
	return nil
}

// SetBufferSeconds resizes the ring. Must be called while stopped (spec
// : "set_buffer_seconds(n) | resize ring (must be stopped)").
func (p *Player) SetBufferSeconds(seconds int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != Stopped {
		return false
	}
	sf := p.box.snapshot().Format
	p.ring = newRingForSeconds(sf, seconds)
	return true
}
