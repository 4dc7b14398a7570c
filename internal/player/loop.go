package player

import (
	"io"
	"time"

	"github.com/cmus-go/playcore/internal/input"
	"github.com/cmus-go/playcore/internal/pcm"
	"github.com/cmus-go/playcore/internal/ring"
	"github.com/cmus-go/playcore/internal/sampleformat"
)

// produce is the decode loop: read from the current input, convert to
// canonical PCM, and fill the ring.
func (p *Player) produce() {
	defer p.wg.Done()

	scratch := make([]byte, ring.DefaultChunkCapacity)

	for {
		select {
		case <-p.quit:
			return
		default:
		}

		p.mu.Lock()
		playing := p.status == Playing
		src := p.source
		conv := p.converter
		r := p.ring
		p.mu.Unlock()

		if !playing || src == nil {
			time.Sleep(pollInterval)
			continue
		}

		region := r.GetWriteRegion()
		if len(region) == 0 {
			time.Sleep(pollInterval)
			continue
		}

		n, eof := p.fillRegion(src, conv, region, scratch)
		if n > 0 {
			r.CommitWrite(n)
			p.updateBufferFill(r, conv.OutFormat())
		}
		if eof {
			// Explicit flush (commit_write(0) with high>0) is the
			// sample-format barrier: wait for the consumer to drain
			// everything already in the ring before the next track's
			// format takes effect.
			r.CommitWrite(0)
			p.waitForDrain(r)
			p.onTrackEnded()
		} else if n == 0 {
			time.Sleep(pollInterval)
		}
	}
}

// fillRegion reads and converts as much as fits in region, returning bytes
// written and whether EOF was reached.
func (p *Player) fillRegion(src *input.Source, conv *pcm.Converter, region, scratch []byte) (int, bool) {
	want := len(region)
	if conv.Factor() > 1 {
		want = conv.ScratchLen(len(region))
	}
	if want > len(scratch) {
		want = len(scratch)
	}

	n, err := src.Read(scratch[:want])
	if n <= 0 {
		return 0, err == io.EOF
	}
	written := conv.Convert(region, scratch, n)
	return written, false
}

func (p *Player) advancePosition(n int, sf sampleformat.Format) {
	secSize := sf.SecondSize()
	if secSize <= 0 {
		return
	}
	p.box.set(func(s *State) dirtyFlags {
		s.Position += n / secSize
		return dirtyPosition
	})
}

// updateBufferFill recomputes the buffer-fill sample count from the ring's
// current occupancy. Called from both the producer (after CommitWrite) and
// the consumer (after CommitRead) so the field tracks either side's change
// immediately.
func (p *Player) updateBufferFill(r *ring.Buffer, sf sampleformat.Format) {
	frameSize := sf.FrameSize()
	if frameSize <= 0 {
		return
	}
	fill := r.FilledBytes() / frameSize
	p.box.set(func(s *State) dirtyFlags {
		if s.BufferFillSamples == fill {
			return 0
		}
		s.BufferFillSamples = fill
		return dirtyBuffer
	})
}

// waitForDrain blocks the producer until the consumer has read every chunk
// already flushed to the ring, or until the player is closed. This keeps a
// format/converter swap from landing on top of still-unplayed audio from
// the outgoing track.
func (p *Player) waitForDrain(r *ring.Buffer) {
	for r.FilledCount() > 0 {
		select {
		case <-p.quit:
			return
		default:
		}
		time.Sleep(pollInterval)
	}
}

// onTrackEnded runs when the decode loop hits EOF: the player asks for the
// next track; success re-opens in place, failure stops.
func (p *Player) onTrackEnded() {
	if err := p.Next(); err != nil {
		p.Stop()
	}
}

// consume is the write loop: drain the ring into the output device,
// renegotiating format on change.
func (p *Player) consume() {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		default:
		}

		p.mu.Lock()
		r := p.ring
		sf := p.box.snapshot().Format
		if p.converter != nil {
			sf = p.converter.OutFormat()
		}
		stopped := p.status == Stopped
		p.mu.Unlock()

		if stopped {
			time.Sleep(pollInterval)
			continue
		}

		region := r.GetReadRegion()
		if len(region) == 0 {
			time.Sleep(pollInterval)
			continue
		}

		if err := p.device.EnsureFormat(sf); err != nil {
			time.Sleep(pollInterval)
			continue
		}

		n, err := p.device.Write(region)
		if n > 0 {
			r.CommitRead(n)
			p.advancePosition(n, sf)
			p.updateBufferFill(r, sf)
		}
		if err != nil {
			time.Sleep(pollInterval)
		}
	}
}
