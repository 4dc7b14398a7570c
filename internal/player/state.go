// Package player implements the producer/consumer orchestration thread
// (C8): a decode loop filling the ring buffer, a write loop draining it to
// the output device, and a command surface mutating playback state.
package player

import (
	"sync"

	"github.com/cmus-go/playcore/internal/sampleformat"
)

// Status is the player's top-level playback state.
type Status int

const (
	Stopped Status = iota
	Playing
	Paused
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "PLAYING"
	case Paused:
		return "PAUSED"
	default:
		return "STOPPED"
	}
}

// State is an immutable snapshot of the player's user-visible fields (spec
// : "guarded by its own mutex so the UI may snapshot it without stalling
// the audio threads").
type State struct {
	Status            Status
	Filename          string
	Position          int
	VolumeLeft        int
	VolumeRight       int
	BufferFillSamples int
	Format            sampleformat.Format
}

// stateBox guards the live state and tracks per-field dirtiness so a UI can
// poll only what changed since its last snapshot.
type stateBox struct {
	mu    sync.Mutex
	state State
	dirty dirtyFlags
}

type dirtyFlags uint8

const (
	dirtyStatus dirtyFlags = 1 << iota
	dirtyFilename
	dirtyPosition
	dirtyVolume
	dirtyBuffer
	dirtyFormat
)

func (b *stateBox) snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// snapshotDirty returns the current state and which fields changed since
// the last call to snapshotDirty, then clears the dirty mask.
func (b *stateBox) snapshotDirty() (State, dirtyFlags) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.dirty
	b.dirty = 0
	return b.state, d
}

func (b *stateBox) set(fn func(*State) dirtyFlags) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dirty |= fn(&b.state)
}
