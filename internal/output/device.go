package output

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cmus-go/playcore/internal/sampleformat"
)

// Device owns exactly one output plugin plus an optional mixer, enforcing
// the state machine and format-change barrier.
type Device struct {
	mu      sync.Mutex
	plugins map[string]Plugin
	mixers  map[string]Mixer

	active      Plugin
	activeMixer Mixer
	state       State
	format      sampleformat.Format
	mixerMax    int
}

// NewDevice creates an empty Device. Register plugins with Register before
// calling SelectDefault or Select.
func NewDevice() *Device {
	return &Device{
		plugins: make(map[string]Plugin),
		mixers:  make(map[string]Mixer),
		state:   Closed,
	}
}

// Register adds a plugin (and optional paired mixer) to the device's
// catalogue. It does not initialise or select it.
func (d *Device) Register(p Plugin, m Mixer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.plugins[p.Name()] = p
	if m != nil {
		d.mixers[p.Name()] = m
	}
}

// SelectDefault auto-selects the initialised plugin of highest priority
// when the caller has not chosen one explicitly.
func (d *Device) SelectDefault() error {
	d.mu.Lock()
	names := make([]string, 0, len(d.plugins))
	for name := range d.plugins {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return d.plugins[names[i]].Priority() > d.plugins[names[j]].Priority()
	})
	d.mu.Unlock()

	var lastErr error
	for _, name := range names {
		if err := d.Select(name); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = errors.New("output: no plugins registered")
	}
	return lastErr
}

// Select switches the active plugin by name, closing the previous plugin
// (and its mixer) before opening the new one.
func (d *Device) Select(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.plugins[name]
	if !ok {
		return fmt.Errorf("output: unknown plugin %q", name)
	}

	if d.active != nil {
		if d.state != Closed {
			d.active.Close()
		}
		if d.activeMixer != nil {
			d.activeMixer.Close()
		}
	}

	if err := p.Init(); err != nil {
		return fmt.Errorf("output: init %q: %w", name, err)
	}

	d.active = p
	d.state = Closed
	d.activeMixer = nil
	d.mixerMax = 0

	if m, ok := d.mixers[name]; ok {
		max, err := m.Open()
		if err == nil {
			d.activeMixer = m
			d.mixerMax = max
		}
	}

	return nil
}

// ActiveName returns the name of the currently selected plugin, or "".
func (d *Device) ActiveName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return ""
	}
	return d.active.Name()
}

// State returns the device's current state-machine state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// EnsureFormat compares the format about to be written against the format
// the device is currently opened with. If they differ, it closes and
// reopens at the new format before the caller writes.
func (d *Device) EnsureFormat(sf sampleformat.Format) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil {
		return errors.New("output: no active plugin")
	}

	if d.state != Closed && d.format.Equal(sf) {
		return nil
	}

	if d.state != Closed {
		if err := d.active.Close(); err != nil {
			return err
		}
	}

	if err := d.active.Open(sf); err != nil {
		d.state = Closed
		return err
	}

	d.format = sf
	d.state = Prepared
	return nil
}

// Write writes PCM bytes to the active device. Partial writes are returned
// as-is; ErrWouldBlock surfaces the EAGAIN-equivalent state.
func (d *Device) Write(buf []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil || d.state == Closed {
		return 0, errors.New("output: device not open")
	}

	n, err := d.active.Write(buf)
	if n > 0 {
		d.state = Running
	}
	return n, err
}

// BufferSpace returns the clamped writable-byte count for the active
// plugin at the current format.
func (d *Device) BufferSpace() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil {
		return 0, errors.New("output: no active plugin")
	}
	n, err := d.active.BufferSpace()
	if err != nil {
		return 0, err
	}
	return ClampBufferSpace(n, d.format), nil
}

// Drop discards in-flight audio and resets to Prepared.
func (d *Device) Drop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil || d.state == Closed {
		return nil
	}
	if err := d.active.Drop(); err != nil {
		return err
	}
	d.state = Prepared
	return nil
}

// Pause transitions Running -> Paused. Calling it from any other state is
// tolerated as a no-op.
func (d *Device) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Running {
		return nil
	}
	if err := d.active.Pause(); err != nil {
		return err
	}
	d.state = Paused
	return nil
}

// Unpause transitions Paused -> Running.
func (d *Device) Unpause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Paused {
		return nil
	}
	if err := d.active.Unpause(); err != nil {
		return err
	}
	d.state = Running
	return nil
}

// Close tears the active plugin down entirely, back to Closed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == nil || d.state == Closed {
		return nil
	}
	err := d.active.Close()
	d.state = Closed
	return err
}

// GetVolume returns the 0..100 scaled volume from the active mixer.
func (d *Device) GetVolume() (left, right int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activeMixer == nil {
		return 0, 0, errors.New("output: no mixer")
	}
	l, r, err := d.activeMixer.GetVolume()
	if err != nil {
		return 0, 0, err
	}
	return scaleToPercent(l, d.mixerMax), scaleToPercent(r, d.mixerMax), nil
}

// SetVolume sets the 0..100 scaled volume on the active mixer, converting
// to the device-native scale with round-half-up.
func (d *Device) SetVolume(left, right int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activeMixer == nil {
		return errors.New("output: no mixer")
	}
	return d.activeMixer.SetVolume(scaleFromPercent(left, d.mixerMax), scaleFromPercent(right, d.mixerMax))
}

func scaleToPercent(native, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(native) * 100 / float64(max)))
}

func scaleFromPercent(percent, max int) int {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return int(math.Round(float64(percent) * float64(max) / 100))
}
