// Package sampleformat describes the 5-tuple PCM format that flows between
// input plugins, the PCM converter, and output plugins.
package sampleformat

import "fmt"

// Format is the sample format descriptor. Two formats compare
// equal iff every field matches.
type Format struct {
	Rate     int  // samples per second, e.g. 44100
	Bits     int  // bits per sample: 8, 16, 24, 32
	Channels int  // channel count, 1..N
	Signed   bool // signed vs unsigned
	BigEndian bool // big-endian vs little-endian
}

// CD is the canonical signed-16-bit little-endian stereo format that the PCM
// converter tries to produce whenever feasible.
var CD = Format{Rate: 44100, Bits: 16, Channels: 2, Signed: true, BigEndian: false}

// Equal reports whether f and o describe the same format.
func (f Format) Equal(o Format) bool {
	return f == o
}

// FrameSize returns bits/8 * channels, the byte size of one frame (one
// sample per channel).
func (f Format) FrameSize() int {
	return (f.Bits / 8) * f.Channels
}

// SecondSize returns rate * FrameSize, the byte size of one second of audio
// at this format.
func (f Format) SecondSize() int {
	return f.Rate * f.FrameSize()
}

// Valid reports whether the format's fields describe a usable PCM layout.
func (f Format) Valid() bool {
	if f.Rate <= 0 || f.Channels <= 0 {
		return false
	}
	switch f.Bits {
	case 8, 16, 24, 32:
	default:
		return false
	}
	return true
}

func (f Format) String() string {
	sign := "u"
	if f.Signed {
		sign = "s"
	}
	end := "le"
	if f.BigEndian {
		end = "be"
	}
	return fmt.Sprintf("%dHz/%d%s%s/%dch", f.Rate, f.Bits, sign, end, f.Channels)
}

// BytesToSeconds converts a byte count at this format to whole seconds,
// truncating any partial second.
func (f Format) BytesToSeconds(n int64) int {
	ss := f.SecondSize()
	if ss <= 0 {
		return 0
	}
	return int(n / int64(ss))
}
