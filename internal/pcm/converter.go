// Package pcm implements the PCM converter (C2): given a decoder's raw
// output, produce canonical signed-16-bit little-endian stereo bytes when
// the conversion is cheap and lossless in width; otherwise pass the bytes
// through untouched.
package pcm

import "github.com/cmus-go/playcore/internal/sampleformat"

// Converter holds the decision made once per input format: which action to
// apply to every buffer the decoder produces, and the resulting output
// format.
type Converter struct {
	in     sampleformat.Format
	out    sampleformat.Format
	action action
	factor int // output bytes / input bytes
}

type action int

const (
	passThrough action = iota
	widenS8Mono
	biasU8Mono
	widenS8Stereo
	biasU8Stereo
	dupMonoS16LE
	biasU16StereoLE
	swapS16StereoBE
	swapBiasU16StereoBE
)

// New inspects a decoder's reported format and decides the conversion
// action to take. The resulting output format is equal to in if the format
// passes through untouched.
func New(in sampleformat.Format) *Converter {
	c := &Converter{in: in}

	switch {
	case in.Bits == 8 && in.Channels == 1 && in.Signed:
		c.action, c.factor = widenS8Mono, 4
	case in.Bits == 8 && in.Channels == 1 && !in.Signed:
		c.action, c.factor = biasU8Mono, 4
	case in.Bits == 8 && in.Channels == 2 && in.Signed:
		c.action, c.factor = widenS8Stereo, 2
	case in.Bits == 8 && in.Channels == 2 && !in.Signed:
		c.action, c.factor = biasU8Stereo, 2
	case in.Bits == 16 && in.Channels == 1 && in.Signed && !in.BigEndian:
		c.action, c.factor = dupMonoS16LE, 2
	case in.Bits == 16 && in.Channels == 2 && !in.Signed && !in.BigEndian:
		c.action, c.factor = biasU16StereoLE, 1
	case in.Bits == 16 && in.Channels == 2 && in.Signed && in.BigEndian:
		c.action, c.factor = swapS16StereoBE, 1
	case in.Bits == 16 && in.Channels == 2 && !in.Signed && in.BigEndian:
		c.action, c.factor = swapBiasU16StereoBE, 1
	default:
		c.action, c.factor = passThrough, 1
	}

	if c.action == passThrough {
		c.out = in
	} else {
		c.out = sampleformat.Format{Rate: in.Rate, Bits: 16, Channels: 2, Signed: true, BigEndian: false}
	}
	return c
}

// OutFormat returns the format this converter produces.
func (c *Converter) OutFormat() sampleformat.Format { return c.out }

// Factor returns output bytes / input bytes for this conversion.
func (c *Converter) Factor() int { return c.factor }

// ScratchLen returns how many input bytes the decoder should be asked to
// fill into a scratch buffer for a requested number of output bytes.
func (c *Converter) ScratchLen(requestedOutBytes int) int {
	return requestedOutBytes / c.factor
}

// InPlace reports whether the conversion can be done directly on the
// destination buffer (no expansion needed).
func (c *Converter) InPlace() bool {
	return c.factor == 1
}

// ConvertInPlace performs a factor-1 conversion directly on buf, which
// holds n raw decoder bytes. Only valid when InPlace() is true.
func (c *Converter) ConvertInPlace(buf []byte, n int) {
	switch c.action {
	case biasU16StereoLE:
		for i := 0; i+1 < n; i += 2 {
			v := uint16(buf[i]) | uint16(buf[i+1])<<8
			s := int16(int32(v) - 32768)
			buf[i] = byte(s)
			buf[i+1] = byte(uint16(s) >> 8)
		}
	case swapS16StereoBE:
		for i := 0; i+1 < n; i += 2 {
			buf[i], buf[i+1] = buf[i+1], buf[i]
		}
	case swapBiasU16StereoBE:
		for i := 0; i+1 < n; i += 2 {
			v := uint16(buf[i])<<8 | uint16(buf[i+1])
			s := int16(int32(v) - 32768)
			buf[i] = byte(s)
			buf[i+1] = byte(uint16(s) >> 8)
		}
	case passThrough:
		// nothing to do
	}
}

// ConvertExpand reads n raw decoder bytes from src and expands them into
// dst, which must be at least n*factor bytes. Returns the number of output
// bytes written.
func (c *Converter) ConvertExpand(dst, src []byte, n int) int {
	switch c.action {
	case widenS8Mono:
		out := 0
		for i := 0; i < n; i++ {
			s16 := int16(int8(src[i])) << 8
			lo, hi := byte(s16), byte(uint16(s16)>>8)
			// duplicate to stereo: L and R identical
			dst[out+0], dst[out+1] = lo, hi
			dst[out+2], dst[out+3] = lo, hi
			out += 4
		}
		return out
	case biasU8Mono:
		out := 0
		for i := 0; i < n; i++ {
			s16 := int16(int32(src[i])<<8 - 32768)
			lo, hi := byte(s16), byte(uint16(s16)>>8)
			dst[out+0], dst[out+1] = lo, hi
			dst[out+2], dst[out+3] = lo, hi
			out += 4
		}
		return out
	case widenS8Stereo:
		out := 0
		for i := 0; i < n; i++ {
			s16 := int16(int8(src[i])) << 8
			dst[out+0], dst[out+1] = byte(s16), byte(uint16(s16)>>8)
			out += 2
		}
		return out
	case biasU8Stereo:
		out := 0
		for i := 0; i < n; i++ {
			s16 := int16(int32(src[i])<<8 - 32768)
			dst[out+0], dst[out+1] = byte(s16), byte(uint16(s16)>>8)
			out += 2
		}
		return out
	case dupMonoS16LE:
		out := 0
		for i := 0; i+1 < n; i += 2 {
			lo, hi := src[i], src[i+1]
			dst[out+0], dst[out+1] = lo, hi
			dst[out+2], dst[out+3] = lo, hi
			out += 4
		}
		return out
	default:
		// pass-through with factor 1: identical bytes out
		copy(dst[:n], src[:n])
		return n
	}
}

// Convert is the single entry point used by the producer loop: given n raw
// decoder bytes in src, writes the converted PCM to dst (which must be
// large enough — n*Factor()) and returns the number of bytes written.
func (c *Converter) Convert(dst, src []byte, n int) int {
	if c.InPlace() {
		copy(dst[:n], src[:n])
		c.ConvertInPlace(dst, n)
		return n
	}
	return c.ConvertExpand(dst, src, n)
}
