// Package ring implements a chunked producer/consumer ring buffer. One
// producer and one consumer exchange variable-sized byte runs in FIFO order
// without ever copying through a shared staging buffer: the mutex only ever
// serialises index and flag bookkeeping, never a memory copy of the payload.
package ring

import "sync"

// DefaultChunkCapacity is the default chunk size, ~64 KiB.
const DefaultChunkCapacity = 64 * 1024

// LowWater is the free-space threshold below which a chunk is handed off to
// the consumer even if not completely full.
const LowWater = 1024

// chunk is one fixed-capacity buffer slot plus its (low, high) indices and
// filled flag. Invariant: 0 <= low <= high <= capacity. A filled chunk is
// readable only by the consumer; otherwise only the producer may touch it.
type chunk struct {
	buf    []byte
	low    int
	high   int
	filled bool
}

func (c *chunk) reset() {
	c.low = 0
	c.high = 0
	c.filled = false
}

// Buffer is the chunked ring of N chunks plus read/write indices (both mod
// N) and one mutex.
type Buffer struct {
	mu       sync.Mutex
	chunks   []*chunk
	readIdx  int
	writeIdx int
	lowWater int
}

// New creates a ring of n chunks, each of the given capacity. lowWater <= 0
// uses LowWater.
func New(n, capacity, lowWater int) *Buffer {
	if n <= 0 {
		n = 1
	}
	if capacity <= 0 {
		capacity = DefaultChunkCapacity
	}
	if lowWater <= 0 {
		lowWater = LowWater
	}
	b := &Buffer{
		chunks:   make([]*chunk, n),
		lowWater: lowWater,
	}
	for i := range b.chunks {
		b.chunks[i] = &chunk{buf: make([]byte, capacity)}
	}
	return b
}

// CapacityChunks returns the number of chunks in the ring.
func (b *Buffer) CapacityChunks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks)
}

// GetWriteRegion returns a slice the producer may write into, and its
// length. If the chunk at the write index is filled (owned by the
// consumer), len is 0.
func (b *Buffer) GetWriteRegion() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.chunks[b.writeIdx]
	if c.filled {
		return nil
	}
	return c.buf[c.high:]
}

// CommitWrite adds n to the write chunk's high index. If the remaining free
// space after the commit falls below the low-water mark, or n == 0 with
// high > 0 (an explicit flush), the chunk is marked filled and the write
// index advances.
func (b *Buffer) CommitWrite(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.chunks[b.writeIdx]
	c.high += n

	remaining := len(c.buf) - c.high
	flush := n == 0 && c.high > 0
	if remaining < b.lowWater || flush {
		c.filled = true
		b.writeIdx = (b.writeIdx + 1) % len(b.chunks)
	}
}

// GetReadRegion returns a slice the consumer may read from, and its length.
// If the chunk at the read index is not filled, len is 0.
func (b *Buffer) GetReadRegion() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.chunks[b.readIdx]
	if !c.filled {
		return nil
	}
	return c.buf[c.low:c.high]
}

// CommitRead adds n to the read chunk's low index. When low == high the
// chunk is recycled: reset, cleared, and the read index advances — the
// chunk now belongs to the producer again.
func (b *Buffer) CommitRead(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.chunks[b.readIdx]
	c.low += n

	if c.low >= c.high {
		c.reset()
		b.readIdx = (b.readIdx + 1) % len(b.chunks)
	}
}

// Reset zeroes every chunk's flag and indices and rewinds both cursors. This
// is a producer-side operation; the caller must ensure the consumer is
// quiesced before calling it.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range b.chunks {
		c.reset()
	}
	b.readIdx = 0
	b.writeIdx = 0
}

// FilledCount returns the number of chunks currently marked filled
// (readable by the consumer).
func (b *Buffer) FilledCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, c := range b.chunks {
		if c.filled {
			n++
		}
	}
	return n
}

// FreeCount returns the number of chunks not currently filled (writable by
// the producer).
func (b *Buffer) FreeCount() int {
	return len(b.chunks) - b.FilledCount()
}

// FilledBytes returns the total number of unread payload bytes across every
// filled chunk plus the in-progress write chunk. Used by the player to
// estimate buffer-fill latency.
func (b *Buffer) FilledBytes() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0
	for i, c := range b.chunks {
		if c.filled || i == b.writeIdx {
			total += c.high - c.low
		}
	}
	return total
}
