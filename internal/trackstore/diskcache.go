package trackstore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"sync"
)

// maxInsertQueue bounds the in-memory insert queue before it must be
// flushed and merged into the on-disk index.
const maxInsertQueue = 128

// cachedEntry is the decoded payload for one key: (mtime, duration,
// N×(key\0value\0)), all integers big-endian.
type cachedEntry struct {
	Mtime    int64
	Duration int
	Comments map[string]string
}

// indexRecord mirrors one record in the .idx file: three big-endian u32
// fields followed by KeySize bytes of key.
type indexRecord struct {
	DataPos  uint32
	DataSize uint32
	KeySize  uint32
	Key      string
}

// DiskCache is the persistent key-value store: a sorted .idx
// (rebuildable) plus an append-only .dat, with a bounded in-memory insert
// queue merged in on Close.
type DiskCache struct {
	mu        sync.Mutex
	idxPath   string
	datPath   string
	index     []indexRecord // sorted by Key
	pending   map[string]cachedEntry
	datOffset uint32
}

// Open loads idxPath/datPath if present. Any parse failure is treated as an
// empty cache rather than an error, since the cache is purely an
// optimisation.
func Open(idxPath, datPath string) *DiskCache {
	c := &DiskCache{
		idxPath: idxPath,
		datPath: datPath,
		pending: make(map[string]cachedEntry),
	}

	raw, err := os.ReadFile(idxPath)
	if err != nil {
		return c
	}
	records, err := parseIndex(raw)
	if err != nil {
		return c
	}
	c.index = records

	if info, err := os.Stat(datPath); err == nil {
		c.datOffset = uint32(info.Size())
	}
	return c
}

func parseIndex(raw []byte) ([]indexRecord, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("trackstore: index too short")
	}
	nr := binary.BigEndian.Uint32(raw[0:4])
	off := 4
	records := make([]indexRecord, 0, nr)
	for i := uint32(0); i < nr; i++ {
		if off+12 > len(raw) {
			return nil, fmt.Errorf("trackstore: truncated index record %d", i)
		}
		dataPos := binary.BigEndian.Uint32(raw[off : off+4])
		dataSize := binary.BigEndian.Uint32(raw[off+4 : off+8])
		keySize := binary.BigEndian.Uint32(raw[off+8 : off+12])
		off += 12
		if off+int(keySize) > len(raw) {
			return nil, fmt.Errorf("trackstore: truncated index key %d", i)
		}
		key := string(raw[off : off+int(keySize)])
		off += int(keySize)
		records = append(records, indexRecord{DataPos: dataPos, DataSize: dataSize, KeySize: keySize, Key: key})
	}
	return records, nil
}

// Lookup checks the pending insert queue first, then the sorted index,
// matching the "queries check queue then index".
func (c *DiskCache) Lookup(filename string) (cachedEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.pending[filename]; ok {
		return e, true
	}

	i := sort.Search(len(c.index), func(i int) bool { return c.index[i].Key >= filename })
	if i >= len(c.index) || c.index[i].Key != filename {
		return cachedEntry{}, false
	}
	rec := c.index[i]

	raw, err := os.ReadFile(c.datPath)
	if err != nil || int(rec.DataPos+rec.DataSize) > len(raw) {
		return cachedEntry{}, false
	}
	entry, err := decodeEntry(raw[rec.DataPos : rec.DataPos+rec.DataSize])
	if err != nil {
		return cachedEntry{}, false
	}
	return entry, true
}

func decodeEntry(buf []byte) (cachedEntry, error) {
	if len(buf) < 8 {
		return cachedEntry{}, fmt.Errorf("trackstore: entry too short")
	}
	mtime := binary.BigEndian.Uint32(buf[0:4])
	duration := binary.BigEndian.Uint32(buf[4:8])
	comments := map[string]string{}

	rest := buf[8:]
	for len(rest) > 0 {
		kv := bytes.SplitN(rest, []byte{0}, 2)
		if len(kv) != 2 {
			break
		}
		key := string(kv[0])
		rest = kv[1]
		vv := bytes.SplitN(rest, []byte{0}, 2)
		if len(vv) != 2 {
			comments[key] = string(vv[0])
			break
		}
		comments[key] = string(vv[0])
		rest = vv[1]
	}

	return cachedEntry{Mtime: int64(mtime), Duration: int(int32(duration)), Comments: comments}, nil
}

func encodeEntry(e cachedEntry) []byte {
	var buf bytes.Buffer
	var u32 [4]byte

	binary.BigEndian.PutUint32(u32[:], uint32(e.Mtime))
	buf.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], uint32(e.Duration))
	buf.Write(u32[:])

	keys := make([]string, 0, len(e.Comments))
	for k := range e.Comments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteByte(0)
		buf.WriteString(e.Comments[k])
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// Insert queues filename's metadata for persistence, flushing immediately
// once the queue reaches maxInsertQueue entries.
func (c *DiskCache) Insert(filename string, mtime int64, duration int, comments map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending[filename] = cachedEntry{Mtime: mtime, Duration: duration, Comments: comments}
	if len(c.pending) >= maxInsertQueue {
		c.flushLocked()
	}
}

// Close flushes any remaining pending entries and rewrites the index.
func (c *DiskCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked()
}

func (c *DiskCache) flushLocked() error {
	if len(c.pending) == 0 {
		return nil
	}

	datFile, err := os.OpenFile(c.datPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer datFile.Close()

	merged := make(map[string]indexRecord, len(c.index))
	for _, r := range c.index {
		merged[r.Key] = r
	}

	keys := make([]string, 0, len(c.pending))
	for k := range c.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		payload := encodeEntry(c.pending[key])
		n, err := datFile.Write(payload)
		if err != nil {
			return err
		}
		merged[key] = indexRecord{
			DataPos:  c.datOffset,
			DataSize: uint32(n),
			KeySize:  uint32(len(key)),
			Key:      key,
		}
		c.datOffset += uint32(n)
	}

	newIndex := make([]indexRecord, 0, len(merged))
	for _, r := range merged {
		newIndex = append(newIndex, r)
	}
	sort.Slice(newIndex, func(i, j int) bool { return newIndex[i].Key < newIndex[j].Key })
	c.index = newIndex
	c.pending = make(map[string]cachedEntry)

	return c.writeIndexLocked()
}

func (c *DiskCache) writeIndexLocked() error {
	var buf bytes.Buffer
	var u32 [4]byte

	binary.BigEndian.PutUint32(u32[:], uint32(len(c.index)))
	buf.Write(u32[:])

	for _, r := range c.index {
		binary.BigEndian.PutUint32(u32[:], r.DataPos)
		buf.Write(u32[:])
		binary.BigEndian.PutUint32(u32[:], r.DataSize)
		buf.Write(u32[:])
		binary.BigEndian.PutUint32(u32[:], uint32(len(r.Key)))
		buf.Write(u32[:])
		buf.WriteString(r.Key)
	}

	return os.WriteFile(c.idxPath, buf.Bytes(), 0o644)
}
