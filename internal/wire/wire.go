package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version    byte = 1
	kindRecord byte = 1

	hdrLen = 4 + 1 + 1 + 8 + 8 + 4
)

var (
	ErrCorrupt = errors.New("cachepolicy: corrupt record")
	magic4     = [...]byte{'C', 'P', 'O', 'L'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Record: magic(4) | ver(1) | kind(1=record) | stored(i64 be, unix nanos) | ttl(i64 be, nanos) | vlen(u32 be) | payload(vlen)
func EncodeRecord(stored time.Time, ttl time.Duration, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindRecord)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(stored.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint64(u8[:], uint64(ttl))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeRecord returns a payload slice aliasing b. An empty payload decodes
// as a non-nil empty slice.
func DecodeRecord(b []byte) (stored time.Time, ttl time.Duration, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version || b[5] != kindRecord {
		return time.Time{}, 0, nil, ErrCorrupt
	}

	off := 6

	stored = time.Unix(0, int64(binary.BigEndian.Uint64(b[off:off+8])))
	off += 8

	ttl = time.Duration(int64(binary.BigEndian.Uint64(b[off : off+8])))
	off += 8
	if ttl < 0 {
		return time.Time{}, 0, nil, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off { // strict: no short reads, no trailing bytes
		return time.Time{}, 0, nil, ErrCorrupt
	}

	return stored, ttl, b[off : off+vlen : off+vlen], nil
}
