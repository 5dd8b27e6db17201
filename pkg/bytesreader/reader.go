// Package bytesreader implements the cursor-over-a-buffer primitive that
// every other decoder in this engine is built on (spec section 4.1).
package bytesreader

import (
	"encoding/binary"
	"fmt"

	"chain-lens/internal/coreerr"
)

// Reader holds an immutable buffer and a monotonically advancing cursor.
// It never mutates the underlying buffer and never seeks backward.
type Reader struct {
	buf    []byte
	pos    int
	errTag string // coreerr code used for short-read/non-canonical failures
}

// New wraps buf for sequential decoding. errTag selects which coreerr
// code (INVALID_TX, INVALID_BLOCK, INVALID_UNDO, ...) short reads are
// tagged with, since the same cursor shape backs every decoder.
func New(buf []byte, errTag string) *Reader {
	return &Reader{buf: buf, errTag: errTag}
}

func (r *Reader) shortRead(need int) error {
	return coreerr.New(r.errTag, fmt.Sprintf("need %d bytes, have %d remaining", need, r.Remaining()))
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Bytes returns the full underlying buffer (read-only use expected).
func (r *Reader) Bytes() []byte {
	return r.buf
}

// Peek returns the next n bytes without advancing the cursor.
func (r *Reader) Peek(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, r.shortRead(n)
	}
	return r.buf[r.pos : r.pos+n], nil
}

// ReadBytes consumes and returns the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.pos += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64LE reads a little-endian uint64.
func (r *Reader) ReadU64LE() (uint64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI32LE reads a little-endian signed int32.
func (r *Reader) ReadI32LE() (int32, error) {
	v, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadVarInt reads a Bitcoin CompactSize integer: 0x00-0xFC direct,
// 0xFD+u16, 0xFE+u32, 0xFF+u64. Non-canonical encodings (a prefix byte
// followed by a value that fits in a smaller form) are rejected.
func (r *Reader) ReadVarInt() (uint64, error) {
	prefix, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	switch prefix {
	case 0xfd:
		v, err := r.ReadU16LE()
		if err != nil {
			return 0, err
		}
		if v < 0xfd {
			return 0, coreerr.New(r.errTag, "non-canonical varint (0xfd prefix for small value)")
		}
		return uint64(v), nil
	case 0xfe:
		v, err := r.ReadU32LE()
		if err != nil {
			return 0, err
		}
		if v <= 0xffff {
			return 0, coreerr.New(r.errTag, "non-canonical varint (0xfe prefix for small value)")
		}
		return uint64(v), nil
	case 0xff:
		v, err := r.ReadU64LE()
		if err != nil {
			return 0, err
		}
		if v <= 0xffffffff {
			return 0, coreerr.New(r.errTag, "non-canonical varint (0xff prefix for small value)")
		}
		return v, nil
	default:
		return uint64(prefix), nil
	}
}
