package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

var (
	// ErrOverflow is returned when a LEB128 value does not fit in 64 bits.
	ErrOverflow = errors.New("leb128: overflow")
	// ErrNonCanonical is returned for a LEB128 value with redundant trailing zero groups.
	ErrNonCanonical = errors.New("leb128: non-minimal encoding")
)

// MaxVarintLen is the longest LEB128 encoding of a uint64.
const MaxVarintLen = 10

// Reader is a bounds-checked cursor over an in-memory byte slice.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The result aliases the underlying
// slice. A request past the end fails without allocating.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, r.wrapError(io.ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadF64LE reads a little-endian IEEE 754 float64 (fixed 8 bytes).
func (r *Reader) ReadF64LE() (float64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

// ReadString reads a LEB128 length followed by that many raw bytes.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU64()
	if err != nil {
		return "", err
	}
	if n > uint64(r.Remaining()) {
		return "", r.wrapError(io.ErrUnexpectedEOF)
	}
	data, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadU64 reads an unsigned LEB128 encoded uint64. Only the minimal
// encoding of a value is accepted.
func (r *Reader) ReadU64() (uint64, error) {
	var result uint64
	var shift uint
	for i := 0; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 {
				return 0, r.wrapError(io.ErrUnexpectedEOF)
			}
			return 0, err
		}
		if shift == 63 && b > 1 {
			return 0, r.wrapError(ErrOverflow)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			if b == 0 && i > 0 {
				return 0, r.wrapError(ErrNonCanonical)
			}
			return result, nil
		}
		shift += 7
	}
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.pos, err)
}
