package readat

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Error is raised (via panic) when a read runs past the end of the buffer.
// Use Recover at the public boundary to turn it back into an error.
type Error struct {
	Offset int64
	Want   int
	Have   int
}

func (e *Error) Error() string {
	return fmt.Sprintf("short read at 0x%x: want %d bytes, have %d", e.Offset, e.Want, e.Have)
}

// Reader is a little-endian cursor over an in-memory buffer.
// Sequential reads advance the cursor, Read*At methods do not.
type Reader struct {
	source []byte
	pos    int64
}

func NewReader(source []byte, offset int64) *Reader {
	return &Reader{
		source: source,
		pos:    offset,
	}
}

func (r *Reader) Offset() int64 {
	return r.pos
}

func (r *Reader) Seek(offset int64) {
	r.pos = offset
}

func (r *Reader) Size() int64 {
	return int64(len(r.source))
}

func (r *Reader) Remaining() int64 {
	if r.pos >= int64(len(r.source)) {
		return 0
	}
	return int64(len(r.source)) - r.pos
}

// SubReader returns an independent cursor at offset, counted from the buffer start.
func (r *Reader) SubReader(offset int64) *Reader {
	return &Reader{
		source: r.source,
		pos:    offset,
	}
}

// AlignTo moves the cursor to the next multiple of unit, counted from the buffer start.
func (r *Reader) AlignTo(unit int64) {
	if unit <= 1 {
		return
	}
	r.pos = (r.pos + unit - 1) / unit * unit
}

func (r *Reader) slice(off int64, size int) []byte {
	if off < 0 || off+int64(size) > int64(len(r.source)) {
		have := int64(len(r.source)) - off
		if have < 0 {
			have = 0
		}
		panic(&Error{Offset: off, Want: size, Have: int(have)})
	}
	return r.source[off : off+int64(size)]
}

func (r *Reader) next(size int) []byte {
	b := r.slice(r.pos, size)
	r.pos += int64(size)
	return b
}

// Bytes returns a copy of the next size bytes.
func (r *Reader) Bytes(size int) []byte {
	b := make([]byte, size)
	copy(b, r.next(size))
	return b
}

func (r *Reader) U8() uint8   { return r.next(1)[0] }
func (r *Reader) U16() uint16 { return binary.LittleEndian.Uint16(r.next(2)) }
func (r *Reader) U32() uint32 { return binary.LittleEndian.Uint32(r.next(4)) }
func (r *Reader) U64() uint64 { return binary.LittleEndian.Uint64(r.next(8)) }
func (r *Reader) I32() int32  { return int32(r.U32()) }
func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

func (r *Reader) ReadU8At(off int64) uint8 { return r.slice(off, 1)[0] }
func (r *Reader) ReadU16LE(off int64) uint16 {
	return binary.LittleEndian.Uint16(r.slice(off, 2))
}
func (r *Reader) ReadI16LE(off int64) int16 { return int16(r.ReadU16LE(off)) }
func (r *Reader) ReadU32LE(off int64) uint32 {
	return binary.LittleEndian.Uint32(r.slice(off, 4))
}
func (r *Reader) ReadI32LE(off int64) int32 { return int32(r.ReadU32LE(off)) }
func (r *Reader) ReadF32LE(off int64) float32 {
	return math.Float32frombits(r.ReadU32LE(off))
}
func (r *Reader) ReadBytesAt(off int64, size int) []byte {
	return r.slice(off, size)
}

// Recover converts a panicking *Error into *err. Any other panic is re-raised.
//
//	defer readat.Recover(&err)
func Recover(err *error) {
	if r := recover(); r != nil {
		if re, ok := r.(*Error); ok {
			*err = re
			return
		}
		panic(r)
	}
}
