package tagfile

import (
	"unicode/utf8"

	"github.com/cruisechaser/havok_browser/readat"

	"github.com/pkg/errors"
)

type stream struct {
	r *readat.Reader
	// string table, entry 1 is the null string
	strings []string
}

func newStream(buf []byte) *stream {
	return &stream{
		r:       readat.NewReader(buf, 0),
		strings: []string{"", ""},
	}
}

// readInt reads a sign-magnitude varint: bit 0 is the sign, bits 1-6 the low
// magnitude bits, bit 7 continues with 7 more bits per byte.
func (s *stream) readInt() (int, error) {
	start := s.r.Offset()
	b := s.r.U8()
	negative := b&1 != 0
	val := uint64(b>>1) & 0x3f

	for shift := uint(6); b&0x80 != 0; shift += 7 {
		if shift > 62 {
			return 0, errors.Wrapf(ErrFormat, "varint at 0x%x is too long", start)
		}
		b = s.r.U8()
		// only bit 62 is left for the magnitude
		if shift == 62 && b&0x7e != 0 {
			return 0, errors.Wrapf(ErrFormat, "varint at 0x%x overflows", start)
		}
		val |= uint64(b&0x7f) << shift
	}

	if negative {
		return -int(val), nil
	}
	return int(val), nil
}

func (s *stream) readNullableString() (string, bool, error) {
	start := s.r.Offset()
	n, err := s.readInt()
	if err != nil {
		return "", false, err
	}
	if n <= 0 {
		if -n >= len(s.strings) {
			return "", false, errors.Wrapf(ErrFormat, "string index %d at 0x%x out of table (%d)", -n, start, len(s.strings))
		}
		return s.strings[-n], -n != 1, nil
	}

	raw := s.r.Bytes(n)
	if !utf8.Valid(raw) {
		return "", false, errors.Wrapf(ErrFormat, "string at 0x%x is not utf-8", start)
	}
	str := string(raw)
	s.strings = append(s.strings, str)
	return str, true, nil
}

func (s *stream) readString() (string, error) {
	start := s.r.Offset()
	str, ok, err := s.readNullableString()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.Wrapf(ErrFormat, "unexpected null string at 0x%x", start)
	}
	return str, nil
}

func (s *stream) readBitfield(length int) Bitfield {
	return NewBitfield(length, s.r.Bytes(BitfieldSize(length)))
}
