package tagfile

import (
	"testing"

	"github.com/pkg/errors"
)

func TestVarIntRoundTrip(t *testing.T) {
	for _, v := range []int{
		0, 1, -1, 31, -31, 63, -63, 64, -64, 127, 8191, 8192, -8192,
		1 << 20, -(1 << 20), 1<<31 - 1, -(1 << 31), 1 << 40, -(1 << 50),
	} {
		w := &Writer{strings: make(map[string]int), nstr: 2}
		w.Int(v)
		s := newStream(w.Bytes())

		got, err := s.readInt()
		if err != nil {
			t.Errorf("readInt(encode(%d)) error: %v", v, err)
			continue
		}
		if got != v {
			t.Errorf("readInt(encode(%d))=%d; expected %d", v, got, v)
		}
		if rem := s.r.Remaining(); rem != 0 {
			t.Errorf("readInt(encode(%d)) left %d bytes", v, rem)
		}
	}
}

func TestVarIntLayout(t *testing.T) {
	for _, test := range []struct {
		in       []byte
		expected int
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x02}, 1},
		{[]byte{0x03}, -1},
		{[]byte{0x7e}, 63},
		{[]byte{0x80, 0x01}, 64},
		{[]byte{0x81, 0x01}, -64},
		{[]byte{0xfe, 0x7f}, 8191},
	} {
		got, err := newStream(test.in).readInt()
		if err != nil {
			t.Errorf("readInt(%x) error: %v", test.in, err)
		} else if got != test.expected {
			t.Errorf("readInt(%x)=%d; expected %d", test.in, got, test.expected)
		}
	}
}

func TestVarIntTooLong(t *testing.T) {
	buf := make([]byte, 12)
	for i := range buf {
		buf[i] = 0xff
	}
	if _, err := newStream(buf).readInt(); !errors.Is(err, ErrFormat) {
		t.Errorf("readInt(overlong)=%v; expected ErrFormat", err)
	}
}

func TestVarIntLastByte(t *testing.T) {
	// nine continuation bytes carry shifts 0..55, the tenth lands at shift 62
	varint := func(last byte) []byte {
		buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}
		return append(buf, last)
	}

	got, err := newStream(varint(0x01)).readInt()
	if err != nil || got != 1<<62 {
		t.Errorf("readInt(%x)=%d, %v; expected %d", varint(0x01), got, err, 1<<62)
	}
	for _, last := range []byte{0x02, 0x04, 0x40, 0x7f} {
		if _, err := newStream(varint(last)).readInt(); !errors.Is(err, ErrFormat) {
			t.Errorf("readInt(%x)=%v; expected ErrFormat", varint(last), err)
		}
	}
}

func TestStringTable(t *testing.T) {
	w := &Writer{strings: make(map[string]int), nstr: 2}
	input := []string{"hkaSkeleton", "bones", "hkaSkeleton", "", "bones", "name"}
	for _, s := range input {
		w.Text(s)
	}
	encoded := w.Bytes()

	// "hkaSkeleton" is table entry 2, its repeat is encoded as varint -2
	if repeat := encoded[1+len("hkaSkeleton")+1+len("bones")]; repeat != 0x05 {
		t.Errorf("repeated string encoded as 0x%x; expected back reference 0x05", repeat)
	}

	s := newStream(encoded)
	for i, expected := range input {
		got, err := s.readString()
		if err != nil {
			t.Fatalf("readString #%d error: %v", i, err)
		}
		if got != expected {
			t.Errorf("readString #%d=%q; expected %q", i, got, expected)
		}
	}
	if len(s.strings) != 5 {
		t.Errorf("string table has %d entries; expected 5", len(s.strings))
	}
}

func TestStringErrors(t *testing.T) {
	// -1 is the null string
	if _, err := newStream([]byte{0x03}).readString(); !errors.Is(err, ErrFormat) {
		t.Errorf("readString(null)=%v; expected ErrFormat", err)
	}
	if s, ok, err := newStream([]byte{0x03}).readNullableString(); err != nil || ok || s != "" {
		t.Errorf("readNullableString(null)=(%q, %v, %v); expected (\"\", false, nil)", s, ok, err)
	}
	// -5 was never defined
	if _, err := newStream([]byte{0x0b}).readString(); !errors.Is(err, ErrFormat) {
		t.Errorf("readString(-5)=%v; expected ErrFormat", err)
	}
}

func TestBitfield(t *testing.T) {
	b := NewBitfield(10, []byte{0x05, 0x02})
	expected := []bool{true, false, true, false, false, false, false, false, false, true}
	for i, e := range expected {
		if got := b.Get(i); got != e {
			t.Errorf("Bitfield.Get(%d)=%v; expected %v", i, got, e)
		}
	}
	if b.Get(10) || b.Get(-1) {
		t.Errorf("Bitfield.Get out of range returned true")
	}
	if b.Count() != 3 {
		t.Errorf("Bitfield.Count()=%d; expected 3", b.Count())
	}
	for _, test := range []struct{ length, size int }{{0, 0}, {1, 1}, {8, 1}, {9, 2}, {16, 2}, {17, 3}} {
		if got := BitfieldSize(test.length); got != test.size {
			t.Errorf("BitfieldSize(%d)=%d; expected %d", test.length, got, test.size)
		}
	}
}

func TestNestedFields(t *testing.T) {
	base := NewDefinition("hkBaseObject", 0, nil, nil)
	ref := NewDefinition("hkReferencedObject", 0, base, []Field{
		{"memSizeAndFlags", ScalarType(KindInt)},
		{"referenceCount", ScalarType(KindInt)},
	})
	anim := NewDefinition("hkaAnimation", 1, ref, []Field{
		{"type", ScalarType(KindInt)},
		{"duration", ScalarType(KindFloat)},
		{"numberOfTransformTracks", ScalarType(KindInt)},
	})
	spline := NewDefinition("hkaSplineCompressedAnimation", 0, anim, []Field{
		{"numFrames", ScalarType(KindInt)},
	})

	if got := len(spline.NestedFields); got != 6 {
		t.Fatalf("len(NestedFields)=%d; expected 6", got)
	}
	expected := []string{"memSizeAndFlags", "referenceCount", "type", "duration", "numberOfTransformTracks", "numFrames"}
	for i, name := range expected {
		if spline.NestedFields[i].Name != name {
			t.Errorf("NestedFields[%d]=%q; expected %q", i, spline.NestedFields[i].Name, name)
		}
	}
	if !spline.IsA("hkReferencedObject") || spline.IsA("hkaSkeleton") {
		t.Errorf("IsA does not follow the parent chain")
	}
	if i := spline.FieldIndex("duration"); i != 3 {
		t.Errorf("FieldIndex(duration)=%d; expected 3", i)
	}
}

func TestFieldTypeString(t *testing.T) {
	for _, test := range []struct {
		ft       *FieldType
		expected string
	}{
		{ScalarType(KindInt), "Int"},
		{ReferenceType("hkaSkeleton"), "Reference<hkaSkeleton>"},
		{VariableArray(StructType("hkaBone")), "Struct<hkaBone>[?]"},
		{FloatTuple(12), "Float[12]"},
		{VariableArray(FloatTuple(4)), "Float[4][?]"},
	} {
		if got := test.ft.String(); got != test.expected {
			t.Errorf("FieldType.String()=%q; expected %q", got, test.expected)
		}
	}
}
