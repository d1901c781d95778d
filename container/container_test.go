package container

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/cruisechaser/havok_browser/hkx/tagfile"

	"github.com/pkg/errors"
)

func le(values ...interface{}) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func testPap(names ...string) []byte {
	head := le(uint32(PapMagic), int16(0), int16(0), int16(len(names)), int16(0), int16(0), int16(0), int16(0))
	table := []byte{}
	for i, name := range names {
		var field [PapAnimationNameSize]byte
		copy(field[:], name)
		table = append(table, le(field, int16(7), int32(i), int16(-1))...)
	}
	havok := le(uint64(tagfile.Magic), uint32(1))
	params := []byte("params")

	havokOffset := int32(PapHeaderSize + len(table))
	paramsOffset := havokOffset + int32(len(havok))

	buf := append(head, le(havokOffset, paramsOffset)...)
	buf = append(buf, table...)
	buf = append(buf, havok...)
	return append(buf, params...)
}

func TestReadPap(t *testing.T) {
	buf := testPap("cbbm_id0", "idle")
	if len(buf) != PapHeaderSize+2*PapAnimationSize+12+6 {
		t.Fatalf("test pap has %d bytes", len(buf))
	}

	f, err := Open(buf)
	if err != nil {
		t.Fatal(err)
	}
	if f.Kind != KindPap || f.Pap == nil {
		t.Fatalf("Open kind %v", f.Kind)
	}
	for i, want := range []string{"cbbm_id0", "idle"} {
		a := f.Pap.Animations[i]
		if a.Name != want || a.Index != int32(i) || a.Unknown0 != 7 || a.Unknown1 != -1 {
			t.Errorf("animation %d = %+v; expected name %q index %d", i, a, want, i)
		}
	}
	if binary.LittleEndian.Uint64(f.Havok) != tagfile.Magic || len(f.Havok) != 12 {
		t.Errorf("havok slice % x", f.Havok)
	}
	if string(f.Pap.Parameters) != "params" {
		t.Errorf("parameters %q", f.Pap.Parameters)
	}
}

func TestReadSklb(t *testing.T) {
	havok := le(uint64(tagfile.Magic))
	for _, test := range []struct {
		name   string
		header []byte
	}{
		{"0021", le(uint32(SklbMagic), uint32(SklbVersion0021), uint16(3), uint16(12))},
		{"0031", le(uint32(SklbMagic), uint32(SklbVersion0031), uint32(3), uint32(16))},
	} {
		buf := append(append([]byte{}, test.header...), havok...)
		f, err := Open(buf)
		if err != nil {
			t.Errorf("Open(sklb %s): %v", test.name, err)
			continue
		}
		if f.Kind != KindSklb || f.Sklb.Unknown0 != 3 || !bytes.Equal(f.Havok, havok) {
			t.Errorf("sklb %s: kind %v, %+v", test.name, f.Kind, f.Sklb)
		}
	}

	if _, err := ReadSklb(le(uint32(SklbMagic), uint32(0x31313030), uint32(0))); err == nil {
		t.Errorf("unknown sklb version accepted")
	}
	if _, err := ReadSklb(le(uint32(SklbMagic), uint32(SklbVersion0031), uint32(0), uint32(99))); err == nil {
		t.Errorf("havok offset past the end accepted")
	}
}

func TestOpen(t *testing.T) {
	bare := le(uint64(tagfile.Magic), uint32(0))
	if f, err := Open(bare); err != nil || f.Kind != KindTagfile || !bytes.Equal(f.Havok, bare) {
		t.Errorf("Open(tagfile) = %+v, %v", f, err)
	}

	for _, buf := range [][]byte{nil, []byte("RIFF0000"), le(uint32(PapMagic), uint16(0))} {
		if _, err := Open(buf); !errors.Is(err, ErrUnknownContainer) {
			t.Errorf("Open(% x) error %v; expected ErrUnknownContainer", buf, err)
		}
	}
}
