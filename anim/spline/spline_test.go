package spline

import (
	"bytes"
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"github.com/cruisechaser/havok_browser/anim"
	"github.com/cruisechaser/havok_browser/hkx/hkdef"
	"github.com/cruisechaser/havok_browser/hkx/tagfile"
	"github.com/cruisechaser/havok_browser/readat"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

type blob struct {
	bytes.Buffer
}

func (b *blob) put(values ...interface{}) *blob {
	for _, v := range values {
		if err := binary.Write(&b.Buffer, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	return b
}

func (b *blob) align(unit int) *blob {
	for b.Len()%unit != 0 {
		b.WriteByte(0)
	}
	return b
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func quatLength(q mgl32.Quat) float32 {
	return float32(math.Sqrt(float64(q.W*q.W + q.V.Dot(q.V))))
}

func TestTransformMaskFields(t *testing.T) {
	m := NewTransformMask([4]byte{0x01 | 2<<2 | 1<<6, 0x13, 0xf0, 0x04})
	if m.TranslationQuantization != Bits16 || m.RotationQuantization != ThreeComp48 || m.ScaleQuantization != Bits16 {
		t.Errorf("quantization split wrong: %v", m)
	}
	if !m.Translation.SplineAxis(0) || !m.Translation.StaticAxis(1) || m.Translation.SplineAxis(1) || m.Translation.StaticAxis(2) {
		t.Errorf("translation axes wrong: %#x", uint8(m.Translation))
	}
	if !m.Rotation.Spline() || m.Rotation.Static() {
		t.Errorf("rotation flags wrong: %#x", uint8(m.Rotation))
	}
	if !m.Scale.Static() || m.Scale.Spline() || m.Absent() {
		t.Errorf("scale flags wrong: %#x", uint8(m.Scale))
	}
	if !NewTransformMask([4]byte{0xff, 0, 0, 0}).Absent() {
		t.Errorf("mask without flags should be absent")
	}
}

func TestPackedQuaternionsAreUnit(t *testing.T) {
	for _, c := range []uint32{0, 0x3ffff, 0x12345, 0x0ff00000 | 0x2000, 0xf0000000 | 0x2a5 | 0x155<<18} {
		if l := quatLength(decodePolar32(c)); !near(l, 1) {
			t.Errorf("decodePolar32(%#x) length %v", c, l)
		}
	}

	for _, test := range []struct{ x, y, z uint64 }{
		{0x801, 0x801, 0x801},
		{0x900, 0x700, 0x850},
		{0xa00, 0x801, 0x600},
	} {
		for shift := uint64(0); shift < 4; shift++ {
			for invert := uint64(0); invert < 2; invert++ {
				n := test.x | test.y<<12 | test.z<<24 | shift<<36 | invert<<38
				q, err := decode40(n)
				if err != nil {
					t.Fatalf("decode40(%#x): %v", n, err)
				}
				if l := quatLength(q); !near(l, 1) {
					t.Errorf("decode40(%#x) length %v", n, l)
				}
			}
		}
	}

	for _, test := range []struct{ x, y, z uint16 }{
		{0x3fff, 0x3fff, 0x3fff},
		{0x5000, 0x3000, 0x4100},
		{0x3fff | 0x8000, 0x2000 | 0x8000, 0x4500 | 0x8000},
	} {
		if l := quatLength(decode48(test.x, test.y, test.z)); !near(l, 1) {
			t.Errorf("decode48(%#x, %#x, %#x) length %v", test.x, test.y, test.z, l)
		}
	}
}

func TestPackedQuaternionLayout(t *testing.T) {
	// all three stored components centered, so the derived one is 1
	for _, test := range []struct {
		shift uint64
		want  mgl32.Quat
	}{
		{0, mgl32.Quat{W: 0, V: mgl32.Vec3{1, 0, 0}}},
		{1, mgl32.Quat{W: 0, V: mgl32.Vec3{0, 1, 0}}},
		{2, mgl32.Quat{W: 0, V: mgl32.Vec3{0, 0, 1}}},
		{3, mgl32.Quat{W: 1, V: mgl32.Vec3{0, 0, 0}}},
	} {
		n := uint64(0x801) | 0x801<<12 | 0x801<<24 | test.shift<<36
		q, err := decode40(n)
		if err != nil {
			t.Fatal(err)
		}
		if !q.ApproxEqualThreshold(test.want, 1e-3) {
			t.Errorf("decode40 shift %d = %v; expected %v", test.shift, q, test.want)
		}
	}

	if q := decode48(0x3fff, 0x3fff, 0x3fff|0x8000); !q.ApproxEqualThreshold(mgl32.Quat{W: 0, V: mgl32.Vec3{-1, 0, 0}}, 1e-3) {
		t.Errorf("decode48 inverted shift 0 = %v", q)
	}
}

func TestInvalidQuaternion(t *testing.T) {
	n := uint64(0x801) | 1<<39
	_, err := decode40(n)
	if !errors.Is(err, ErrInvalidQuaternion) || !errors.Is(err, tagfile.ErrFormat) {
		t.Errorf("decode40 with invalid bit: %v", err)
	}
}

func TestReadQuaternionQuantization(t *testing.T) {
	for _, q := range []RotationQuantization{ThreeComp24, Straight16, 6, 15} {
		r := readat.NewReader(make([]byte, 16), 0)
		if _, err := readQuaternion(r, q); !errors.Is(err, ErrQuantization) {
			t.Errorf("readQuaternion(%v) error %v; expected ErrQuantization", q, err)
		}
	}
	if err := ScalarQuantization(2).validate(); !errors.Is(err, ErrQuantization) || !errors.Is(err, tagfile.ErrFormat) {
		t.Errorf("scalar code 2: %v", err)
	}
}

func TestStaticVectorTrack(t *testing.T) {
	data := new(blob).put(float32(2), float32(3)).Bytes()
	r := readat.NewReader(data, 0)
	tr, err := readVectorTrack(r, StaticX|StaticZ, Bits8, anim.IdentityScale, timing{duration: 1, frameDuration: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if v := tr.Interpolate(0.3); v != (mgl32.Vec3{2, 1, 3}) {
		t.Errorf("static scale=%v; expected [2 1 3]", v)
	}
	if tr.IsEmpty() || !tr.IsStatic() {
		t.Errorf("static scale flags empty=%v static=%v", tr.IsEmpty(), tr.IsStatic())
	}
	if r.Offset() != 8 {
		t.Errorf("reader at %d; expected 8", r.Offset())
	}
}

func TestSplineVectorMixedAxes(t *testing.T) {
	// x splined in 16 bit, y static, z absent
	data := new(blob).
		put(uint16(1), uint8(1), []byte{0, 0, 2, 2}).align(4).
		put(float32(-1), float32(1), float32(7)).
		put(uint16(0), uint16(0xffff)).
		Bytes()

	r := readat.NewReader(data, 0)
	tr, err := readVectorTrack(r, SplineX|StaticY, Bits16, anim.IdentityTranslation, timing{duration: 2, frameDuration: 2})
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		t    float32
		want mgl32.Vec3
	}{
		{0, mgl32.Vec3{-1, 7, 0}},
		{2, mgl32.Vec3{0, 7, 0}},
		{4, mgl32.Vec3{1, 7, 0}},
	} {
		if v := tr.Interpolate(test.t); !v.ApproxEqualThreshold(test.want, 1e-4) {
			t.Errorf("Interpolate(%v)=%v; expected %v", test.t, v, test.want)
		}
	}
	if times := tr.FrameTimes(); !reflect.DeepEqual(times, []float32{0}) {
		t.Errorf("FrameTimes=%v; expected [0]", times)
	}
	if r.Offset() != int64(len(data)) {
		t.Errorf("reader at %d; expected %d", r.Offset(), len(data))
	}
}

func TestSplineRotationNormalized(t *testing.T) {
	half := float32(math.Sqrt(0.5))
	data := new(blob).
		put(uint16(1), uint8(1), []byte{0, 0, 1, 1}).align(4).
		put(float32(0), float32(0), float32(0), float32(1)).
		put(float32(0), half, float32(0), half).
		Bytes()

	r := readat.NewReader(data, 0)
	tr, err := readQuaternionTrack(r, QuaternionSpline, Uncompressed, timing{duration: 1, frameDuration: 1})
	if err != nil {
		t.Fatal(err)
	}
	q := tr.Interpolate(0.5)
	if l := quatLength(q); !near(l, 1) {
		t.Errorf("Interpolate(0.5) length %v; expected 1", l)
	}
	if q.V[1] <= 0 || q.V[1] >= half {
		t.Errorf("Interpolate(0.5)=%v; expected y between 0 and %v", q, half)
	}
}

// twoBlockAnimation has two tracks. Track 0 holds an identity pose in the
// first block and moves from x=0 to x=1 in the second. Track 1 is absent.
func twoBlockAnimation() *hkdef.HkaSplineCompressedAnimation {
	data := new(blob)
	data.put([]byte{byte(Uncompressed) << 2, byte(StaticX), byte(QuaternionStatic), 0})
	data.put([]byte{0, 0, 0, 0})
	data.put(float32(0)).align(4)
	data.put(float32(0), float32(0), float32(0), float32(1)).align(4)

	second := int32(data.Len())
	data.put([]byte{byte(Bits8), byte(SplineX), 0, 0})
	data.put([]byte{0, 0, 0, 0})
	data.put(uint16(1), uint8(1), []byte{0, 0, 1, 1}).align(4)
	data.put(float32(0), float32(1))
	data.put(uint8(0), uint8(255)).align(4)

	sca := &hkdef.HkaSplineCompressedAnimation{
		NumFrames:         6,
		NumBlocks:         2,
		MaxFramesPerBlock: 4,
		BlockDuration:     3,
		FrameDuration:     1,
		BlockOffsets:      []int32{0, second},
		Data:              data.Bytes(),
	}
	sca.Duration = 4
	sca.NumberOfTransformTracks = 2
	return sca
}

func TestDecodeTwoBlocks(t *testing.T) {
	sca := twoBlockAnimation()

	blocks, err := DecodeBlocks(sca, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Fatalf("%d blocks; expected 2", len(blocks))
	}
	for i, want := range []struct {
		frames   int
		duration float32
	}{{4, 3}, {2, 1}} {
		if blocks[i].NumFrames != want.frames || blocks[i].Duration() != want.duration {
			t.Errorf("block %d: %d frames, duration %v; expected %d, %v",
				i, blocks[i].NumFrames, blocks[i].Duration(), want.frames, want.duration)
		}
	}

	a, err := DecodeAnimation(sca, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Duration() != 4 {
		t.Errorf("Duration()=%v; expected 4", a.Duration())
	}
	if bones := a.AffectedBoneIndices(); !reflect.DeepEqual(bones, []int{0}) {
		t.Errorf("AffectedBoneIndices=%v; expected [0]", bones)
	}
	if v := a.Translation(0).Interpolate(3.5); !v.ApproxEqualThreshold(mgl32.Vec3{0.5, 0, 0}, 1e-4) {
		t.Errorf("Translation(0).Interpolate(3.5)=%v; expected [0.5 0 0]", v)
	}
	if v := a.Translation(0).Interpolate(1); v != anim.IdentityTranslation {
		t.Errorf("Translation(0).Interpolate(1)=%v; expected zero", v)
	}
	if q := a.Rotation(0).Interpolate(3.5); q != anim.IdentityRotation {
		t.Errorf("Rotation(0).Interpolate(3.5)=%v; expected identity", q)
	}
	if times := a.Translation(0).FrameTimes(); !reflect.DeepEqual(times, []float32{0, 3}) {
		t.Errorf("FrameTimes=%v; expected [0 3]", times)
	}
	if !a.Translation(1).IsEmpty() || a.Translation(0).IsStatic() {
		t.Errorf("track 1 should be empty and track 0 animated")
	}
}

func TestDecodeBinding(t *testing.T) {
	binding := &hkdef.HkaAnimationBinding{
		Animation:                   twoBlockAnimation(),
		TransformTrackToBoneIndices: []int32{5, 2},
	}
	a, err := Decode(binding, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if bones := a.AffectedBoneIndices(); !reflect.DeepEqual(bones, []int{5}) {
		t.Errorf("AffectedBoneIndices=%v; expected [5]", bones)
	}
	if v := a.Translation(5).Interpolate(4); !v.ApproxEqualThreshold(mgl32.Vec3{0, 0, 0}, 1e-4) {
		t.Errorf("Translation(5).Interpolate(4)=%v; expected wrap to start", v)
	}

	binding.Animation = &hkdef.HkaAnimation{}
	if _, err := Decode(binding, Options{}); !errors.Is(err, ErrUnsupportedAnimation) {
		t.Errorf("Decode of plain hkaAnimation: %v; expected ErrUnsupportedAnimation", err)
	}

	binding.Animation = twoBlockAnimation()
	binding.TransformTrackToBoneIndices = []int32{1}
	if _, err := Decode(binding, Options{}); !errors.Is(err, tagfile.ErrFormat) {
		t.Errorf("short bone mapping: %v; expected ErrFormat", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	truncated := twoBlockAnimation()
	truncated.Data = truncated.Data[:len(truncated.Data)-3]
	if _, err := DecodeBlocks(truncated, nil, Options{}); !errors.Is(err, tagfile.ErrFormat) {
		t.Errorf("truncated data: %v; expected ErrFormat", err)
	}

	badRotation := twoBlockAnimation()
	badRotation.Data[0] = byte(ThreeComp24) << 2
	if _, err := DecodeBlocks(badRotation, nil, Options{}); !errors.Is(err, ErrQuantization) {
		t.Errorf("threecomp24 rotation: %v; expected ErrQuantization", err)
	}

	badKnots := &hkdef.HkaSplineCompressedAnimation{
		NumFrames:         2,
		MaxFramesPerBlock: 2,
		BlockDuration:     1,
		FrameDuration:     1,
		BlockOffsets:      []int32{0},
		// degree 3 with only two control points
		Data: new(blob).
			put([]byte{0, byte(SplineX), 0, 0}).
			put(uint16(1), uint8(3), []byte{0, 0, 0, 0, 1, 1}).align(4).
			put(float32(0), float32(1), uint8(0), uint8(1)).align(4).
			Bytes(),
	}
	badKnots.NumberOfTransformTracks = 1
	if _, err := DecodeBlocks(badKnots, nil, Options{}); !errors.Is(err, tagfile.ErrFormat) {
		t.Errorf("degree above control point count: %v; expected ErrFormat", err)
	}

	offset := twoBlockAnimation()
	offset.BlockOffsets[1] = int32(len(offset.Data) + 4)
	if _, err := DecodeBlocks(offset, nil, Options{}); !errors.Is(err, tagfile.ErrFormat) {
		t.Errorf("block offset past data: %v; expected ErrFormat", err)
	}
}
