package spline

import (
	"fmt"

	"github.com/cruisechaser/havok_browser/readat"

	"github.com/pkg/errors"
)

type ScalarQuantization uint8

const (
	Bits8  ScalarQuantization = 0
	Bits16 ScalarQuantization = 1
)

func (q ScalarQuantization) String() string {
	switch q {
	case Bits8:
		return "8bit"
	case Bits16:
		return "16bit"
	}
	return fmt.Sprintf("ScalarQuantization(%d)", q)
}

func (q ScalarQuantization) validate() error {
	if q > Bits16 {
		return errors.Wrapf(ErrQuantization, "scalar code %d", uint8(q))
	}
	return nil
}

// read returns the next quantized value scaled into [0, 1].
func (q ScalarQuantization) read(r *readat.Reader) float32 {
	if q == Bits8 {
		return float32(r.U8()) / 0xff
	}
	return float32(r.U16()) / 0xffff
}

type RotationQuantization uint8

const (
	Polar32 RotationQuantization = iota
	ThreeComp40
	ThreeComp48
	ThreeComp24
	Straight16
	Uncompressed
)

var rotationQuantizationNames = []string{
	"polar32", "threecomp40", "threecomp48", "threecomp24", "straight16", "uncompressed",
}

func (q RotationQuantization) String() string {
	if int(q) < len(rotationQuantizationNames) {
		return rotationQuantizationNames[q]
	}
	return fmt.Sprintf("RotationQuantization(%d)", q)
}

func (q RotationQuantization) validate() error {
	switch q {
	case Polar32, ThreeComp40, ThreeComp48, Uncompressed:
		return nil
	case ThreeComp24, Straight16:
		return errors.Wrapf(ErrQuantization, "rotation %v not implemented", q)
	}
	return errors.Wrapf(ErrQuantization, "rotation code %d", uint8(q))
}

// Alignment is the byte boundary packed rotations of this kind start on.
func (q RotationQuantization) Alignment() int64 {
	switch q {
	case Polar32, Uncompressed:
		return 4
	case ThreeComp48, Straight16:
		return 2
	}
	return 1
}

// VectorType flags which axes of a translation or scale are static or splined.
// Axes with neither flag keep the identity value.
type VectorType uint8

const (
	StaticX VectorType = 0x01
	StaticY VectorType = 0x02
	StaticZ VectorType = 0x04
	SplineX VectorType = 0x10
	SplineY VectorType = 0x20
	SplineZ VectorType = 0x40

	vectorStatic = StaticX | StaticY | StaticZ
	vectorSpline = SplineX | SplineY | SplineZ
)

func (v VectorType) Spline() bool { return v&vectorSpline != 0 }
func (v VectorType) Static() bool { return v&vectorStatic != 0 }
func (v VectorType) Absent() bool { return v&(vectorStatic|vectorSpline) == 0 }

// SplineAxis reports whether axis (0 for X, 1 for Y, 2 for Z) is splined.
func (v VectorType) SplineAxis(axis int) bool { return v&(SplineX<<axis) != 0 }
func (v VectorType) StaticAxis(axis int) bool { return v&(StaticX<<axis) != 0 }

type QuaternionType uint8

const (
	QuaternionStatic QuaternionType = 0x0f
	QuaternionSpline QuaternionType = 0xf0
)

func (q QuaternionType) Spline() bool { return q&QuaternionSpline != 0 }
func (q QuaternionType) Static() bool { return q&QuaternionStatic != 0 }
func (q QuaternionType) Absent() bool { return q == 0 }

// TransformMask describes how one transform track is stored inside a block.
type TransformMask struct {
	TranslationQuantization ScalarQuantization
	RotationQuantization    RotationQuantization
	ScaleQuantization       ScalarQuantization
	Translation             VectorType
	Rotation                QuaternionType
	Scale                   VectorType
}

// NewTransformMask splits the four mask bytes: packed quantization, then the
// translation, rotation and scale flags.
func NewTransformMask(b [4]byte) TransformMask {
	return TransformMask{
		TranslationQuantization: ScalarQuantization(b[0] & 0x3),
		RotationQuantization:    RotationQuantization((b[0] >> 2) & 0xf),
		ScaleQuantization:       ScalarQuantization((b[0] >> 6) & 0x3),
		Translation:             VectorType(b[1]),
		Rotation:                QuaternionType(b[2]),
		Scale:                   VectorType(b[3]),
	}
}

func readTransformMask(r *readat.Reader) TransformMask {
	var b [4]byte
	copy(b[:], r.Bytes(4))
	return NewTransformMask(b)
}

// Absent reports whether the track stores nothing for this block.
func (m TransformMask) Absent() bool {
	return m.Translation.Absent() && m.Rotation.Absent() && m.Scale.Absent()
}

func (m TransformMask) String() string {
	return fmt.Sprintf("T(%#02x %v) R(%#02x %v) S(%#02x %v)",
		uint8(m.Translation), m.TranslationQuantization,
		uint8(m.Rotation), m.RotationQuantization,
		uint8(m.Scale), m.ScaleQuantization)
}
