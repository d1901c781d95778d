package spline

import (
	"math"

	"github.com/cruisechaser/havok_browser/readat"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

const (
	polarSignX = 0x10000000
	polarSignY = 0x20000000
	polarSignZ = 0x40000000
	polarSignW = 0x80000000

	comp40Delta    = 0x801
	comp40Fraction = 0.000345436
	comp48Mask     = 0x7fff
	comp48Delta    = 0x3fff
	comp48Fraction = 0.000043161
)

// readQuaternion reads one packed rotation. The caller aligns the reader.
func readQuaternion(r *readat.Reader, q RotationQuantization) (mgl32.Quat, error) {
	switch q {
	case Polar32:
		return decodePolar32(r.U32()), nil
	case ThreeComp40:
		lo := uint64(r.U32())
		return decode40(lo | uint64(r.U8())<<32)
	case ThreeComp48:
		x := r.U16()
		y := r.U16()
		z := r.U16()
		return decode48(x, y, z), nil
	case Uncompressed:
		x := r.F32()
		y := r.F32()
		z := r.F32()
		w := r.F32()
		return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}, nil
	}
	return mgl32.Quat{}, q.validate()
}

func decodePolar32(c uint32) mgl32.Quat {
	r := float64((c>>18)&0x3ff) / 1023
	r = 1 - r*r

	phiTheta := float64(c & 0x3ffff)
	phi := math.Floor(math.Sqrt(phiTheta))
	theta := 0.0
	if phi > 0 {
		theta = (math.Pi / 4) * (phiTheta - phi*phi) / phi
		phi *= (math.Pi / 2) / 511
	}

	mag := math.Sqrt(math.Max(0, 1-r*r))
	q := mgl32.Quat{
		W: float32(r),
		V: mgl32.Vec3{
			float32(math.Sin(phi) * math.Cos(theta) * mag),
			float32(math.Sin(phi) * math.Sin(theta) * mag),
			float32(math.Cos(phi) * mag),
		},
	}
	if c&polarSignX != 0 {
		q.V[0] = -q.V[0]
	}
	if c&polarSignY != 0 {
		q.V[1] = -q.V[1]
	}
	if c&polarSignZ != 0 {
		q.V[2] = -q.V[2]
	}
	if c&polarSignW != 0 {
		q.W = -q.W
	}
	return q
}

// decode40 unpacks three 12 bit components, a 2 bit shift, an invert bit and an invalid bit.
func decode40(n uint64) (mgl32.Quat, error) {
	if (n>>39)&1 != 0 {
		return mgl32.Quat{}, errors.Wrapf(ErrInvalidQuaternion, "value 0x%010x", n)
	}
	tmp := [4]float32{
		float32(int((n>>0)&0xfff)-comp40Delta) * comp40Fraction,
		float32(int((n>>12)&0xfff)-comp40Delta) * comp40Fraction,
		float32(int((n>>24)&0xfff)-comp40Delta) * comp40Fraction,
	}
	return restoreLargest(tmp, int((n>>36)&3), (n>>38)&1 != 0), nil
}

// decode48 unpacks three 15 bit components. The shift is spread over the
// top bits of x and y, the invert flag is the top bit of z.
func decode48(x, y, z uint16) mgl32.Quat {
	shift := int((y>>14)&2) | int((x>>15)&1)
	tmp := [4]float32{
		float32(int(x&comp48Mask)-comp48Delta) * comp48Fraction,
		float32(int(y&comp48Mask)-comp48Delta) * comp48Fraction,
		float32(int(z&comp48Mask)-comp48Delta) * comp48Fraction,
	}
	return restoreLargest(tmp, shift, z>>15 != 0)
}

// restoreLargest derives the dropped component from the three stored ones and
// rotates it back into its slot.
func restoreLargest(tmp [4]float32, shift int, invert bool) mgl32.Quat {
	sum := tmp[0]*tmp[0] + tmp[1]*tmp[1] + tmp[2]*tmp[2]
	tmp[3] = float32(math.Sqrt(math.Max(0, float64(1-sum))))
	if invert {
		tmp[3] = -tmp[3]
	}
	for i := 0; i < 3-shift; i++ {
		tmp[3-i], tmp[2-i] = tmp[2-i], tmp[3-i]
	}
	return mgl32.Quat{W: tmp[3], V: mgl32.Vec3{tmp[0], tmp[1], tmp[2]}}
}
