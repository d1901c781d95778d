package spline

import (
	"github.com/cruisechaser/havok_browser/anim"
	"github.com/cruisechaser/havok_browser/anim/nurbs"
	"github.com/cruisechaser/havok_browser/hkx/tagfile"
	"github.com/cruisechaser/havok_browser/readat"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// timing is shared by every curve of one block.
type timing struct {
	duration      float32
	frameDuration float32
}

// readKnots reads the spline header. Curves store one control point more
// than numItems and numItems+degree+2 knots.
func readKnots(r *readat.Reader) (numItems int, degree int, knots []byte) {
	numItems = int(r.U16())
	degree = int(r.U8())
	knots = r.Bytes(numItems + degree + 2)
	return numItems, degree, knots
}

func readVectorTrack(r *readat.Reader, vt VectorType, q ScalarQuantization, identity mgl32.Vec3, tm timing) (anim.Vector3Track, error) {
	if vt.Spline() {
		if err := q.validate(); err != nil {
			return nil, err
		}
		numItems, degree, knots := readKnots(r)
		r.AlignTo(4)

		lo, hi, base := identity, identity, identity
		for axis := 0; axis < 3; axis++ {
			if vt.SplineAxis(axis) {
				lo[axis] = r.F32()
				hi[axis] = r.F32()
			} else if vt.StaticAxis(axis) {
				base[axis] = r.F32()
			}
		}

		points := make([][]float32, numItems+1)
		for i := range points {
			p := base
			for axis := 0; axis < 3; axis++ {
				if vt.SplineAxis(axis) {
					p[axis] = lo[axis] + (hi[axis]-lo[axis])*q.read(r)
				}
			}
			points[i] = []float32{p[0], p[1], p[2]}
		}

		curve, err := nurbs.New(3, degree, knots, points)
		if err != nil {
			return nil, errors.Wrapf(tagfile.ErrFormat, "vector spline: %v", err)
		}
		return anim.NewSplineVector3Track(curve, tm.duration, numItems, tm.frameDuration), nil
	}

	if vt.Static() {
		v := identity
		for axis := 0; axis < 3; axis++ {
			if vt.StaticAxis(axis) {
				v[axis] = r.F32()
			}
		}
		return anim.NewStaticVector3Track(v, tm.duration, identity), nil
	}

	return anim.NewStaticTrack(identity, tm.duration, true), nil
}

func readQuaternionTrack(r *readat.Reader, qt QuaternionType, q RotationQuantization, tm timing) (anim.QuaternionTrack, error) {
	if qt.Absent() {
		return anim.NewStaticTrack(anim.IdentityRotation, tm.duration, true), nil
	}
	if err := q.validate(); err != nil {
		return nil, err
	}

	if qt.Spline() {
		numItems, degree, knots := readKnots(r)
		r.AlignTo(q.Alignment())

		points := make([][]float32, numItems+1)
		for i := range points {
			v, err := readQuaternion(r, q)
			if err != nil {
				return nil, errors.Wrapf(err, "control point %d", i)
			}
			points[i] = []float32{v.V[0], v.V[1], v.V[2], v.W}
		}

		curve, err := nurbs.New(4, degree, knots, points)
		if err != nil {
			return nil, errors.Wrapf(tagfile.ErrFormat, "rotation spline: %v", err)
		}
		return anim.NewSplineQuaternionTrack(curve, tm.duration, numItems, tm.frameDuration), nil
	}

	r.AlignTo(q.Alignment())
	v, err := readQuaternion(r, q)
	if err != nil {
		return nil, err
	}
	return anim.NewStaticQuaternionTrack(v, tm.duration), nil
}
