// Package anim models decoded skeletal animation as per-bone curves.
package anim

import (
	"github.com/cruisechaser/havok_browser/anim/nurbs"

	"github.com/go-gl/mathgl/mgl32"
)

// Track is a curve of one transform component over time.
type Track[V comparable] interface {
	// IsEmpty is true only for static tracks at the identity value.
	IsEmpty() bool
	IsStatic() bool
	Duration() float32
	// FrameTimes returns the sample grid the curve was built from. It always
	// starts at 0 (for non-empty grids) and never includes Duration itself.
	FrameTimes() []float32
	Interpolate(t float32) V
}

type Vector3Track = Track[mgl32.Vec3]
type QuaternionTrack = Track[mgl32.Quat]

var (
	IdentityTranslation = mgl32.Vec3{0, 0, 0}
	IdentityRotation    = mgl32.QuatIdent()
	IdentityScale       = mgl32.Vec3{1, 1, 1}
)

type StaticTrack[V comparable] struct {
	value    V
	duration float32
	empty    bool
}

func NewStaticTrack[V comparable](value V, duration float32, empty bool) *StaticTrack[V] {
	return &StaticTrack[V]{value: value, duration: duration, empty: empty}
}

func NewStaticVector3Track(v mgl32.Vec3, duration float32, identity mgl32.Vec3) *StaticTrack[mgl32.Vec3] {
	return NewStaticTrack(v, duration, v == identity)
}

func NewStaticQuaternionTrack(q mgl32.Quat, duration float32) *StaticTrack[mgl32.Quat] {
	return NewStaticTrack(q, duration, q == IdentityRotation)
}

func (s *StaticTrack[V]) IsEmpty() bool           { return s.empty }
func (s *StaticTrack[V]) IsStatic() bool          { return true }
func (s *StaticTrack[V]) Duration() float32       { return s.duration }
func (s *StaticTrack[V]) Interpolate(t float32) V { return s.value }
func (s *StaticTrack[V]) Value() V                { return s.value }
func (s *StaticTrack[V]) FrameTimes() []float32   { return []float32{0} }

// SplineTrack evaluates a NURBS curve whose parameter is the frame number.
type SplineTrack[V comparable] struct {
	curve         *nurbs.Curve
	duration      float32
	numFrames     int
	frameDuration float32
	convert       func([]float32) V
}

func (s *SplineTrack[V]) IsEmpty() bool     { return false }
func (s *SplineTrack[V]) IsStatic() bool    { return false }
func (s *SplineTrack[V]) Duration() float32 { return s.duration }

func (s *SplineTrack[V]) FrameTimes() []float32 {
	times := make([]float32, s.numFrames)
	for i := range times {
		times[i] = float32(i) * s.frameDuration
	}
	return times
}

func (s *SplineTrack[V]) Interpolate(t float32) V {
	var u float32
	if s.frameDuration != 0 {
		u = t / s.frameDuration
	}
	return s.convert(s.curve.Evaluate(u))
}

func (s *SplineTrack[V]) Curve() *nurbs.Curve {
	return s.curve
}

func NewSplineVector3Track(curve *nurbs.Curve, duration float32, numFrames int, frameDuration float32) *SplineTrack[mgl32.Vec3] {
	return &SplineTrack[mgl32.Vec3]{
		curve:         curve,
		duration:      duration,
		numFrames:     numFrames,
		frameDuration: frameDuration,
		convert: func(v []float32) mgl32.Vec3 {
			return mgl32.Vec3{v[0], v[1], v[2]}
		},
	}
}

// NewSplineQuaternionTrack returns a track that renormalizes every evaluated value.
func NewSplineQuaternionTrack(curve *nurbs.Curve, duration float32, numFrames int, frameDuration float32) *SplineTrack[mgl32.Quat] {
	return &SplineTrack[mgl32.Quat]{
		curve:         curve,
		duration:      duration,
		numFrames:     numFrames,
		frameDuration: frameDuration,
		convert: func(v []float32) mgl32.Quat {
			return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
		},
	}
}
