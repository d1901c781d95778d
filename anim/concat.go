package anim

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ConcatAnimation plays its parts one after another and wraps around.
type ConcatAnimation struct {
	Parts []Animation

	durations    []float32
	duration     float32
	bones        []int
	translations map[int]*ConcatTrack[mgl32.Vec3]
	rotations    map[int]*ConcatTrack[mgl32.Quat]
	scales       map[int]*ConcatTrack[mgl32.Vec3]
}

func NewConcatAnimation(parts ...Animation) *ConcatAnimation {
	a := &ConcatAnimation{
		Parts:        parts,
		durations:    make([]float32, len(parts)),
		translations: make(map[int]*ConcatTrack[mgl32.Vec3]),
		rotations:    make(map[int]*ConcatTrack[mgl32.Quat]),
		scales:       make(map[int]*ConcatTrack[mgl32.Vec3]),
	}

	sets := make([][]int, len(parts))
	for i, p := range parts {
		a.durations[i] = p.Duration()
		a.duration += a.durations[i]
		sets[i] = p.AffectedBoneIndices()
	}
	a.bones = SortedBones(sets...)

	for _, b := range a.bones {
		a.translations[b] = a.translationTrack(b)
		a.rotations[b] = a.rotationTrack(b)
		a.scales[b] = a.scaleTrack(b)
	}
	return a
}

func (a *ConcatAnimation) Duration() float32          { return a.duration }
func (a *ConcatAnimation) AffectedBoneIndices() []int { return a.bones }

func (a *ConcatAnimation) translationTrack(bone int) *ConcatTrack[mgl32.Vec3] {
	parts := make([]Track[mgl32.Vec3], len(a.Parts))
	for i, p := range a.Parts {
		parts[i] = p.Translation(bone)
	}
	return newConcatTrack(parts, a.durations, a.duration)
}

func (a *ConcatAnimation) rotationTrack(bone int) *ConcatTrack[mgl32.Quat] {
	parts := make([]Track[mgl32.Quat], len(a.Parts))
	for i, p := range a.Parts {
		parts[i] = p.Rotation(bone)
	}
	return newConcatTrack(parts, a.durations, a.duration)
}

func (a *ConcatAnimation) scaleTrack(bone int) *ConcatTrack[mgl32.Vec3] {
	parts := make([]Track[mgl32.Vec3], len(a.Parts))
	for i, p := range a.Parts {
		parts[i] = p.Scale(bone)
	}
	return newConcatTrack(parts, a.durations, a.duration)
}

func (a *ConcatAnimation) Translation(bone int) Vector3Track {
	if t, ok := a.translations[bone]; ok {
		return t
	}
	return a.translationTrack(bone)
}

func (a *ConcatAnimation) Rotation(bone int) QuaternionTrack {
	if t, ok := a.rotations[bone]; ok {
		return t
	}
	return a.rotationTrack(bone)
}

func (a *ConcatAnimation) Scale(bone int) Vector3Track {
	if t, ok := a.scales[bone]; ok {
		return t
	}
	return a.scaleTrack(bone)
}

// ConcatTrack joins the tracks of one bone across the parts of a ConcatAnimation.
type ConcatTrack[V comparable] struct {
	parts     []Track[V]
	durations []float32
	duration  float32
}

func newConcatTrack[V comparable](parts []Track[V], durations []float32, duration float32) *ConcatTrack[V] {
	return &ConcatTrack[V]{parts: parts, durations: durations, duration: duration}
}

func (c *ConcatTrack[V]) Duration() float32 { return c.duration }

func (c *ConcatTrack[V]) IsEmpty() bool {
	for _, p := range c.parts {
		if !p.IsEmpty() {
			return false
		}
	}
	return true
}

// IsStatic holds when every part is static and neighbours agree at their start.
func (c *ConcatTrack[V]) IsStatic() bool {
	for i, p := range c.parts {
		if !p.IsStatic() {
			return false
		}
		if i != 0 && c.parts[i-1].Interpolate(0) != p.Interpolate(0) {
			return false
		}
	}
	return true
}

func (c *ConcatTrack[V]) FrameTimes() []float32 {
	var times []float32
	var base float32
	for i, p := range c.parts {
		// a zero-length pose would repeat the next part's first key
		if c.durations[i] > 0 {
			for _, t := range p.FrameTimes() {
				times = append(times, base+t)
			}
		}
		base += c.durations[i]
	}
	if len(times) == 0 {
		return []float32{0}
	}
	return times
}

// Interpolate wraps t into [0, Duration) and delegates to the owning part.
func (c *ConcatTrack[V]) Interpolate(t float32) V {
	if len(c.parts) == 0 {
		var zero V
		return zero
	}
	if c.duration <= 0 {
		return c.parts[0].Interpolate(0)
	}

	t = float32(math.Mod(float64(t), float64(c.duration)))
	if t < 0 {
		t += c.duration
	}
	for i, p := range c.parts {
		if t < c.durations[i] {
			return p.Interpolate(t)
		}
		t -= c.durations[i]
	}

	// float rounding can leave t just past the last part
	last := len(c.parts) - 1
	return c.parts[last].Interpolate(c.durations[last])
}
