package anim

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Animation is a set of per-bone curves sharing one timeline.
type Animation interface {
	Duration() float32
	// AffectedBoneIndices is sorted and has no duplicates.
	AffectedBoneIndices() []int
	Translation(bone int) Vector3Track
	Rotation(bone int) QuaternionTrack
	Scale(bone int) Vector3Track
}

// SortedBones merges index sets into one sorted set.
func SortedBones(sets ...[]int) []int {
	seen := make(map[int]struct{})
	for _, set := range sets {
		for _, b := range set {
			seen[b] = struct{}{}
		}
	}
	bones := make([]int, 0, len(seen))
	for b := range seen {
		bones = append(bones, b)
	}
	sort.Ints(bones)
	return bones
}

func keys[V any](m map[int]V) []int {
	r := make([]int, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	return r
}

// StaticAnimation holds one value per bone for its whole duration.
type StaticAnimation struct {
	duration     float32
	bones        []int
	translations map[int]*StaticTrack[mgl32.Vec3]
	rotations    map[int]*StaticTrack[mgl32.Quat]
	scales       map[int]*StaticTrack[mgl32.Vec3]
}

// NewStaticAnimation builds a pose lasting duration. A bone missing from one
// of the maps takes the identity for that component.
func NewStaticAnimation(duration float32, translations map[int]mgl32.Vec3, rotations map[int]mgl32.Quat, scales map[int]mgl32.Vec3) *StaticAnimation {
	a := &StaticAnimation{
		duration:     duration,
		bones:        SortedBones(keys(translations), keys(rotations), keys(scales)),
		translations: make(map[int]*StaticTrack[mgl32.Vec3]),
		rotations:    make(map[int]*StaticTrack[mgl32.Quat]),
		scales:       make(map[int]*StaticTrack[mgl32.Vec3]),
	}

	for _, b := range a.bones {
		t, ok := translations[b]
		if !ok {
			t = IdentityTranslation
		}
		r, ok := rotations[b]
		if !ok {
			r = IdentityRotation
		}
		s, ok := scales[b]
		if !ok {
			s = IdentityScale
		}
		a.translations[b] = NewStaticVector3Track(t, duration, IdentityTranslation)
		a.rotations[b] = NewStaticQuaternionTrack(r, duration)
		a.scales[b] = NewStaticVector3Track(s, duration, IdentityScale)
	}
	return a
}

func (a *StaticAnimation) Duration() float32          { return a.duration }
func (a *StaticAnimation) AffectedBoneIndices() []int { return a.bones }

func (a *StaticAnimation) Translation(bone int) Vector3Track {
	if t, ok := a.translations[bone]; ok {
		return t
	}
	return NewStaticTrack(IdentityTranslation, a.duration, true)
}

func (a *StaticAnimation) Rotation(bone int) QuaternionTrack {
	if t, ok := a.rotations[bone]; ok {
		return t
	}
	return NewStaticTrack(IdentityRotation, a.duration, true)
}

func (a *StaticAnimation) Scale(bone int) Vector3Track {
	if t, ok := a.scales[bone]; ok {
		return t
	}
	return NewStaticTrack(IdentityScale, a.duration, true)
}
