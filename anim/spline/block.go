package spline

import (
	"github.com/cruisechaser/havok_browser/anim"
)

// Track is the decoded transform of one track within one block.
type Track struct {
	Mask        TransformMask
	Translation anim.Vector3Track
	Rotation    anim.QuaternionTrack
	Scale       anim.Vector3Track
}

func (t *Track) IsEmpty() bool {
	return t.Translation.IsEmpty() && t.Rotation.IsEmpty() && t.Scale.IsEmpty()
}

// Block is one independently quantized chunk of frames. It implements
// anim.Animation over bone indices.
type Block struct {
	Index     int
	NumFrames int
	Tracks    []Track

	duration    float32
	boneToTrack map[int]int
	bones       []int
}

func newBlock(index int, duration float32, numFrames int, tracks []Track, trackToBone []int) *Block {
	b := &Block{
		Index:       index,
		NumFrames:   numFrames,
		Tracks:      tracks,
		duration:    duration,
		boneToTrack: make(map[int]int, len(tracks)),
	}
	affected := make([]int, 0, len(tracks))
	for i := range tracks {
		bone := trackToBone[i]
		b.boneToTrack[bone] = i
		if !tracks[i].Mask.Absent() {
			affected = append(affected, bone)
		}
	}
	b.bones = anim.SortedBones(affected)
	return b
}

func (b *Block) Duration() float32          { return b.duration }
func (b *Block) AffectedBoneIndices() []int { return b.bones }

func (b *Block) track(bone int) *Track {
	if i, ok := b.boneToTrack[bone]; ok {
		return &b.Tracks[i]
	}
	return nil
}

func (b *Block) Translation(bone int) anim.Vector3Track {
	if t := b.track(bone); t != nil {
		return t.Translation
	}
	return anim.NewStaticTrack(anim.IdentityTranslation, b.duration, true)
}

func (b *Block) Rotation(bone int) anim.QuaternionTrack {
	if t := b.track(bone); t != nil {
		return t.Rotation
	}
	return anim.NewStaticTrack(anim.IdentityRotation, b.duration, true)
}

func (b *Block) Scale(bone int) anim.Vector3Track {
	if t := b.track(bone); t != nil {
		return t.Scale
	}
	return anim.NewStaticTrack(anim.IdentityScale, b.duration, true)
}
