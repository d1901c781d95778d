// Package spline decodes hkaSplineCompressedAnimation payloads into per-bone curves.
package spline

import (
	"github.com/cruisechaser/havok_browser/anim"
	"github.com/cruisechaser/havok_browser/hkx/hkdef"
	"github.com/cruisechaser/havok_browser/hkx/tagfile"
	"github.com/cruisechaser/havok_browser/readat"
	"github.com/cruisechaser/havok_browser/utils"

	"github.com/pkg/errors"
)

type Options struct {
	Log *utils.Logger
}

// Decode decodes the animation of a binding, mapping its transform tracks to bones.
func Decode(binding *hkdef.HkaAnimationBinding, opts Options) (*anim.ConcatAnimation, error) {
	if binding == nil || binding.Animation == nil {
		return nil, errors.New("binding without animation")
	}
	sca, ok := binding.Animation.(*hkdef.HkaSplineCompressedAnimation)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedAnimation, "%T", binding.Animation)
	}
	return DecodeAnimation(sca, binding.TransformTrackToBoneIndices, opts)
}

// DecodeAnimation joins the blocks of sca into one timeline. An empty
// trackToBone maps track i to bone i.
func DecodeAnimation(sca *hkdef.HkaSplineCompressedAnimation, trackToBone []int32, opts Options) (*anim.ConcatAnimation, error) {
	blocks, err := DecodeBlocks(sca, trackToBone, opts)
	if err != nil {
		return nil, err
	}
	parts := make([]anim.Animation, len(blocks))
	for i, b := range blocks {
		parts[i] = b
	}
	return anim.NewConcatAnimation(parts...), nil
}

func boneMapping(numTracks int, trackToBone []int32) ([]int, error) {
	bones := make([]int, numTracks)
	if len(trackToBone) == 0 {
		for i := range bones {
			bones[i] = i
		}
		return bones, nil
	}
	if len(trackToBone) < numTracks {
		return nil, errors.Wrapf(tagfile.ErrFormat, "%d bone indices for %d transform tracks", len(trackToBone), numTracks)
	}
	for i := range bones {
		bones[i] = int(trackToBone[i])
	}
	return bones, nil
}

// DecodeBlocks decodes every block of sca in order. The last block may hold
// fewer frames and a shorter duration than the others.
func DecodeBlocks(sca *hkdef.HkaSplineCompressedAnimation, trackToBone []int32, opts Options) (blocks []*Block, err error) {
	defer func() {
		if re, ok := err.(*readat.Error); ok {
			err = errors.Wrapf(tagfile.ErrFormat, "truncated animation data: %v", re)
		}
	}()
	defer readat.Recover(&err)

	numTracks := int(sca.NumberOfTransformTracks)
	if numTracks < 0 {
		return nil, errors.Wrapf(tagfile.ErrFormat, "%d transform tracks", numTracks)
	}
	bones, err := boneMapping(numTracks, trackToBone)
	if err != nil {
		return nil, err
	}

	remainingFrames := int(sca.NumFrames)
	remainingDuration := sca.Duration
	for i, offset := range sca.BlockOffsets {
		if offset < 0 || int(offset) > len(sca.Data) {
			return nil, errors.Wrapf(tagfile.ErrFormat, "block %d offset 0x%x outside %d bytes of data", i, offset, len(sca.Data))
		}
		r := readat.NewReader(sca.Data, int64(offset))

		masks := make([]TransformMask, numTracks)
		for t := range masks {
			masks[t] = readTransformMask(r)
		}

		numFrames := remainingFrames
		if m := int(sca.MaxFramesPerBlock); numFrames > m {
			numFrames = m
		}
		duration := remainingDuration
		if duration > sca.BlockDuration {
			duration = sca.BlockDuration
		}
		remainingFrames -= numFrames
		remainingDuration -= duration
		tm := timing{duration: duration, frameDuration: sca.FrameDuration}

		tracks := make([]Track, numTracks)
		for t, mask := range masks {
			if err := readTrack(r, mask, tm, &tracks[t]); err != nil {
				return nil, errors.WithMessagef(err, "block %d track %d", i, t)
			}
		}

		opts.Log.Printf("[spline] block %d at 0x%x: %d frames, %.3fs", i, offset, numFrames, duration)
		blocks = append(blocks, newBlock(i, duration, numFrames, tracks, bones))
	}
	return blocks, nil
}

// readTrack decodes translation, rotation and scale, aligning to 4 bytes after each.
func readTrack(r *readat.Reader, mask TransformMask, tm timing, t *Track) (err error) {
	t.Mask = mask
	if t.Translation, err = readVectorTrack(r, mask.Translation, mask.TranslationQuantization, anim.IdentityTranslation, tm); err != nil {
		return errors.WithMessage(err, "translation")
	}
	r.AlignTo(4)
	if t.Rotation, err = readQuaternionTrack(r, mask.Rotation, mask.RotationQuantization, tm); err != nil {
		return errors.WithMessage(err, "rotation")
	}
	r.AlignTo(4)
	if t.Scale, err = readVectorTrack(r, mask.Scale, mask.ScaleQuantization, anim.IdentityScale, tm); err != nil {
		return errors.WithMessage(err, "scale")
	}
	r.AlignTo(4)
	return nil
}
