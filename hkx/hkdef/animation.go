package hkdef

import (
	"github.com/cruisechaser/havok_browser/hkx"

	"github.com/go-gl/mathgl/mgl32"
)

// Animation is implemented by every hkaAnimation subtype.
type Animation interface {
	HkaAnimationBase() *HkaAnimation
}

type HkaAnimation struct {
	HkReferencedObject
	Type                    int32
	Duration                float32
	NumberOfTransformTracks int32
	NumberOfFloatTracks     int32
	ExtractedMotion         interface{}
	AnnotationTracks        []*HkaAnnotationTrack
}

func (a *HkaAnimation) HkaAnimationBase() *HkaAnimation { return a }

var animationFields = hkx.Fields{
	"type":                    hkx.Int(func(a Animation) *int32 { return &a.HkaAnimationBase().Type }),
	"duration":                hkx.Float(func(a Animation) *float32 { return &a.HkaAnimationBase().Duration }),
	"numberOfTransformTracks": hkx.Int(func(a Animation) *int32 { return &a.HkaAnimationBase().NumberOfTransformTracks }),
	"numberOfFloatTracks":     hkx.Int(func(a Animation) *int32 { return &a.HkaAnimationBase().NumberOfFloatTracks }),
	"extractedMotion":         hkx.Ref(func(a Animation) *interface{} { return &a.HkaAnimationBase().ExtractedMotion }),
	"annotationTracks":        hkx.Refs(func(a Animation) *[]*HkaAnnotationTrack { return &a.HkaAnimationBase().AnnotationTracks }),
}

type HkaSplineCompressedAnimation struct {
	HkaAnimation
	NumFrames               int32
	NumBlocks               int32
	MaxFramesPerBlock       int32
	MaskAndQuantizationSize int32
	BlockDuration           float32
	BlockInverseDuration    float32
	FrameDuration           float32
	BlockOffsets            []int32
	FloatBlockOffsets       []int32
	TransformOffsets        []int32
	FloatOffsets            []int32
	Data                    []byte
	Endian                  int32
}

type HkaAnimationBinding struct {
	HkReferencedObject
	OriginalSkeletonName         string
	Animation                    Animation
	TransformTrackToBoneIndices  []int32
	FloatTrackToFloatSlotIndices []int32
	BlendHint                    int32
}

type HkaDefaultAnimatedReferenceFrame struct {
	HkReferencedObject
	Up                    mgl32.Vec4
	Forward               mgl32.Vec4
	Duration              float32
	ReferenceFrameSamples []mgl32.Vec4
}

type HkaAnimationContainer struct {
	HkReferencedObject
	Skeletons   []*HkaSkeleton
	Animations  []Animation
	Bindings    []*HkaAnimationBinding
	Attachments []*HkaBoneAttachment
	Skins       []interface{}
}

func init() {
	Registry.Register("hkaAnimation", hkx.AnyVersion,
		func() interface{} { return &HkaAnimation{} },
		referencedObjectFields, animationFields)

	Registry.Register("hkaSplineCompressedAnimation", hkx.AnyVersion,
		func() interface{} { return &HkaSplineCompressedAnimation{} },
		referencedObjectFields, animationFields, hkx.Fields{
			"numFrames":               hkx.Int(func(a *HkaSplineCompressedAnimation) *int32 { return &a.NumFrames }),
			"numBlocks":               hkx.Int(func(a *HkaSplineCompressedAnimation) *int32 { return &a.NumBlocks }),
			"maxFramesPerBlock":       hkx.Int(func(a *HkaSplineCompressedAnimation) *int32 { return &a.MaxFramesPerBlock }),
			"maskAndQuantizationSize": hkx.Int(func(a *HkaSplineCompressedAnimation) *int32 { return &a.MaskAndQuantizationSize }),
			"blockDuration":           hkx.Float(func(a *HkaSplineCompressedAnimation) *float32 { return &a.BlockDuration }),
			"blockInverseDuration":    hkx.Float(func(a *HkaSplineCompressedAnimation) *float32 { return &a.BlockInverseDuration }),
			"frameDuration":           hkx.Float(func(a *HkaSplineCompressedAnimation) *float32 { return &a.FrameDuration }),
			"blockOffsets":            hkx.Ints(func(a *HkaSplineCompressedAnimation) *[]int32 { return &a.BlockOffsets }),
			"floatBlockOffsets":       hkx.Ints(func(a *HkaSplineCompressedAnimation) *[]int32 { return &a.FloatBlockOffsets }),
			"transformOffsets":        hkx.Ints(func(a *HkaSplineCompressedAnimation) *[]int32 { return &a.TransformOffsets }),
			"floatOffsets":            hkx.Ints(func(a *HkaSplineCompressedAnimation) *[]int32 { return &a.FloatOffsets }),
			"data":                    hkx.Bytes(func(a *HkaSplineCompressedAnimation) *[]byte { return &a.Data }),
			"endian":                  hkx.Int(func(a *HkaSplineCompressedAnimation) *int32 { return &a.Endian }),
		})

	Registry.Register("hkaAnimationBinding", hkx.AnyVersion,
		func() interface{} { return &HkaAnimationBinding{} },
		referencedObjectFields, hkx.Fields{
			"originalSkeletonName":         hkx.String(func(b *HkaAnimationBinding) *string { return &b.OriginalSkeletonName }),
			"animation":                    hkx.Ref(func(b *HkaAnimationBinding) *Animation { return &b.Animation }),
			"transformTrackToBoneIndices":  hkx.Ints(func(b *HkaAnimationBinding) *[]int32 { return &b.TransformTrackToBoneIndices }),
			"floatTrackToFloatSlotIndices": hkx.Ints(func(b *HkaAnimationBinding) *[]int32 { return &b.FloatTrackToFloatSlotIndices }),
			"blendHint":                    hkx.Int(func(b *HkaAnimationBinding) *int32 { return &b.BlendHint }),
		})

	Registry.Register("hkaDefaultAnimatedReferenceFrame", hkx.AnyVersion,
		func() interface{} { return &HkaDefaultAnimatedReferenceFrame{} },
		referencedObjectFields, hkx.Fields{
			"up":                    hkx.Vec4(func(f *HkaDefaultAnimatedReferenceFrame) *mgl32.Vec4 { return &f.Up }),
			"forward":               hkx.Vec4(func(f *HkaDefaultAnimatedReferenceFrame) *mgl32.Vec4 { return &f.Forward }),
			"duration":              hkx.Float(func(f *HkaDefaultAnimatedReferenceFrame) *float32 { return &f.Duration }),
			"referenceFrameSamples": hkx.Vec4s(func(f *HkaDefaultAnimatedReferenceFrame) *[]mgl32.Vec4 { return &f.ReferenceFrameSamples }),
		})

	Registry.Register("hkaAnimationContainer", hkx.AnyVersion,
		func() interface{} { return &HkaAnimationContainer{} },
		referencedObjectFields, hkx.Fields{
			"skeletons":   hkx.Refs(func(c *HkaAnimationContainer) *[]*HkaSkeleton { return &c.Skeletons }),
			"animations":  hkx.Refs(func(c *HkaAnimationContainer) *[]Animation { return &c.Animations }),
			"bindings":    hkx.Refs(func(c *HkaAnimationContainer) *[]*HkaAnimationBinding { return &c.Bindings }),
			"attachments": hkx.Refs(func(c *HkaAnimationContainer) *[]*HkaBoneAttachment { return &c.Attachments }),
			"skins":       hkx.Refs(func(c *HkaAnimationContainer) *[]interface{} { return &c.Skins }),
		})
}
