package hkdef

import (
	"github.com/cruisechaser/havok_browser/hkx"

	"github.com/go-gl/mathgl/mgl32"
)

type HkaBone struct {
	Name            string
	LockTranslation bool
}

type HkaSkeleton struct {
	HkReferencedObject
	Name            string
	ParentIndices   []int32
	Bones           []*HkaBone
	ReferencePose   []hkx.Transform
	ReferenceFloats []float32
	FloatSlots      []string
}

// BoneIndex returns the index of the named bone or -1.
func (s *HkaSkeleton) BoneIndex(name string) int {
	for i, b := range s.Bones {
		if b != nil && b.Name == name {
			return i
		}
	}
	return -1
}

type HkaBoneAttachment struct {
	HkReferencedObject
	OriginalSkeletonName string
	BoneFromAttachment   mgl32.Mat4
	Attachment           interface{}
	Name                 string
	BoneIndex            int32
}

func init() {
	Registry.Register("hkaBone", hkx.AnyVersion,
		func() interface{} { return &HkaBone{} },
		hkx.Fields{
			"name":            hkx.String(func(b *HkaBone) *string { return &b.Name }),
			"lockTranslation": hkx.Bool(func(b *HkaBone) *bool { return &b.LockTranslation }),
		})

	Registry.Register("hkaSkeleton", hkx.AnyVersion,
		func() interface{} { return &HkaSkeleton{} },
		referencedObjectFields, hkx.Fields{
			"name":            hkx.String(func(s *HkaSkeleton) *string { return &s.Name }),
			"parentIndices":   hkx.Ints(func(s *HkaSkeleton) *[]int32 { return &s.ParentIndices }),
			"bones":           hkx.Refs(func(s *HkaSkeleton) *[]*HkaBone { return &s.Bones }),
			"referencePose":   hkx.Transforms(func(s *HkaSkeleton) *[]hkx.Transform { return &s.ReferencePose }),
			"referenceFloats": hkx.Floats(func(s *HkaSkeleton) *[]float32 { return &s.ReferenceFloats }),
			"floatSlots":      hkx.Strings(func(s *HkaSkeleton) *[]string { return &s.FloatSlots }),
		})

	Registry.Register("hkaBoneAttachment", hkx.AnyVersion,
		func() interface{} { return &HkaBoneAttachment{} },
		referencedObjectFields, hkx.Fields{
			"originalSkeletonName": hkx.String(func(a *HkaBoneAttachment) *string { return &a.OriginalSkeletonName }),
			"boneFromAttachment":   hkx.Mat4(func(a *HkaBoneAttachment) *mgl32.Mat4 { return &a.BoneFromAttachment }),
			"attachment":           hkx.Ref(func(a *HkaBoneAttachment) *interface{} { return &a.Attachment }),
			"name":                 hkx.String(func(a *HkaBoneAttachment) *string { return &a.Name }),
			"boneIndex":            hkx.Int(func(a *HkaBoneAttachment) *int32 { return &a.BoneIndex }),
		})
}
