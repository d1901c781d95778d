// Package gltfutils exports skeletons and decoded animations as glTF scenes.
package gltfutils

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/cruisechaser/havok_browser/anim"
	"github.com/cruisechaser/havok_browser/anim/spline"
	"github.com/cruisechaser/havok_browser/hkx/hkdef"
	"github.com/cruisechaser/havok_browser/utils"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

type GLTFSkeletonExported struct {
	JointNodes []uint32
}

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// RestPose is the reference pose of skel as a zero-length animation.
// Bones past the end of the reference pose keep identity transforms.
func RestPose(skel *hkdef.HkaSkeleton) *anim.StaticAnimation {
	translations := make(map[int]mgl32.Vec3, len(skel.ReferencePose))
	rotations := make(map[int]mgl32.Quat, len(skel.ReferencePose))
	scales := make(map[int]mgl32.Vec3, len(skel.ReferencePose))
	for iBone, pose := range skel.ReferencePose {
		translations[iBone] = pose.Translation
		rotations[iBone] = pose.Rotation
		scales[iBone] = pose.Scale
	}
	return anim.NewStaticAnimation(0, translations, rotations, scales)
}

// ExportSkeleton adds one node per bone in its reference pose. Root bones
// are added to the default scene.
func ExportSkeleton(doc *gltf.Document, skel *hkdef.HkaSkeleton) (*GLTFSkeletonExported, error) {
	gse := &GLTFSkeletonExported{
		JointNodes: make([]uint32, len(skel.Bones)),
	}

	rest := RestPose(skel)
	for iBone, bone := range skel.Bones {
		rotation := rest.Rotation(iBone).Interpolate(0)
		node := &gltf.Node{
			Name:        fmt.Sprintf("bone_%d", iBone),
			Translation: rest.Translation(iBone).Interpolate(0),
			Rotation:    rotation.V.Vec4(rotation.W),
			Scale:       rest.Scale(iBone).Interpolate(0),
		}
		if bone != nil && bone.Name != "" {
			node.Name = bone.Name
		}

		gse.JointNodes[iBone] = uint32(len(doc.Nodes))
		doc.Nodes = append(doc.Nodes, node)
	}

	for iBone := range skel.Bones {
		parent := -1
		if iBone < len(skel.ParentIndices) {
			parent = int(skel.ParentIndices[iBone])
		}
		if parent < 0 {
			doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, gse.JointNodes[iBone])
			continue
		}
		if parent >= len(skel.Bones) || parent == iBone {
			return nil, errors.Errorf("bone %d has invalid parent %d", iBone, parent)
		}
		parentNode := doc.Nodes[gse.JointNodes[parent]]
		parentNode.Children = append(parentNode.Children, gse.JointNodes[iBone])
	}

	return gse, nil
}

// SampleTimes merges the frame grids of the given tracks and closes the grid at duration.
func SampleTimes(duration float32, grids ...[]float32) []float32 {
	seen := map[float32]struct{}{0: {}}
	for _, grid := range grids {
		for _, t := range grid {
			seen[t] = struct{}{}
		}
	}
	if duration > 0 {
		seen[duration] = struct{}{}
	}

	times := make([]float32, 0, len(seen))
	for t := range seen {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

// sample evaluates tr at times. The end of the timeline is sampled just
// before duration, so looping tracks do not wrap back to their first frame.
func sample[V comparable](tr anim.Track[V], times []float32, duration float32) []V {
	values := make([]V, len(times))
	for i, t := range times {
		if duration > 0 && t >= duration {
			t = math.Nextafter32(duration, 0)
		}
		values[i] = tr.Interpolate(t)
	}
	return values
}

func addChannel(a *gltf.Animation, keys, values uint32, node uint32, path gltf.TRSProperty) {
	a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(keys),
		Output:        gltf.Index(values),
		Interpolation: gltf.InterpolationLinear,
	})
	a.Channels = append(a.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
		Target: gltf.ChannelTarget{
			Node: gltf.Index(node),
			Path: path,
		},
	})
}

// ExportAnimation samples every affected bone of a and appends one glTF animation.
func ExportAnimation(doc *gltf.Document, name string, a anim.Animation, joints []uint32) (uint32, error) {
	ga := &gltf.Animation{Name: name}
	duration := a.Duration()

	for _, bone := range a.AffectedBoneIndices() {
		if bone < 0 || bone >= len(joints) {
			return 0, errors.Errorf("animation %q moves bone %d, skeleton has %d", name, bone, len(joints))
		}
		translation, rotation, scale := a.Translation(bone), a.Rotation(bone), a.Scale(bone)
		times := SampleTimes(duration, translation.FrameTimes(), rotation.FrameTimes(), scale.FrameTimes())
		keys := modeler.WriteAccessor(doc, gltf.TargetNone, times)

		translations := make([][3]float32, len(times))
		for i, v := range sample(translation, times, duration) {
			translations[i] = v
		}
		addChannel(ga, keys, modeler.WriteAccessor(doc, gltf.TargetNone, translations), joints[bone], gltf.TRSTranslation)

		rotations := make([][4]float32, len(times))
		for i, q := range sample(rotation, times, duration) {
			rotations[i] = q.V.Vec4(q.W)
		}
		addChannel(ga, keys, modeler.WriteAccessor(doc, gltf.TargetNone, rotations), joints[bone], gltf.TRSRotation)

		scales := make([][3]float32, len(times))
		for i, v := range sample(scale, times, duration) {
			scales[i] = v
		}
		addChannel(ga, keys, modeler.WriteAccessor(doc, gltf.TargetNone, scales), joints[bone], gltf.TRSScale)
	}

	doc.Animations = append(doc.Animations, ga)
	return uint32(len(doc.Animations) - 1), nil
}

// flatSkeleton stands in for the skeleton of animation-only files:
// every bone is an unnamed root in identity pose.
func flatSkeleton(name string, animations []anim.Animation) *hkdef.HkaSkeleton {
	count := 0
	for _, a := range animations {
		for _, bone := range a.AffectedBoneIndices() {
			if bone+1 > count {
				count = bone + 1
			}
		}
	}
	skel := &hkdef.HkaSkeleton{
		Name:          name,
		ParentIndices: make([]int32, count),
		Bones:         make([]*hkdef.HkaBone, count),
	}
	for i := range skel.ParentIndices {
		skel.ParentIndices[i] = -1
	}
	return skel
}

// ExportContainer exports the first skeleton of c and every binding that
// targets it. Without a skeleton the bones are exported flat.
func ExportContainer(c *hkdef.HkaAnimationContainer, log *utils.Logger) (*gltf.Document, error) {
	var skel *hkdef.HkaSkeleton
	if len(c.Skeletons) != 0 {
		skel = c.Skeletons[0]
	}

	names := make([]string, 0, len(c.Bindings))
	animations := make([]anim.Animation, 0, len(c.Bindings))
	for iBinding, binding := range c.Bindings {
		if binding == nil {
			continue
		}
		if skel != nil && binding.OriginalSkeletonName != "" && binding.OriginalSkeletonName != skel.Name {
			log.Printf("[gltf] binding %d targets skeleton %q, skipping", iBinding, binding.OriginalSkeletonName)
			continue
		}
		a, err := spline.Decode(binding, spline.Options{Log: log})
		if err != nil {
			return nil, errors.Wrapf(err, "binding %d", iBinding)
		}
		names = append(names, fmt.Sprintf("binding_%d", iBinding))
		animations = append(animations, a)
	}

	if skel == nil {
		if len(animations) == 0 {
			return nil, errors.New("container has neither skeleton nor animations")
		}
		skel = flatSkeleton("flat", animations)
	}

	doc := NewDocument()
	gse, err := ExportSkeleton(doc, skel)
	if err != nil {
		return nil, errors.Wrapf(err, "skeleton %q", skel.Name)
	}
	for i, a := range animations {
		if _, err := ExportAnimation(doc, names[i], a, gse.JointNodes); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
