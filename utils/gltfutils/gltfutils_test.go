package gltfutils

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/cruisechaser/havok_browser/anim"
	"github.com/cruisechaser/havok_browser/anim/spline"
	"github.com/cruisechaser/havok_browser/hkx"
	"github.com/cruisechaser/havok_browser/hkx/hkdef"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

func testSkeleton() *hkdef.HkaSkeleton {
	return &hkdef.HkaSkeleton{
		Name:          "skel",
		ParentIndices: []int32{-1, 0, 1},
		Bones:         []*hkdef.HkaBone{{Name: "root"}, {Name: "spine"}, nil},
		ReferencePose: []hkx.Transform{
			{Translation: mgl32.Vec3{0, 1, 0}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
			{Translation: mgl32.Vec3{0, 0, 2}, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		},
	}
}

func TestExportSkeleton(t *testing.T) {
	doc := NewDocument()
	gse, err := ExportSkeleton(doc, testSkeleton())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(gse.JointNodes, []uint32{0, 1, 2}) {
		t.Errorf("JointNodes=%v; expected [0 1 2]", gse.JointNodes)
	}
	if !reflect.DeepEqual(doc.Scenes[0].Nodes, []uint32{0}) {
		t.Errorf("scene roots=%v; expected [0]", doc.Scenes[0].Nodes)
	}
	if !reflect.DeepEqual(doc.Nodes[0].Children, []uint32{1}) || !reflect.DeepEqual(doc.Nodes[1].Children, []uint32{2}) {
		t.Errorf("children %v %v", doc.Nodes[0].Children, doc.Nodes[1].Children)
	}
	for i, want := range []string{"root", "spine", "bone_2"} {
		if doc.Nodes[i].Name != want {
			t.Errorf("node %d name %q; expected %q", i, doc.Nodes[i].Name, want)
		}
	}
	if doc.Nodes[1].Translation != [3]float32{0, 0, 2} {
		t.Errorf("spine translation %v", doc.Nodes[1].Translation)
	}
	if doc.Nodes[2].Rotation != [4]float32{0, 0, 0, 1} {
		t.Errorf("bone without pose rotation %v; expected identity", doc.Nodes[2].Rotation)
	}

	bad := testSkeleton()
	bad.ParentIndices[2] = 7
	if _, err := ExportSkeleton(NewDocument(), bad); err == nil {
		t.Errorf("parent outside skeleton accepted")
	}
}

func TestSampleTimes(t *testing.T) {
	got := SampleTimes(3, []float32{0, 1, 2}, []float32{0}, nil, []float32{2, 0.5})
	if want := []float32{0, 0.5, 1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("SampleTimes=%v; expected %v", got, want)
	}
	if got := SampleTimes(0); !reflect.DeepEqual(got, []float32{0}) {
		t.Errorf("SampleTimes(0)=%v; expected [0]", got)
	}
}

func TestExportAnimation(t *testing.T) {
	doc := NewDocument()
	gse, err := ExportSkeleton(doc, testSkeleton())
	if err != nil {
		t.Fatal(err)
	}

	a := anim.NewConcatAnimation(
		anim.NewStaticAnimation(1, map[int]mgl32.Vec3{1: {1, 0, 0}}, nil, nil),
		anim.NewStaticAnimation(1, map[int]mgl32.Vec3{1: {2, 0, 0}}, nil, nil),
	)
	index, err := ExportAnimation(doc, "walk", a, gse.JointNodes)
	if err != nil {
		t.Fatal(err)
	}

	ga := doc.Animations[index]
	if len(ga.Channels) != 3 || len(ga.Samplers) != 3 {
		t.Fatalf("%d channels, %d samplers; expected 3 each", len(ga.Channels), len(ga.Samplers))
	}
	paths := []gltf.TRSProperty{gltf.TRSTranslation, gltf.TRSRotation, gltf.TRSScale}
	for i, ch := range ga.Channels {
		if *ch.Target.Node != 1 || ch.Target.Path != paths[i] {
			t.Errorf("channel %d targets node %d path %v", i, *ch.Target.Node, ch.Target.Path)
		}
	}
	keys := doc.Accessors[*ga.Samplers[0].Input]
	if keys.Count != 3 {
		t.Errorf("key count %d; expected 3 (0, 1 and the closing 2)", keys.Count)
	}

	var buf bytes.Buffer
	if err := ExportBinary(&buf, doc); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("glTF")) {
		t.Errorf("binary export does not start with glTF magic")
	}

	if _, err := ExportAnimation(doc, "far", anim.NewStaticAnimation(1, map[int]mgl32.Vec3{9: {}}, nil, nil), gse.JointNodes); err == nil {
		t.Errorf("bone outside skeleton accepted")
	}
}

func TestFlatSkeleton(t *testing.T) {
	skel := flatSkeleton("flat", []anim.Animation{
		anim.NewStaticAnimation(1, map[int]mgl32.Vec3{3: {}}, nil, nil),
		anim.NewStaticAnimation(1, nil, map[int]mgl32.Quat{1: mgl32.QuatIdent()}, nil),
	})
	if len(skel.Bones) != 4 {
		t.Fatalf("flatSkeleton bones=%d; expected 4", len(skel.Bones))
	}
	if !reflect.DeepEqual(skel.ParentIndices, []int32{-1, -1, -1, -1}) {
		t.Errorf("flatSkeleton parents=%v; expected all roots", skel.ParentIndices)
	}

	doc := NewDocument()
	gse, err := ExportSkeleton(doc, skel)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Scenes[0].Nodes) != 4 || doc.Nodes[gse.JointNodes[2]].Name != "bone_2" {
		t.Errorf("flat export scene=%v; expected 4 roots named bone_N", doc.Scenes[0].Nodes)
	}
}

func TestRestPose(t *testing.T) {
	rest := RestPose(testSkeleton())
	if rest.Duration() != 0 {
		t.Errorf("RestPose Duration=%v; expected 0", rest.Duration())
	}
	if bones := rest.AffectedBoneIndices(); !reflect.DeepEqual(bones, []int{0, 1}) {
		t.Errorf("RestPose bones=%v; expected [0 1]", bones)
	}
	if v := rest.Translation(1).Interpolate(0); v != (mgl32.Vec3{0, 0, 2}) {
		t.Errorf("RestPose translation(1)=%v; expected [0 0 2]", v)
	}
	if v := rest.Translation(2).Interpolate(0); v != anim.IdentityTranslation {
		t.Errorf("RestPose translation(2)=%v; expected identity", v)
	}
	if q := rest.Rotation(2).Interpolate(0); q != anim.IdentityRotation {
		t.Errorf("RestPose rotation(2)=%v; expected identity", q)
	}
}

// unsupportedRotationBinding has one track whose static rotation uses 24 bit quaternions.
func unsupportedRotationBinding() *hkdef.HkaAnimationBinding {
	data := append([]byte{byte(spline.ThreeComp24) << 2, 0, byte(spline.QuaternionStatic), 0}, make([]byte, 16)...)
	sca := &hkdef.HkaSplineCompressedAnimation{
		NumFrames:         2,
		NumBlocks:         1,
		MaxFramesPerBlock: 2,
		BlockDuration:     1,
		FrameDuration:     1,
		BlockOffsets:      []int32{0},
		Data:              data,
	}
	sca.Duration = 1
	sca.NumberOfTransformTracks = 1
	return &hkdef.HkaAnimationBinding{OriginalSkeletonName: "skel", Animation: sca}
}

func TestExportContainerDecodeError(t *testing.T) {
	c := &hkdef.HkaAnimationContainer{
		Skeletons: []*hkdef.HkaSkeleton{testSkeleton()},
		Bindings:  []*hkdef.HkaAnimationBinding{unsupportedRotationBinding()},
	}
	doc, err := ExportContainer(c, nil)
	if !errors.Is(err, spline.ErrQuantization) {
		t.Errorf("ExportContainer(threecomp24)=%v; expected ErrQuantization", err)
	}
	if doc != nil {
		t.Errorf("ExportContainer returned a document with %d animations alongside the error", len(doc.Animations))
	}

	c.Bindings[0].OriginalSkeletonName = "other"
	if _, err := ExportContainer(c, nil); err != nil {
		t.Errorf("binding for another skeleton: %v; expected it to be skipped", err)
	}
}
