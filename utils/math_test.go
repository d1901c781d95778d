package utils

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestQuatToEuler(t *testing.T) {
	for _, test := range []struct {
		q    mgl32.Quat
		want mgl32.Vec3
	}{
		{mgl32.QuatIdent(), mgl32.Vec3{0, 0, 0}},
		{mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{1, 0, 0}), mgl32.Vec3{90, 0, 0}},
		{mgl32.QuatRotate(math.Pi/4, mgl32.Vec3{0, 0, 1}), mgl32.Vec3{0, 0, 45}},
		{mgl32.QuatRotate(-math.Pi/2, mgl32.Vec3{0, 1, 0}), mgl32.Vec3{0, -90, 0}},
	} {
		got := RoundV3(RadiansToDegreeV3(QuatToEuler(test.q)), 2)
		if !got.ApproxEqualThreshold(test.want, 0.05) {
			t.Errorf("QuatToEuler(%v)=%v degrees; expected %v", test.q, got, test.want)
		}
	}
}
