package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// result in radians, as roll (x), pitch (y), yaw (z)
func QuatToEuler(q mgl32.Quat) (e mgl32.Vec3) {
	sinrCosp := float64(2 * (q.W*q.X() + q.Y()*q.Z()))
	cosrCosp := float64(1 - 2*(q.X()*q.X()+q.Y()*q.Y()))
	e[0] = float32(math.Atan2(sinrCosp, cosrCosp))

	sinp := float64(2 * (q.W*q.Y() - q.Z()*q.X()))
	if math.Abs(sinp) >= 1 {
		e[1] = float32(math.Copysign(math.Pi/2, sinp))
	} else {
		e[1] = float32(math.Asin(sinp))
	}

	sinyCosp := float64(2 * (q.W*q.Z() + q.X()*q.Y()))
	cosyCosp := float64(1 - 2*(q.Y()*q.Y()+q.Z()*q.Z()))
	e[2] = float32(math.Atan2(sinyCosp, cosyCosp))

	return e
}

func RadiansToDegreeV3(v mgl32.Vec3) mgl32.Vec3 {
	return v.Mul(180 / math.Pi)
}

// RoundV3 rounds every component to the given number of decimals for display.
func RoundV3(v mgl32.Vec3, decimals int) mgl32.Vec3 {
	scale := math.Pow(10, float64(decimals))
	for i := range v {
		v[i] = float32(math.Round(float64(v[i])*scale) / scale)
	}
	return v
}
