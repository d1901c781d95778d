// Package nurbs evaluates B-spline curves with byte knots, as stored in
// spline compressed animation blocks.
package nurbs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Curve is a non-rational B-spline. Every control point has Dim components.
type Curve struct {
	Dim           int
	Degree        int
	Knots         []byte
	ControlPoints [][]float32
}

func New(dim, degree int, knots []byte, controlPoints [][]float32) (*Curve, error) {
	if degree < 0 {
		return nil, errors.Errorf("negative degree %d", degree)
	}
	if len(controlPoints) == 0 {
		return nil, errors.New("curve without control points")
	}
	if want := len(controlPoints) + degree + 1; len(knots) != want {
		return nil, errors.Errorf("%d knots for %d control points of degree %d; expected %d",
			len(knots), len(controlPoints), degree, want)
	}
	if degree >= len(controlPoints) {
		return nil, errors.Errorf("degree %d needs more than %d control points", degree, len(controlPoints))
	}
	for i, cp := range controlPoints {
		if len(cp) != dim {
			return nil, errors.Errorf("control point %d has %d components; expected %d", i, len(cp), dim)
		}
	}
	return &Curve{
		Dim:           dim,
		Degree:        degree,
		Knots:         knots,
		ControlPoints: controlPoints,
	}, nil
}

func (c *Curve) String() string {
	return fmt.Sprintf("nurbs(dim %d, degree %d, %d points)", c.Dim, c.Degree, len(c.ControlPoints))
}

// findSpan returns the index of the knot interval containing t.
func (c *Curve) findSpan(t float32) int {
	n := len(c.ControlPoints)
	if t >= float32(c.Knots[n]) {
		return n - 1
	}
	if t < float32(c.Knots[c.Degree]) {
		return c.Degree
	}

	low, high := c.Degree, n
	mid := (low + high) / 2
	for t < float32(c.Knots[mid]) || t >= float32(c.Knots[mid+1]) {
		if t < float32(c.Knots[mid]) {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// basis fills the degree+1 non-zero basis function values at span.
func (c *Curve) basis(span int, t float32) []float32 {
	res := make([]float32, c.Degree+1)
	res[0] = 1
	for i := 0; i < c.Degree; i++ {
		for j := i; j >= 0; j-- {
			a := (t - float32(c.Knots[span-j])) /
				float32(int(c.Knots[span+i+1-j])-int(c.Knots[span-j]))
			tmp := res[j] * a
			res[j+1] += res[j] - tmp
			res[j] = tmp
		}
	}
	return res
}

// Evaluate returns the curve point at t, in knot units.
func (c *Curve) Evaluate(t float32) []float32 {
	span := c.findSpan(t)
	weights := c.basis(span, t)

	v := make([]float32, c.Dim)
	for i, w := range weights {
		cp := c.ControlPoints[span-i]
		for k := range v {
			v[k] += cp[k] * w
		}
	}
	return v
}
