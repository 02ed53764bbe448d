// Package kernel computes the per-spring element stiffness matrix and
// strain energy for a 2-DOF-per-node axial spring, and memoizes the
// stiffness matrix by canonical (pair, k) key across an optimizer run.
//
// DOF order within one element is fixed: [uix, uiz, ujx, ujz].
//
// Errors:
//
//	ErrZeroLengthSpring - the two endpoints coincide (or produce a
//	                      non-finite length).
package kernel

import (
	"errors"
	"math"
)

// ErrZeroLengthSpring indicates a spring whose endpoints are coincident,
// so no direction cosine can be formed.
var ErrZeroLengthSpring = errors.New("kernel: zero-length spring")

// Ke is the 4×4 element stiffness matrix for one spring, in DOF order
// [uix, uiz, ujx, ujz].
type Ke [4][4]float64

// ElementStiffness computes the element stiffness matrix for a spring of
// stiffness k between (xi, zi) and (xj, zj).
//
//	Δx = xj-xi, Δz = zj-zi, L = hypot(Δx, Δz)
//	c = Δx/L, s = Δz/L
//	Ke = k · [[ cc, cs,-cc,-cs],
//	          [ cs, ss,-cs,-ss],
//	          [-cc,-cs, cc, cs],
//	          [-cs,-ss, cs, ss]]
//
// Returns ErrZeroLengthSpring if L is not strictly positive and finite.
func ElementStiffness(xi, zi, xj, zj, k float64) (Ke, error) {
	dx := xj - xi
	dz := zj - zi
	l := math.Hypot(dx, dz)
	if !(l > 0) || math.IsInf(l, 0) {
		return Ke{}, ErrZeroLengthSpring
	}
	c := dx / l
	s := dz / l

	cc := k * c * c
	cs := k * c * s
	ss := k * s * s

	return Ke{
		{cc, cs, -cc, -cs},
		{cs, ss, -cs, -ss},
		{-cc, -cs, cc, cs},
		{-cs, -ss, cs, ss},
	}, nil
}

// Energy computes the strain energy of one spring given its element
// displacement vector ue = [uix, uiz, ujx, ujz], via the quadratic form
// ½·ueᵀ·Ke·ue.
func Energy(ke Ke, ue [4]float64) float64 {
	var kue [4]float64
	for r := 0; r < 4; r++ {
		var sum float64
		for c := 0; c < 4; c++ {
			sum += ke[r][c] * ue[c]
		}
		kue[r] = sum
	}
	var quad float64
	for r := 0; r < 4; r++ {
		quad += ue[r] * kue[r]
	}
	return 0.5 * quad
}

// EnergyClosed computes the same strain energy via the closed form
// ½·k·Δ², where Δ = c·(ujx-uix) + s·(ujz-uiz). EnergyClosed and Energy
// must agree to within floating-point tolerance for any valid spring —
// this is the duality invariant tested in kernel_test.go.
func EnergyClosed(xi, zi, xj, zj, k float64, ue [4]float64) (float64, error) {
	dx := xj - xi
	dz := zj - zi
	l := math.Hypot(dx, dz)
	if !(l > 0) || math.IsInf(l, 0) {
		return 0, ErrZeroLengthSpring
	}
	c := dx / l
	s := dz / l
	delta := c*(ue[2]-ue[0]) + s*(ue[3]-ue[1])
	return 0.5 * k * delta * delta, nil
}
