// Package curves implements cubic splines parameterised by a basis of the
// null space of their continuity constraints. A spline is the straight
// line between two boundary points plus a piecewise-cubic perturbation
// that vanishes at both ends; the free parameters live in the null space,
// so every parameter choice yields a C² curve through the endpoints.
package curves

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// degree is the number of coefficients per segment polynomial.
const degree = 4

// TangentSpace is a point on a curve together with the curve's velocity
// there.
type TangentSpace struct {
	Point  []float64
	Vector []float64
}

// CubicSpline is a constrained cubic spline between two points. The basis
// spans the null space of the continuity constraints; parameters are
// coordinates in that basis, one row per node, one column per ambient
// dimension.
type CubicSpline struct {
	P []float64 // start point
	Q []float64 // end point

	NumNodes int
	NumEdges int

	basis *mat.Dense // (4*NumEdges) x NumNodes
}

// FromNodes builds a spline between p and q represented with numNodes
// nodes (numNodes-1 polynomial segments).
func FromNodes(p, q []float64, numNodes int) (*CubicSpline, error) {
	if len(p) == 0 || len(p) != len(q) {
		return nil, fmt.Errorf("boundary points must be non-empty and of equal dimension, got %d and %d", len(p), len(q))
	}
	if numNodes < 2 {
		return nil, fmt.Errorf("spline needs at least 2 nodes, got %d", numNodes)
	}

	basis, err := computeBasis(numNodes - 1)
	if err != nil {
		return nil, err
	}
	return &CubicSpline{
		P:        append([]float64(nil), p...),
		Q:        append([]float64(nil), q...),
		NumNodes: numNodes,
		NumEdges: numNodes - 1,
		basis:    basis,
	}, nil
}

// Dim returns the ambient dimension.
func (s *CubicSpline) Dim() int { return len(s.P) }

// InitParams returns the zero parameter matrix, which makes the spline the
// straight line from P to Q.
func (s *CubicSpline) InitParams() *mat.Dense {
	return mat.NewDense(s.NumNodes, s.Dim(), nil)
}

// Evaluate returns the curve point and its velocity at time t in [0, 1].
func (s *CubicSpline) Evaluate(t float64, params *mat.Dense) (TangentSpace, error) {
	coeffs, err := s.coefficients(params)
	if err != nil {
		return TangentSpace{}, err
	}
	return TangentSpace{
		Point:  s.point(t, coeffs),
		Vector: s.velocity(t, coeffs),
	}, nil
}

// EvaluateAll evaluates the curve at each time in ts.
func (s *CubicSpline) EvaluateAll(ts []float64, params *mat.Dense) ([]TangentSpace, error) {
	coeffs, err := s.coefficients(params)
	if err != nil {
		return nil, err
	}
	out := make([]TangentSpace, len(ts))
	for i, t := range ts {
		out[i] = TangentSpace{Point: s.point(t, coeffs), Vector: s.velocity(t, coeffs)}
	}
	return out, nil
}

// Acceleration returns the second derivative of the curve at time t.
func (s *CubicSpline) Acceleration(t float64, params *mat.Dense) ([]float64, error) {
	coeffs, err := s.coefficients(params)
	if err != nil {
		return nil, err
	}

	dim := s.Dim()
	seg := s.segment(t)
	out := make([]float64, dim)
	for d := 0; d < dim; d++ {
		c2 := coeffs.At(seg*degree+2, d)
		c3 := coeffs.At(seg*degree+3, d)
		out[d] = 2*c2 + 6*c3*t
	}
	return out, nil
}

// coefficients maps parameters through the null-space basis onto per
// segment polynomial coefficients, laid out as (4*NumEdges) x dim with
// rows [c0 c1 c2 c3] per segment.
func (s *CubicSpline) coefficients(params *mat.Dense) (*mat.Dense, error) {
	r, c := params.Dims()
	if r != s.NumNodes || c != s.Dim() {
		return nil, fmt.Errorf("params must be %dx%d, got %dx%d", s.NumNodes, s.Dim(), r, c)
	}

	var coeffs mat.Dense
	coeffs.Mul(s.basis, params)
	return &coeffs, nil
}

// segment returns the polynomial segment index containing time t, clamped
// to the valid range.
func (s *CubicSpline) segment(t float64) int {
	idx := int(math.Floor(t * float64(s.NumEdges)))
	if idx < 0 {
		return 0
	}
	if idx > s.NumEdges-1 {
		return s.NumEdges - 1
	}
	return idx
}

// point evaluates the straight line plus the cubic perturbation at t.
func (s *CubicSpline) point(t float64, coeffs *mat.Dense) []float64 {
	dim := s.Dim()
	seg := s.segment(t)

	out := make([]float64, dim)
	for d := 0; d < dim; d++ {
		linear := s.P[d] + (s.Q[d]-s.P[d])*t

		perturbation := 0.0
		tp := 1.0
		for k := 0; k < degree; k++ {
			perturbation += coeffs.At(seg*degree+k, d) * tp
			tp *= t
		}
		out[d] = linear + perturbation
	}
	return out
}

// velocity evaluates the first derivative at t: the constant line slope
// plus the derivative of the segment polynomial.
func (s *CubicSpline) velocity(t float64, coeffs *mat.Dense) []float64 {
	dim := s.Dim()
	seg := s.segment(t)

	out := make([]float64, dim)
	for d := 0; d < dim; d++ {
		c1 := coeffs.At(seg*degree+1, d)
		c2 := coeffs.At(seg*degree+2, d)
		c3 := coeffs.At(seg*degree+3, d)
		out[d] = (s.Q[d] - s.P[d]) + c1 + 2*c2*t + 3*c3*t*t
	}
	return out
}

// computeBasis builds the constraint matrix for a piecewise cubic that
// vanishes at both endpoints and is C² across interior knots, and returns
// an orthonormal basis of its null space via full SVD.
func computeBasis(numEdges int) (*mat.Dense, error) {
	n := degree * numEdges
	rows := 3*numEdges - 1
	constraints := mat.NewDense(rows, n, nil)

	// Endpoint rows: the perturbation is zero at t=0 and t=1.
	constraints.Set(0, 0, 1)
	for j := n - degree; j < n; j++ {
		constraints.Set(1, j, 1)
	}

	// Interior knots at t_i = i/numEdges: value, first, and second
	// derivative agree across adjacent segments.
	row := 2
	for _, fill := range []func(t float64) [degree]float64{
		func(t float64) [degree]float64 { return [degree]float64{1, t, t * t, t * t * t} },
		func(t float64) [degree]float64 { return [degree]float64{0, 1, 2 * t, 3 * t * t} },
		func(t float64) [degree]float64 { return [degree]float64{0, 0, 2, 6 * t} },
	} {
		for i := 0; i < numEdges-1; i++ {
			t := float64(i+1) / float64(numEdges)
			si := degree * i
			f := fill(t)
			for k := 0; k < degree; k++ {
				constraints.Set(row, si+k, f[k])
				constraints.Set(row, si+degree+k, -f[k])
			}
			row++
		}
	}

	var svd mat.SVD
	if !svd.Factorize(constraints, mat.SVDFullV) {
		return nil, fmt.Errorf("constraint SVD failed for %d edges", numEdges)
	}

	var v mat.Dense
	svd.VTo(&v)

	// The trailing right singular vectors span the null space; the
	// constraint matrix has full row rank, so its rank equals rows.
	basis := mat.DenseCopyOf(v.Slice(0, n, rows, n))
	return basis, nil
}
