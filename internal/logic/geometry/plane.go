package geometry

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/hljgirl/distortionizer/internal/config"
)

const (
	// minFitSamples is the smallest table the plane fit accepts.
	minFitSamples = 3

	// parallelEps bounds the projection denominator away from zero.
	parallelEps = 1e-12

	// spreadEps scales the depth-squared threshold below which the
	// horizontal sample scatter counts as degenerate.
	spreadEps = 1e-12

	// originEps scales the depth threshold below which a fitted plane
	// counts as passing through the viewer origin.
	originEps = 1e-9
)

// Plane is the screen plane Ax + By + Cz + D = 0. The normal (A, B, C)
// has unit length and D > 0, so the plane sits at distance D from the
// viewer origin with the normal pointing back toward it.
type Plane struct {
	A, B, C, D float64
}

// Normal returns the unit plane normal.
func (p Plane) Normal() r3.Vector { return r3.Vector{X: p.A, Y: p.B, Z: p.C} }

// DistanceToOrigin returns the perpendicular distance from the viewer
// origin to the plane.
func (p Plane) DistanceToOrigin() float64 { return math.Abs(p.D) }

// ProjectFromOrigin extends the ray from the origin along v until it
// meets the plane. A v parallel to the plane yields ErrParallelToPlane,
// a v pointing away from it ErrBehindPlane.
func (p Plane) ProjectFromOrigin(v r3.Vector) (r3.Vector, error) {
	denom := p.A*v.X + p.B*v.Y + p.C*v.Z
	if math.Abs(denom) < parallelEps {
		return r3.Vector{}, ErrParallelToPlane
	}
	s := -p.D / denom
	if s <= 0 {
		return r3.Vector{}, ErrBehindPlane
	}
	return v.Mul(s), nil
}

// ReflectedHorizontally mirrors the plane about x = 0.
func (p Plane) ReflectedHorizontally() Plane {
	return Plane{A: -p.A, B: p.B, C: p.C, D: p.D}
}

// FitPlane determines the screen plane from the sample directions.
//
// With field angles the screen is flat at the configured depth along
// the view axis, so the plane is fixed and nothing is fit. In the
// general mode the directions are pushed out to the configured depth
// and a total-least-squares line through their horizontal (x, z)
// footprint gives the plane. The screen is constrained to stay
// vertical, so the fit is two-dimensional.
func FitPlane(cfg *config.Config, ms []Mapping) (Plane, error) {
	if len(ms) < minFitSamples {
		return Plane{}, geomErrf("fit", "need at least %d samples, got %d", minFitSamples, len(ms))
	}
	depth := cfg.DepthMeters()
	if cfg.UseFieldAngles() {
		return Plane{C: 1, D: depth}, nil
	}

	// Horizontal scatter of the depth-scaled directions.
	var mx, mz float64
	for _, m := range ms {
		mx += m.Dir.X * depth
		mz += m.Dir.Z * depth
	}
	n := float64(len(ms))
	mx /= n
	mz /= n

	var sxx, sxz, szz float64
	for _, m := range ms {
		dx := m.Dir.X*depth - mx
		dz := m.Dir.Z*depth - mz
		sxx += dx * dx
		sxz += dx * dz
		szz += dz * dz
	}
	sxx /= n - 1
	sxz /= n - 1
	szz /= n - 1

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(2, []float64{sxx, sxz, sxz, szz}), true); !ok {
		return Plane{}, geomErrf("fit", "eigendecomposition of the sample scatter failed")
	}
	vals := eig.Values(nil)
	if vals[1] < spreadEps*depth*depth {
		return Plane{}, geomErrf("fit", "no horizontal spread in the sample directions")
	}

	// The eigenvector of the smallest eigenvalue is the fitted line's
	// normal, which is the plane normal once the vertical component is
	// pinned to zero.
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	a := vecs.At(0, 0)
	c := vecs.At(1, 0)
	d := -(a*mx + c*mz)
	if d < 0 {
		a, c, d = -a, -c, -d
	}
	if d < originEps*depth {
		return Plane{}, geomErrf("fit", "fitted screen plane passes through the viewer origin")
	}
	return Plane{A: a, C: c, D: d}, nil
}
