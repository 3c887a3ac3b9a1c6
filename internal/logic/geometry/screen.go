package geometry

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/hljgirl/distortionizer/internal/config"
)

// ScreenDescription is the virtual screen implied by the calibration
// table: monocular field of view, eye overlap, center of projection
// and the screen plane itself.
type ScreenDescription struct {
	HFOVDegrees    float64
	VFOVDegrees    float64
	OverlapPercent float64
	XCOP           float64
	YCOP           float64
	Plane          Plane
}

// ReflectedHorizontally derives the mirrored eye's description. Only
// the horizontal center of projection and the plane orientation
// change; field of view and overlap are symmetric.
func (s *ScreenDescription) ReflectedHorizontally() *ScreenDescription {
	out := *s
	out.XCOP = 1 - s.XCOP
	out.Plane = s.Plane.ReflectedHorizontally()
	return &out
}

// ScreenFrame carries the fitted geometry the mesh builder and the
// verifier need: the plane, the extremal projected points and the
// bounds the mesh normalizes against.
type ScreenFrame struct {
	Plane       Plane
	ScreenLeft  r3.Vector
	ScreenRight r3.Vector
	MaxY        float64
	Bounds      RectBounds
}

// LocalX returns the horizontal plane-local coordinate of a projected
// point. The horizontal unit axis is (C, 0, -A), pointing screen
// right; the perpendicular foot of the origin lands at local (0, 0).
func (f *ScreenFrame) LocalX(p r3.Vector) float64 {
	return p.X*f.Plane.C - p.Z*f.Plane.A
}

// LocalY returns the vertical plane-local coordinate of a projected
// point.
func (f *ScreenFrame) LocalY(p r3.Vector) float64 { return p.Y }

// UV normalizes a projected point against the frame bounds.
func (f *ScreenFrame) UV(p r3.Vector) (u, v float64) {
	u = (f.LocalX(p) - f.Bounds.Left) / f.Bounds.Width()
	v = (f.LocalY(p) - f.Bounds.Bottom) / f.Bounds.Height()
	return u, v
}

// PointAt maps normalized frame coordinates back to the 3D point on
// the plane, inverting UV. The horizontal axis is (C, 0, -A) and the
// perpendicular foot of the origin sits at -D times the normal.
func (f *ScreenFrame) PointAt(u, v float64) r3.Vector {
	x := f.Bounds.Left + u*f.Bounds.Width()
	y := f.Bounds.Bottom + v*f.Bounds.Height()
	return r3.Vector{
		X: x*f.Plane.C - f.Plane.D*f.Plane.A,
		Y: y,
		Z: -x*f.Plane.A - f.Plane.D*f.Plane.C,
	}
}

// ReflectedHorizontally mirrors the frame about x = 0: the left edge
// of the mirrored screen is the mirror image of the right edge and
// vice versa.
func (f *ScreenFrame) ReflectedHorizontally() *ScreenFrame {
	return &ScreenFrame{
		Plane:       f.Plane.ReflectedHorizontally(),
		ScreenLeft:  mirrorX(f.ScreenRight),
		ScreenRight: mirrorX(f.ScreenLeft),
		MaxY:        f.MaxY,
		Bounds:      f.Bounds.ReflectedHorizontally(),
	}
}

func mirrorX(v r3.Vector) r3.Vector { return r3.Vector{X: -v.X, Y: v.Y, Z: v.Z} }

// BuildScreen derives the screen description from the fitted plane and
// the full mapping table. Field of view and overlap always come from
// the data extremes; the center of projection and the frame bounds use
// the configured screen bounds instead when those are supplied.
func BuildScreen(cfg *config.Config, pl Plane, ms []Mapping) (*ScreenDescription, *ScreenFrame, error) {
	if len(ms) == 0 {
		return nil, nil, geomErrf("screen", "no samples")
	}

	// A horizontal span of 180 degrees or more cannot land on a single
	// flat screen. Checked on the raw rotations: after projection the
	// span always collapses below 180.
	minRot, maxRot := math.Inf(1), math.Inf(-1)
	for _, m := range ms {
		rot := RotationAboutY(m.Dir)
		minRot = math.Min(minRot, rot)
		maxRot = math.Max(maxRot, rot)
	}
	if maxRot-minRot >= math.Pi {
		return nil, nil, geomErrf("screen",
			"horizontal span is %.1f degrees, a flat screen needs less than 180", radToDeg(maxRot-minRot))
	}

	frame := &ScreenFrame{Plane: pl}
	pts := make([]r3.Vector, len(ms))
	for i, m := range ms {
		p, err := pl.ProjectFromOrigin(m.Dir)
		if err != nil {
			return nil, nil, sampleErr("screen", i, err)
		}
		pts[i] = p
	}

	// Extremal projected points along the horizontal axis. Strict
	// comparisons keep the first occurrence, so duplicated samples
	// cannot shift the bounds.
	iLeft, iRight := 0, 0
	for i, p := range pts {
		x := frame.LocalX(p)
		if x < frame.LocalX(pts[iLeft]) {
			iLeft = i
		}
		if x > frame.LocalX(pts[iRight]) {
			iRight = i
		}
	}
	maxY := 0.0
	for _, p := range pts {
		maxY = math.Max(maxY, math.Abs(p.Y))
	}

	frame.ScreenLeft = pts[iLeft]
	frame.ScreenRight = pts[iRight]
	frame.MaxY = maxY

	data := RectBounds{
		Left:   frame.LocalX(pts[iLeft]),
		Right:  frame.LocalX(pts[iRight]),
		Top:    maxY,
		Bottom: -maxY,
	}
	frame.Bounds = data
	if !cfg.ComputeScreenBounds() {
		sb := cfg.ScreenBounds
		frame.Bounds = RectBounds{
			Left:   sb.Left * cfg.ToMeters,
			Right:  sb.Right * cfg.ToMeters,
			Top:    sb.Top * cfg.ToMeters,
			Bottom: sb.Bottom * cfg.ToMeters,
		}
	}

	dist := pl.DistanceToOrigin()
	hFOVRad := math.Atan(data.Right/dist) - math.Atan(data.Left/dist)
	if hFOVRad <= 0 {
		return nil, nil, geomErrf("screen", "horizontal field of view is not positive")
	}
	vFOVRad := math.Atan(data.Top/dist) - math.Atan(data.Bottom/dist)
	if vFOVRad <= 0 {
		return nil, nil, geomErrf("screen", "vertical field of view is not positive")
	}

	// Overlap of the mirrored eye pair: how centered the frustum is
	// about the straight-ahead direction.
	midRot := math.Atan2(pl.A, pl.C) - (math.Atan(data.Right/dist)+math.Atan(data.Left/dist))/2
	overlapFrac := 1 - 2*math.Abs(midRot)/hFOVRad
	overlapFrac = math.Max(0, math.Min(1, overlapFrac))

	desc := &ScreenDescription{
		HFOVDegrees:    radToDeg(hFOVRad),
		VFOVDegrees:    radToDeg(vFOVRad),
		OverlapPercent: 100 * overlapFrac,
		XCOP:           -frame.Bounds.Left / frame.Bounds.Width(),
		YCOP:           -frame.Bounds.Bottom / frame.Bounds.Height(),
		Plane:          pl,
	}
	return desc, frame, nil
}
