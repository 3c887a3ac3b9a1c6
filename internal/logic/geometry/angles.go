package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// LongLat is a viewing angle pair in degrees. Longitude is the
// horizontal angle (0 faces straight ahead, positive turns left),
// latitude the vertical one (positive turns up).
type LongLat struct {
	LongitudeDeg float64
	LatitudeDeg  float64
}

// Mapping pairs one calibration sample with its derived unit viewing
// direction. Screen is the normalized (x, y) position on the physical
// display, Angles the viewing angles measured for that position.
type Mapping struct {
	Screen [2]float64
	Angles LongLat
	Dir    r3.Vector
}

// NewMapping builds a Mapping from one table sample.
func NewMapping(x, y, latDeg, longDeg float64, fieldAngles bool) Mapping {
	ll := LongLat{LongitudeDeg: longDeg, LatitudeDeg: latDeg}
	return Mapping{
		Screen: [2]float64{x, y},
		Angles: ll,
		Dir:    Direction(ll, fieldAngles),
	}
}

// Direction converts viewing angles into a unit direction in viewer
// space (x right, y up, looking along -z).
//
// Field angles treat longitude and latitude as independent projections
// onto a screen orthogonal to the view axis: the direction is
// (-tan(long), tan(lat), -1) normalized. Otherwise the angles are
// spherical coordinates. Positive longitude turns toward -x in both
// modes.
func Direction(ll LongLat, fieldAngles bool) r3.Vector {
	long := degToRad(ll.LongitudeDeg)
	lat := degToRad(ll.LatitudeDeg)
	if fieldAngles {
		return r3.Vector{X: -math.Tan(long), Y: math.Tan(lat), Z: -1}.Normalize()
	}
	return r3.Vector{
		X: -math.Cos(lat) * math.Sin(long),
		Y: math.Sin(lat),
		Z: -math.Cos(lat) * math.Cos(long),
	}
}

// poleEps classifies a direction as polar when its horizontal
// footprint vanishes relative to its vertical component.
const poleEps = 1e-12

// Angles recovers the viewing angles from a direction, or from any
// point along it: the result is invariant under positive scaling, so
// it applies to projected screen points as well as unit directions.
// At the poles, where the azimuth is undefined, the longitude is 0.
func Angles(v r3.Vector, fieldAngles bool) LongLat {
	horiz := math.Hypot(v.X, v.Z)
	long := 0.0
	if horiz > poleEps*math.Abs(v.Y) {
		long = math.Atan2(-v.X, -v.Z)
	}
	var lat float64
	if fieldAngles {
		lat = math.Atan2(v.Y, -v.Z)
	} else {
		lat = math.Atan2(v.Y, horiz)
	}
	return LongLat{LongitudeDeg: radToDeg(long), LatitudeDeg: radToDeg(lat)}
}

// RotationAboutY is the horizontal rotation of v: 0 faces -z, positive
// rotations turn toward -x. It equals the longitude of v in both angle
// modes.
func RotationAboutY(v r3.Vector) float64 {
	return math.Atan2(-v.X, -v.Z)
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
