package geometry

import (
	"fmt"
	"math"

	"github.com/hljgirl/distortionizer/internal/config"
)

// displacementEps is the smallest screen or angle displacement a
// sample pair needs before the axis check considers it.
const displacementEps = 1e-9

// VerifyReport summarizes how well the measured angle table agrees
// with the fitted screen geometry.
type VerifyReport struct {
	Samples int
	Pairs   int

	// Largest absolute per-component difference between the table
	// angles and the angles the emitted mesh positions imply through
	// the screen frame.
	MaxAngleDiffDeg float64
	WorstSample     int

	// Largest angle between a measured angle-space displacement and
	// the displacement the configured screen axes predict for it.
	MaxAxisDeviationDeg float64
	WorstPair           [2]int
}

// Exceeded reports whether either deviation is above the tolerance.
func (r *VerifyReport) Exceeded(tolDeg float64) bool {
	return r.MaxAngleDiffDeg > tolDeg || r.MaxAxisDeviationDeg > tolDeg
}

// Warning returns a ToleranceWarning when the report exceeds the
// tolerance, nil otherwise.
func (r *VerifyReport) Warning(tolDeg float64) *ToleranceWarning {
	if !r.Exceeded(tolDeg) {
		return nil
	}
	return &ToleranceWarning{ToleranceDeg: tolDeg, Report: r}
}

// ToleranceWarning flags a verification pass that exceeded the
// configured tolerance. It never aborts a run: the caller decides
// whether the fit is still acceptable.
type ToleranceWarning struct {
	ToleranceDeg float64
	Report       *VerifyReport
}

func (w *ToleranceWarning) Error() string {
	r := w.Report
	return fmt.Sprintf(
		"angle table deviates from the fitted screen: max angle diff %.3f deg (sample %d), max axis deviation %.3f deg (samples %d and %d), tolerance %.3f deg",
		r.MaxAngleDiffDeg, r.WorstSample,
		r.MaxAxisDeviationDeg, r.WorstPair[0], r.WorstPair[1], w.ToleranceDeg)
}

// VerifyAngles checks the conversion result against the measured
// table. Per sample, the viewing angles implied by its mesh position
// are re-derived through the frame bounds and plane and compared to
// the table angles, so a mesh that disagrees with the reported screen
// geometry surfaces as an angle diff. Per sample pair, the angle
// displacement is compared to the displacement the configured screen
// axes predict (screen x movement maps to (xx, xy) in angle space,
// screen y movement to (yx, yy)), so a miscalibrated table surfaces
// as an axis deviation. The mesh must be the one built from ms
// against frame; everything lands in the report for the caller to
// judge against the tolerance.
func VerifyAngles(cfg *config.Config, frame *ScreenFrame, mesh MeshDescription, ms []Mapping) *VerifyReport {
	report := &VerifyReport{Samples: len(ms), WorstSample: -1, WorstPair: [2]int{-1, -1}}

	for i, m := range ms {
		q := frame.PointAt(mesh[i].To[0], mesh[i].To[1])
		got := Angles(q, cfg.UseFieldAngles())
		d := math.Max(
			math.Abs(wrapDeg180(got.LongitudeDeg-m.Angles.LongitudeDeg)),
			math.Abs(wrapDeg180(got.LatitudeDeg-m.Angles.LatitudeDeg)),
		)
		if d > report.MaxAngleDiffDeg {
			report.MaxAngleDiffDeg = d
			report.WorstSample = i
		}
	}

	axes := cfg.Verify
	for i := 0; i < len(ms); i++ {
		for j := i + 1; j < len(ms); j++ {
			dx := ms[j].Screen[0] - ms[i].Screen[0]
			dy := ms[j].Screen[1] - ms[i].Screen[1]
			eLong := dx*axes.XX + dy*axes.YX
			eLat := dx*axes.XY + dy*axes.YY
			daLong := wrapDeg180(ms[j].Angles.LongitudeDeg - ms[i].Angles.LongitudeDeg)
			daLat := wrapDeg180(ms[j].Angles.LatitudeDeg - ms[i].Angles.LatitudeDeg)
			if math.Hypot(eLong, eLat) < displacementEps || math.Hypot(daLong, daLat) < displacementEps {
				continue
			}
			report.Pairs++
			cross := eLong*daLat - eLat*daLong
			dot := eLong*daLong + eLat*daLat
			dev := radToDeg(math.Atan2(math.Abs(cross), dot))
			if dev > report.MaxAxisDeviationDeg {
				report.MaxAxisDeviationDeg = dev
				report.WorstPair = [2]int{i, j}
			}
		}
	}
	return report
}

// wrapDeg180 folds an angle difference into (-180, 180] in constant
// time, whatever the magnitude.
func wrapDeg180(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}
