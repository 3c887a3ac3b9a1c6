// Package convert wires the conversion pipeline together: calibration
// samples in, screen description and distortion mesh out.
package convert

import (
	"github.com/hljgirl/distortionizer/internal/config"
	"github.com/hljgirl/distortionizer/internal/debug"
	"github.com/hljgirl/distortionizer/internal/logic/geometry"
	"github.com/hljgirl/distortionizer/internal/table"
)

// Converter runs the full pipeline for one calibration table.
type Converter struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Converter {
	return &Converter{cfg: cfg}
}

// Result collects everything one run produces. Verify is nil unless
// verification is enabled.
type Result struct {
	Screen *geometry.ScreenDescription
	Frame  *geometry.ScreenFrame
	Mesh   geometry.MeshDescription
	Verify *geometry.VerifyReport
}

// Warning returns the tolerance warning for the run, or nil when
// verification was disabled or stayed within tolerance.
func (r *Result) Warning(tolDeg float64) *geometry.ToleranceWarning {
	if r.Verify == nil {
		return nil
	}
	return r.Verify.Warning(tolDeg)
}

// Run converts the samples into the screen description and distortion
// mesh for the configured eye. Verification findings are reported, not
// fatal; any other failure aborts with no partial result.
func (c *Converter) Run(samples []table.Sample) (*Result, error) {
	cfg := c.cfg

	debug.Section("Building Directions")
	if cfg.UseFieldAngles() {
		if err := table.CheckFieldAngleRange(samples); err != nil {
			return nil, err
		}
	}
	ms := make([]geometry.Mapping, len(samples))
	for i, s := range samples {
		ms[i] = geometry.NewMapping(s.X, s.Y, s.LatitudeDeg, s.LongitudeDeg, cfg.UseFieldAngles())
		debug.Sample(i, ms[i].Dir.X, ms[i].Dir.Y, ms[i].Dir.Z)
	}
	debug.Value("samples", len(ms))

	debug.Section("Fitting Screen Plane")
	pl, err := geometry.FitPlane(cfg, ms)
	if err != nil {
		return nil, err
	}
	debug.Plane(pl.A, pl.B, pl.C, pl.D)

	debug.Section("Computing Screen")
	desc, frame, err := geometry.BuildScreen(cfg, pl, ms)
	if err != nil {
		return nil, err
	}
	debug.Screen(desc.HFOVDegrees, desc.VFOVDegrees, desc.OverlapPercent, desc.XCOP, desc.YCOP)
	debug.Verbose("bounds: left=%.6f right=%.6f bottom=%.6f top=%.6f",
		frame.Bounds.Left, frame.Bounds.Right, frame.Bounds.Bottom, frame.Bounds.Top)

	debug.Section("Building Mesh")
	mesh, err := geometry.BuildMesh(frame, ms)
	if err != nil {
		return nil, err
	}
	debug.Value("mesh entries", len(mesh))
	for i, e := range mesh {
		debug.Trace("mesh %d: from=(%.6f, %.6f) to=(%.6f, %.6f)", i, e.From[0], e.From[1], e.To[0], e.To[1])
	}

	var report *geometry.VerifyReport
	if cfg.VerifyEnabled() {
		debug.Section("Verifying Angles")
		report = geometry.VerifyAngles(cfg, frame, mesh, ms)
		if w := report.Warning(cfg.MaxAngleDiffDeg()); w != nil {
			debug.Warn("%v", w)
		} else {
			debug.Verbose("within tolerance: max angle diff %.4f deg, max axis deviation %.4f deg",
				report.MaxAngleDiffDeg, report.MaxAxisDeviationDeg)
		}
	}

	if cfg.UseRightEye() {
		debug.Info("Mirroring to the right eye")
		desc = desc.ReflectedHorizontally()
		frame = frame.ReflectedHorizontally()
		mesh = mesh.ReflectedHorizontally()
	}

	return &Result{Screen: desc, Frame: frame, Mesh: mesh, Verify: report}, nil
}
