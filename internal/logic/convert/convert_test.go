package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/hljgirl/distortionizer/internal/config"
	"github.com/hljgirl/distortionizer/internal/logic/geometry"
	"github.com/hljgirl/distortionizer/internal/table"
)

const epsilon = 1e-9

func cornerSamples() []table.Sample {
	return []table.Sample{
		{X: 0, Y: 0, LatitudeDeg: -20, LongitudeDeg: 30},
		{X: 1, Y: 0, LatitudeDeg: -20, LongitudeDeg: -30},
		{X: 0, Y: 1, LatitudeDeg: 20, LongitudeDeg: 30},
		{X: 1, Y: 1, LatitudeDeg: 20, LongitudeDeg: -30},
	}
}

func TestRun_LeftEye(t *testing.T) {
	res, err := New(config.Default()).Run(cornerSamples())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := res.Screen
	if math.Abs(s.HFOVDegrees-60) > epsilon || math.Abs(s.VFOVDegrees-40) > epsilon {
		t.Errorf("FOV = (%v, %v), want (60, 40)", s.HFOVDegrees, s.VFOVDegrees)
	}
	if math.Abs(s.OverlapPercent-100) > epsilon {
		t.Errorf("overlap = %v, want 100", s.OverlapPercent)
	}
	if math.Abs(s.XCOP-0.5) > epsilon || math.Abs(s.YCOP-0.5) > epsilon {
		t.Errorf("COP = (%v, %v), want (0.5, 0.5)", s.XCOP, s.YCOP)
	}
	if len(res.Mesh) != 4 {
		t.Fatalf("mesh entries = %d, want 4", len(res.Mesh))
	}
	for i, e := range res.Mesh {
		if math.Abs(e.To[0]-e.From[0]) > epsilon || math.Abs(e.To[1]-e.From[1]) > epsilon {
			t.Errorf("entry %d: To = %v, want %v", i, e.To, e.From)
		}
	}
	if res.Verify != nil {
		t.Error("Verify report present with verification disabled")
	}
	if res.Frame == nil {
		t.Fatal("Frame missing")
	}
}

func TestRun_RightEye(t *testing.T) {
	cfg := config.Default()
	cfg.Eye = config.EyeRight

	res, err := New(cfg).Run(cornerSamples())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Screen.XCOP-0.5) > epsilon {
		t.Errorf("XCOP = %v, want 0.5 (mirrored)", res.Screen.XCOP)
	}
	// The bottom-left display sample lands on the right of the
	// mirrored screen.
	e := res.Mesh[0]
	if e.From != [2]float64{0, 0} {
		t.Errorf("From = %v, want [0 0]", e.From)
	}
	if math.Abs(e.To[0]-1) > epsilon || math.Abs(e.To[1]) > epsilon {
		t.Errorf("To = %v, want [1 0]", e.To)
	}
}

func TestRun_LonglatMode(t *testing.T) {
	cfg := config.Default()
	cfg.FieldAngles = false

	res, err := New(cfg).Run(cornerSamples())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Screen.HFOVDegrees-60) > epsilon {
		t.Errorf("hFOV = %v, want 60", res.Screen.HFOVDegrees)
	}
	// Spherical latitude spans a wider screen than the same field
	// angle: the fitted plane sits at the chord distance.
	lat := 20 * math.Pi / 180
	long := 30 * math.Pi / 180
	wantVFOV := 2 * math.Atan(math.Tan(lat)/math.Cos(long)) * 180 / math.Pi
	if math.Abs(res.Screen.VFOVDegrees-wantVFOV) > 1e-6 {
		t.Errorf("vFOV = %v, want %v", res.Screen.VFOVDegrees, wantVFOV)
	}
	if math.Abs(res.Screen.XCOP-0.5) > epsilon {
		t.Errorf("xCOP = %v, want 0.5", res.Screen.XCOP)
	}
}

func TestRun_RepeatedRunsAgree(t *testing.T) {
	c := New(config.Default())

	first, err := c.Run(cornerSamples())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Run(cornerSamples())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *first.Screen != *second.Screen {
		t.Errorf("screen differs across runs: %+v vs %+v", *first.Screen, *second.Screen)
	}
	if *first.Frame != *second.Frame {
		t.Errorf("frame differs across runs: %+v vs %+v", *first.Frame, *second.Frame)
	}
	if len(first.Mesh) != len(second.Mesh) {
		t.Fatalf("mesh lengths differ: %d vs %d", len(first.Mesh), len(second.Mesh))
	}
	for i := range first.Mesh {
		if first.Mesh[i] != second.Mesh[i] {
			t.Errorf("mesh entry %d differs: %v vs %v", i, first.Mesh[i], second.Mesh[i])
		}
	}
}

func TestRun_FieldAngleRangeChecked(t *testing.T) {
	samples := cornerSamples()
	samples[1].LongitudeDeg = -95

	_, err := New(config.Default()).Run(samples)
	var inputErr *table.InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError for a 95 degree field angle, got %v", err)
	}
}

func TestRun_TooFewSamples(t *testing.T) {
	_, err := New(config.Default()).Run(cornerSamples()[:2])
	var geomErr *geometry.GeometryError
	if !errors.As(err, &geomErr) {
		t.Fatalf("expected GeometryError, got %v", err)
	}
}

func TestRun_VerifyWithinTolerance(t *testing.T) {
	cfg := config.Default()
	cfg.Verify = config.VerifyConfig{Enabled: true, MaxAngleDiffDeg: 2.0, XX: -60, YY: 40}

	res, err := New(cfg).Run(cornerSamples())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Verify == nil {
		t.Fatal("Verify report missing")
	}
	if w := res.Warning(cfg.MaxAngleDiffDeg()); w != nil {
		t.Errorf("Warning = %v, want nil", w)
	}
}

func TestRun_VerifyFlagsCorruptedTable(t *testing.T) {
	cfg := config.Default()
	cfg.Verify = config.VerifyConfig{Enabled: true, MaxAngleDiffDeg: 2.0, XX: -60, YY: 40}
	samples := cornerSamples()
	samples[3].LatitudeDeg = -20

	res, err := New(cfg).Run(samples)
	if err != nil {
		t.Fatalf("verification must not abort the run: %v", err)
	}
	if w := res.Warning(cfg.MaxAngleDiffDeg()); w == nil {
		t.Error("Warning = nil, want a ToleranceWarning")
	}
	if len(res.Mesh) != 4 {
		t.Errorf("mesh entries = %d, output must still be produced", len(res.Mesh))
	}
}
