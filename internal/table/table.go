// Package table reads HMD lens calibration tables.
//
// A table is a whitespace-separated text file with one sample per line:
//
//	x  y  latitude  longitude
//
// where x and y are the sample's normalized physical-display coordinates
// and latitude/longitude are the measured viewing angles in degrees.
// Blank lines are skipped. This is the line format the measurement rigs
// emit on stdout, so tables can be piped straight in.
package table

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MinSamples is the smallest table that can describe a screen. Fewer
// samples cannot span a rectangle in both axes.
const MinSamples = 3

// fieldAngleLimitDeg bounds field-angle inputs: tan() diverges at 90.
const fieldAngleLimitDeg = 90.0

// Sample is one calibration record: a physical-display position and the
// viewing angles measured for it.
type Sample struct {
	X            float64 // normalized display coordinate
	Y            float64 // normalized display coordinate
	LatitudeDeg  float64
	LongitudeDeg float64
}

// InputError reports a malformed or insufficient calibration table.
// Line is 1-based; 0 means the table as a whole.
type InputError struct {
	Line   int
	Reason string
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("calibration table: line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("calibration table: %s", e.Reason)
}

// Load parses a calibration table from r.
// Every value must be a finite number; a line must hold exactly four
// fields. Any violation returns an *InputError naming the line, before
// any geometry runs.
func Load(r io.Reader) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, &InputError{Line: line, Reason: fmt.Sprintf("expected 4 fields (x y latitude longitude), got %d", len(fields))}
		}
		var vals [4]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &InputError{Line: line, Reason: fmt.Sprintf("field %d: %q is not a number", i+1, f)}
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &InputError{Line: line, Reason: fmt.Sprintf("field %d: non-finite value %q", i+1, f)}
			}
			vals[i] = v
		}
		samples = append(samples, Sample{
			X:            vals[0],
			Y:            vals[1],
			LatitudeDeg:  vals[2],
			LongitudeDeg: vals[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read calibration table")
	}
	if len(samples) < MinSamples {
		return nil, &InputError{Reason: fmt.Sprintf("need at least %d samples, got %d", MinSamples, len(samples))}
	}
	return samples, nil
}

// LoadFile reads a calibration table from a file on disk.
func LoadFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open calibration table %s", path)
	}
	defer f.Close()
	return Load(f)
}

// CheckFieldAngleRange validates a table for field-angle processing,
// where both angles must stay strictly inside (-90, 90) degrees.
// Call it only when the run is configured for field angles.
func CheckFieldAngleRange(samples []Sample) error {
	for i, s := range samples {
		if math.Abs(s.LatitudeDeg) >= fieldAngleLimitDeg ||
			math.Abs(s.LongitudeDeg) >= fieldAngleLimitDeg {
			return &InputError{
				Reason: fmt.Sprintf("sample %d: field angles must be within (-90, 90) degrees, got latitude=%g longitude=%g", i, s.LatitudeDeg, s.LongitudeDeg),
			}
		}
	}
	return nil
}
