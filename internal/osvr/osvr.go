// Package osvr serializes conversion results as the display descriptor
// fragment consumed by OSVR-style display schemas.
package osvr

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/hljgirl/distortionizer/internal/logic/geometry"
)

// DistortionType names the only mesh encoding this tool emits: an
// explicit list of (from, to) point samples.
const DistortionType = "mono_point_samples"

// Descriptor is the emitted display fragment.
type Descriptor struct {
	Display Display `json:"display"`
}

type Display struct {
	HMD HMD `json:"hmd"`
}

type HMD struct {
	FieldOfView FieldOfView `json:"field_of_view"`
	Eyes        []Eye       `json:"eyes"`
	Distortion  Distortion  `json:"distortion"`
}

// FieldOfView is the monocular field of view block. PitchTilt is
// always 0: the screen plane stays vertical.
type FieldOfView struct {
	MonocularHorizontal float64 `json:"monocular_horizontal"`
	MonocularVertical   float64 `json:"monocular_vertical"`
	OverlapPercent      float64 `json:"overlap_percent"`
	PitchTilt           float64 `json:"pitch_tilt"`
}

// Eye carries one eye's center of projection.
type Eye struct {
	CenterProjX float64 `json:"center_proj_x"`
	CenterProjY float64 `json:"center_proj_y"`
	Rotate180   int     `json:"rotate_180"`
}

// Distortion holds the mesh as [[fx, fy], [tx, ty]] sample pairs, in
// table order.
type Distortion struct {
	Type             string          `json:"type"`
	MonoPointSamples [][2][2]float64 `json:"mono_point_samples"`
}

// New assembles the descriptor for one eye's screen and mesh.
func New(desc *geometry.ScreenDescription, mesh geometry.MeshDescription) *Descriptor {
	samples := make([][2][2]float64, len(mesh))
	for i, e := range mesh {
		samples[i] = [2][2]float64{e.From, e.To}
	}
	return &Descriptor{
		Display: Display{
			HMD: HMD{
				FieldOfView: FieldOfView{
					MonocularHorizontal: desc.HFOVDegrees,
					MonocularVertical:   desc.VFOVDegrees,
					OverlapPercent:      desc.OverlapPercent,
					PitchTilt:           0,
				},
				Eyes: []Eye{{
					CenterProjX: desc.XCOP,
					CenterProjY: desc.YCOP,
					Rotate180:   0,
				}},
				Distortion: Distortion{
					Type:             DistortionType,
					MonoPointSamples: samples,
				},
			},
		},
	}
}

// Write emits the descriptor as indented JSON with a trailing newline.
func Write(w io.Writer, desc *geometry.ScreenDescription, mesh geometry.MeshDescription) error {
	data, err := json.MarshalIndent(New(desc, mesh), "", "    ")
	if err != nil {
		return errors.Wrap(err, "marshal display descriptor")
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write display descriptor")
	}
	return nil
}
