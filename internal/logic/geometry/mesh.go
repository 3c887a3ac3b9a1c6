package geometry

// MeshEntry maps one physical display position (From) to its
// distortion-corrected normalized screen position (To).
type MeshEntry struct {
	From [2]float64
	To   [2]float64
}

// MeshDescription is the per-sample distortion mesh, in input order.
type MeshDescription []MeshEntry

// BuildMesh projects every sample onto the frame's plane and
// normalizes the result against the frame bounds. Input order is
// preserved and no screen quantity is recomputed.
func BuildMesh(frame *ScreenFrame, ms []Mapping) (MeshDescription, error) {
	if frame.Bounds.Width() <= 0 || frame.Bounds.Height() <= 0 {
		return nil, geomErrf("mesh", "screen bounds are empty")
	}
	mesh := make(MeshDescription, 0, len(ms))
	for i, m := range ms {
		p, err := frame.Plane.ProjectFromOrigin(m.Dir)
		if err != nil {
			return nil, sampleErr("mesh", i, err)
		}
		u, v := frame.UV(p)
		mesh = append(mesh, MeshEntry{From: m.Screen, To: [2]float64{u, v}})
	}
	return mesh, nil
}

// ReflectedHorizontally derives the mirrored eye's mesh: the physical
// display coordinates stay, the corrected positions flip about the
// screen's vertical centerline.
func (m MeshDescription) ReflectedHorizontally() MeshDescription {
	out := make(MeshDescription, len(m))
	for i, e := range m {
		e.To[0] = 1 - e.To[0]
		out[i] = e
	}
	return out
}
