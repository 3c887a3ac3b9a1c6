package geometry

// RectBounds delimits the screen rectangle in plane-local coordinates.
// Horizontal positions grow toward screen right, vertical toward the
// top; callers keep Left <= Right and Bottom <= Top.
type RectBounds struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Width returns the horizontal extent.
func (b RectBounds) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent.
func (b RectBounds) Height() float64 { return b.Top - b.Bottom }

// ReflectedHorizontally mirrors the bounds about x = 0. Applying it
// twice returns the original bounds.
func (b RectBounds) ReflectedHorizontally() RectBounds {
	return RectBounds{Left: -b.Right, Right: -b.Left, Top: b.Top, Bottom: b.Bottom}
}
