// Package images - Image geometry and loading utilities shared by the
// detection pipeline.
package images

import "github.com/chewxy/math32"

// Rect is a corner-form bounding box in continuous pixel coordinates.
// X2 and Y2 are exclusive, like image.Rectangle.
type Rect struct {
	X1, Y1, X2, Y2 float32
}

// Area returns the area of r in pixels. Inverted rectangles have a
// negative area.
func (r Rect) Area() float32 {
	return (r.X2 - r.X1) * (r.Y2 - r.Y1)
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy float32) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// Disjoint reports whether r and o share no area. It is much cheaper
// than CalculateIoU and is used to reject non-overlapping pairs before
// paying for the IoU division.
func (r Rect) Disjoint(o Rect) bool {
	return r.X2 <= o.X1 || o.X2 <= r.X1 || r.Y2 <= o.Y1 || o.Y2 <= r.Y1
}

// CalculateIoU returns the Intersection over Union of two boxes: the
// overlap area divided by the combined area, 0.0 for disjoint boxes and
// 1.0 for identical ones.
func CalculateIoU(r, o Rect) float32 {
	ix1 := math32.Max(r.X1, o.X1)
	iy1 := math32.Max(r.Y1, o.Y1)
	ix2 := math32.Min(r.X2, o.X2)
	iy2 := math32.Min(r.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	interArea := interW * interH

	// Inclusion-exclusion: Union(A, B) = Area(A) + Area(B) - Intersection(A, B).
	unionArea := r.Area() + o.Area() - interArea
	if unionArea <= 0 {
		return 0
	}
	return interArea / unionArea
}
