package fusion

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
)

// Box is an axis-aligned pixel rectangle. X2 and Y2 are exclusive when the
// box is used to crop.
type Box struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Width returns the horizontal extent of the box.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Area returns the box area, or 0 for an inverted box.
func (b Box) Area() int {
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return 0
	}
	return b.Width() * b.Height()
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// MarshalJSON encodes the box as [x1,y1,x2,y2].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON decodes a box from [x1,y1,x2,y2].
func (b *Box) UnmarshalJSON(data []byte) error {
	var coords []int
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	if len(coords) != 4 {
		return fmt.Errorf("box needs 4 coordinates, got %d", len(coords))
	}
	*b = Box{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]}
	return nil
}

// SanitizeBox truncates raw detector coordinates to integers, clamps them into
// [0, width-1] x [0, height-1] and reports false when the result has no area.
func SanitizeBox(x1, y1, x2, y2 float64, width, height int) (Box, bool) {
	if width <= 0 || height <= 0 {
		return Box{}, false
	}
	for _, v := range [...]float64{x1, y1, x2, y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Box{}, false
		}
	}

	b := Box{
		X1: clampCoord(x1, width),
		Y1: clampCoord(y1, height),
		X2: clampCoord(x2, width),
		Y2: clampCoord(y2, height),
	}
	if b.X2 <= b.X1 || b.Y2 <= b.Y1 {
		return Box{}, false
	}
	return b, true
}

func clampCoord(v float64, dim int) int {
	// Clamp in float space first so huge values cannot overflow int.
	v = math.Max(0, math.Min(math.Trunc(v), float64(dim-1)))
	return int(v)
}

// IoU returns the intersection-over-union of two boxes. Disjoint boxes score
// exactly 0.
func IoU(a, b Box) float64 {
	ix1, iy1 := max(a.X1, b.X1), max(a.Y1, b.Y1)
	ix2, iy2 := min(a.X2, b.X2), min(a.Y2, b.Y2)
	iw, ih := max(0, ix2-ix1), max(0, iy2-iy1)

	inter := iw * ih
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	return float64(inter) / float64(union)
}
