package fusion

// RawDetection is one output row of a detector collaborator, in pixel
// coordinates of the image it was run on.
type RawDetection struct {
	Label      string
	Confidence float64
	X1         float64
	Y1         float64
	X2         float64
	Y2         float64
}

// Detection is a RawDetection with a normalized label and a box that is
// guaranteed to lie inside the image with a positive area.
type Detection struct {
	LabelRaw   string
	Label      Label
	Confidence float64
	Box        Box
}

// NewDetection normalizes and sanitizes raw against an image of the given
// size. It reports false when the box clamps to zero area.
func NewDetection(raw RawDetection, width, height int) (Detection, bool) {
	box, ok := SanitizeBox(raw.X1, raw.Y1, raw.X2, raw.Y2, width, height)
	if !ok {
		return Detection{}, false
	}
	return Detection{
		LabelRaw:   raw.Label,
		Label:      NormalizeLabel(raw.Label),
		Confidence: raw.Confidence,
		Box:        box,
	}, true
}

// Sanitize builds Detections from raw rows, silently dropping the ones with
// degenerate boxes. Input order is preserved.
func Sanitize(raw []RawDetection, width, height int) []Detection {
	out := make([]Detection, 0, len(raw))
	for _, r := range raw {
		if d, ok := NewDetection(r, width, height); ok {
			out = append(out, d)
		}
	}
	return out
}
