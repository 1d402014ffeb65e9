package fusion

import (
	"context"
	"encoding/json"
	"image"

	"github.com/disintegration/imaging"
)

// SpeciesStatus tells how a SpeciesResult was produced.
type SpeciesStatus int

const (
	// SpeciesUnknown means no in-vocabulary class cleared the species floor.
	SpeciesUnknown SpeciesStatus = iota
	// SpeciesMatched means the species model named the plant.
	SpeciesMatched
	// SpeciesBypassed means the primary class is authoritative and the
	// species model was never asked.
	SpeciesBypassed
)

func (s SpeciesStatus) String() string {
	switch s {
	case SpeciesMatched:
		return "matched"
	case SpeciesBypassed:
		return "bypassed"
	default:
		return "unknown"
	}
}

// SpeciesResult is the outcome of the species cascade for one plant.
type SpeciesResult struct {
	Status     SpeciesStatus
	LabelRaw   string
	Label      Label
	Confidence float64
}

var (
	// UnknownSpecies is reported when the cascade finds nothing.
	UnknownSpecies = SpeciesResult{Status: SpeciesUnknown}
	// CactusSpecies is reported for every cactus; there is no cactus species model.
	CactusSpecies = SpeciesResult{
		Status:     SpeciesBypassed,
		LabelRaw:   string(PlantCactus),
		Label:      Label(PlantCactus),
		Confidence: 1.0,
	}
)

// Known reports whether the result carries a label.
func (r SpeciesResult) Known() bool {
	return r.Status != SpeciesUnknown
}

type speciesPayload struct {
	Label           *string `json:"label"`
	LabelNormalized *string `json:"label_normalized"`
	Confidence      float64 `json:"confidence"`
	Status          string  `json:"status"`
}

// MarshalJSON writes unknown results with null labels.
func (r SpeciesResult) MarshalJSON() ([]byte, error) {
	p := speciesPayload{Confidence: r.Confidence, Status: r.Status.String()}
	if r.Known() {
		raw, norm := r.LabelRaw, string(r.Label)
		p.Label, p.LabelNormalized = &raw, &norm
	}
	return json.Marshal(p)
}

// UnmarshalJSON reads the MarshalJSON form back.
func (r *SpeciesResult) UnmarshalJSON(data []byte) error {
	var p speciesPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*r = SpeciesResult{Confidence: p.Confidence}
	switch p.Status {
	case "matched":
		r.Status = SpeciesMatched
	case "bypassed":
		r.Status = SpeciesBypassed
	default:
		*r = UnknownSpecies
		return nil
	}
	if p.Label != nil {
		r.LabelRaw = *p.Label
	}
	if p.LabelNormalized != nil {
		r.Label = Label(*p.LabelNormalized)
	} else {
		r.Label = NormalizeLabel(r.LabelRaw)
	}
	return nil
}

// SelectSpecies picks the highest-confidence detection whose normalized label
// is a known species and whose confidence is at least floor. A later candidate
// only wins with a strictly greater confidence.
func SelectSpecies(raw []RawDetection, floor float64) SpeciesResult {
	best := UnknownSpecies
	for _, r := range raw {
		if r.Confidence < floor {
			continue
		}
		label := NormalizeLabel(r.Label)
		if _, ok := label.Species(); !ok {
			continue
		}
		if best.Status == SpeciesUnknown || r.Confidence > best.Confidence {
			best = SpeciesResult{
				Status:     SpeciesMatched,
				LabelRaw:   r.Label,
				Label:      label,
				Confidence: r.Confidence,
			}
		}
	}
	return best
}

// cropBox cuts box out of img. Box coordinates are relative to the image
// origin, which need not be (0,0) for every decoder.
func cropBox(img image.Image, box Box) *image.NRGBA {
	rect := box.Rect().Add(img.Bounds().Min)
	return imaging.Crop(img, rect)
}

// classifySpecies runs the cascade for one plant.
func classifySpecies(ctx context.Context, species Detector, img image.Image, plant Detection, floor float64) (SpeciesResult, error) {
	if class, _ := plant.Label.PlantClass(); class == PlantCactus {
		return CactusSpecies, nil
	}
	if species == nil {
		return UnknownSpecies, nil
	}

	crop := cropBox(img, plant.Box)
	if crop.Bounds().Empty() {
		return UnknownSpecies, nil
	}

	raw, err := species.Detect(ctx, crop, floor)
	if err != nil {
		return UnknownSpecies, &ModelError{Stage: StageSpecies, Err: err}
	}
	return SelectSpecies(raw, floor), nil
}
