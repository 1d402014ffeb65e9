package fusion

// PlantRecord is the fused result for one accepted plant.
type PlantRecord struct {
	// Label is the species label when one is known, else the detector's raw label.
	Label          string        `json:"label"`
	PlantLabel     string        `json:"plant_label"`
	PlantClass     PlantClass    `json:"plant_class"`
	Confidence     float64       `json:"confidence"`
	Box            Box           `json:"coords"`
	Image          string        `json:"image"`
	Container      Container     `json:"container"`
	ContainerScore float64       `json:"container_score"`
	Species        SpeciesResult `json:"species"`
}

// Assemble builds the record for one plant.
func Assemble(plant Detection, assoc Association, species SpeciesResult, payload string) PlantRecord {
	label := plant.LabelRaw
	if species.Known() && species.LabelRaw != "" {
		label = species.LabelRaw
	}
	class, _ := plant.Label.PlantClass()

	return PlantRecord{
		Label:          label,
		PlantLabel:     plant.LabelRaw,
		PlantClass:     class,
		Confidence:     plant.Confidence,
		Box:            plant.Box,
		Image:          payload,
		Container:      assoc.Container,
		ContainerScore: assoc.Score,
		Species:        species,
	}
}
