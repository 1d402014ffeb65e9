package models

import (
	"time"

	"gardenvision/internal/fusion"
)

// Plant is the stored form of one fused plant record.
type Plant struct {
	ID                int64     `json:"id"`
	PhotoID           int64     `json:"photo_id"`
	Idx               int       `json:"idx"`
	Label             string    `json:"label"`
	PlantLabel        string    `json:"plant_label"`
	PlantClass        string    `json:"plant_class"`
	Confidence        float64   `json:"confidence"`
	X1                int       `json:"x1"`
	Y1                int       `json:"y1"`
	X2                int       `json:"x2"`
	Y2                int       `json:"y2"`
	Container         string    `json:"container"`
	ContainerScore    float64   `json:"container_score"`
	Species           *string   `json:"species"`
	SpeciesConfidence float64   `json:"species_confidence"`
	SpeciesStatus     string    `json:"species_status"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewPlant converts the record at position idx of a photo's result.
func NewPlant(photoID int64, idx int, r fusion.PlantRecord) Plant {
	p := Plant{
		PhotoID:           photoID,
		Idx:               idx,
		Label:             r.Label,
		PlantLabel:        r.PlantLabel,
		PlantClass:        string(r.PlantClass),
		Confidence:        r.Confidence,
		X1:                r.Box.X1,
		Y1:                r.Box.Y1,
		X2:                r.Box.X2,
		Y2:                r.Box.Y2,
		Container:         string(r.Container),
		ContainerScore:    r.ContainerScore,
		SpeciesConfidence: r.Species.Confidence,
		SpeciesStatus:     r.Species.Status.String(),
	}
	if r.Species.Known() {
		species := string(r.Species.Label)
		p.Species = &species
	}
	return p
}

// PlantStats summarizes everything stored.
type PlantStats struct {
	TotalPhotos  int            `json:"total_photos"`
	TotalPlants  int            `json:"total_plants"`
	PerContainer map[string]int `json:"per_container"`
	PerSpecies   map[string]int `json:"per_species"`
	PerClass     map[string]int `json:"per_class"`
}
