package models

import "gardenvision/internal/fusion"

// Prediction is the response of one /predict call.
type Prediction struct {
	Records []fusion.PlantRecord `json:"image"`
	PhotoID int64                `json:"photo_id"`
	Hash    string               `json:"hash"`
	Width   int                  `json:"width"`
	Height  int                  `json:"height"`
	Cached  bool                 `json:"cached"`
}

// PredictionEvent is what viewers receive over the websocket after each
// prediction. It carries no image payloads.
type PredictionEvent struct {
	Type       string         `json:"type"`
	PhotoID    int64          `json:"photo_id"`
	Filename   string         `json:"filename"`
	Plants     int            `json:"plants"`
	Containers map[string]int `json:"containers"`
	Species    []string       `json:"species"`
}

// NewPredictionEvent summarizes p for viewers.
func NewPredictionEvent(p *Prediction, filename string) PredictionEvent {
	event := PredictionEvent{
		Type:       "prediction",
		PhotoID:    p.PhotoID,
		Filename:   filename,
		Plants:     len(p.Records),
		Containers: make(map[string]int),
		Species:    []string{},
	}
	for _, r := range p.Records {
		event.Containers[string(r.Container)]++
		if r.Species.Known() {
			event.Species = append(event.Species, string(r.Species.Label))
		}
	}
	return event
}
