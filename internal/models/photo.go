package models

import "time"

// Photo is one uploaded picture that went through the plant pipeline.
type Photo struct {
	ID         int64     `json:"id"`
	Hash       string    `json:"hash"`
	Filename   string    `json:"filename"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	FilePath   string    `json:"filepath"`
	FileSize   int64     `json:"filesize"`
	PlantCount int       `json:"plant_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// PhotoFilter contains filtering options for querying photos.
type PhotoFilter struct {
	Container  string
	Species    string
	PlantClass string
	StartDate  time.Time
	EndDate    time.Time
	Limit      int
	Offset     int
}
