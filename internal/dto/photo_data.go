// Package dto holds the JSON payloads of the history endpoints.
package dto

import "gardenvision/internal/models"

// PhotosData is a paginated response payload for the photo list.
type PhotosData struct {
	Photos      []models.Photo `json:"photos"`
	Length      int            `json:"length"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
	Limit       int            `json:"pageSize"`
}

// NewPhotosData builds one page of the photo list.
func NewPhotosData(photos []models.Photo, total, page, limit int) PhotosData {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return PhotosData{
		Photos:      photos,
		Length:      total,
		TotalPages:  pages,
		CurrentPage: page,
		Limit:       limit,
	}
}

// PhotoPlantsData is the response of the per-photo plant listing.
type PhotoPlantsData struct {
	Photo  *models.Photo  `json:"photo"`
	Plants []models.Plant `json:"plants"`
}
