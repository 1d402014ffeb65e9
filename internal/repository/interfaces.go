package repository

import (
	"gardenvision/internal/models"
)

// PhotoRepository defines the interface for photo data operations.
type PhotoRepository interface {
	// Save inserts the photo or, when its hash is already stored, refreshes the
	// existing row. It returns the row id either way.
	Save(photo *models.Photo) (int64, error)

	GetByID(id int64) (*models.Photo, error)
	GetByHash(hash string) (*models.Photo, error)
	GetAll(filter *models.PhotoFilter) ([]models.Photo, error)
	GetTotalCount(filter *models.PhotoFilter) (int, error)

	Delete(id int64) error
}

// PlantRepository defines the interface for plant data operations.
type PlantRepository interface {
	// ReplaceForPhoto upserts plants by (photo_id, idx) and removes rows of
	// the photo whose idx is no longer present.
	ReplaceForPhoto(photoID int64, plants []models.Plant) error

	GetByPhotoID(photoID int64) ([]models.Plant, error)
	GetStats() (*models.PlantStats, error)
}
