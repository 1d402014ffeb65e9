package handlers

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"gardenvision/internal/dto"
	"gardenvision/internal/logger"
	"gardenvision/internal/models"
	"gardenvision/internal/services"
)

// GetPhotosHandler lists stored photos with optional container, species,
// class and date filters.
func GetPhotosHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 24)

		filter := &models.PhotoFilter{
			Container:  q.Get("container"),
			Species:    q.Get("species"),
			PlantClass: q.Get("class"),
			Limit:      limit,
			Offset:     (page - 1) * limit,
		}
		if d, err := time.Parse("2006-01-02", q.Get("after")); err == nil {
			filter.StartDate = d
		}
		if d, err := time.Parse("2006-01-02", q.Get("before")); err == nil {
			filter.EndDate = d
		}

		photos, total, err := manager.Photos(filter)
		if err != nil {
			logger.Error("Error listing photos: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list photos", logger)
			return
		}

		writeJSON(w, http.StatusOK, dto.NewPhotosData(photos, total, page, limit), logger)
	}
}

func photoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	return id, err == nil && id > 0
}

// GetPhotoPlantsHandler returns the stored plants of one photo.
func GetPhotoPlantsHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := photoID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid photo id", logger)
			return
		}

		photo, plants, err := manager.Plants(id)
		if err != nil {
			logger.Error("Error loading plants of photo %d: %v", id, err)
			writeError(w, http.StatusInternalServerError, "failed to load plants", logger)
			return
		}
		if photo == nil {
			writeError(w, http.StatusNotFound, "photo not found", logger)
			return
		}

		writeJSON(w, http.StatusOK, dto.PhotoPlantsData{Photo: photo, Plants: plants}, logger)
	}
}

// ViewPhotoHandler serves the archived original of a photo.
func ViewPhotoHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := photoID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid photo id", logger)
			return
		}

		photo, _, err := manager.Plants(id)
		if err != nil || photo == nil || photo.FilePath == "" {
			http.NotFound(w, r)
			return
		}
		if _, err := os.Stat(photo.FilePath); os.IsNotExist(err) {
			// Still in the write buffer.
			writeError(w, http.StatusServiceUnavailable, "photo not yet archived", logger)
			return
		}

		http.ServeFile(w, r, photo.FilePath)
	}
}

// GetStatsHandler returns plant counts per container, species and class.
func GetStatsHandler(manager *services.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := manager.Stats()
		if err != nil {
			logger.Error("Error computing stats: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to compute stats", logger)
			return
		}
		writeJSON(w, http.StatusOK, stats, logger)
	}
}
