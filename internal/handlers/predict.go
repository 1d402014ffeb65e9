package handlers

import (
	"errors"
	"io"
	"net/http"

	"gardenvision/internal/config"
	"gardenvision/internal/logger"
	"gardenvision/internal/services"
)

const imageField = "image"

// readUpload returns the bytes and name of the multipart "image" field.
func readUpload(w http.ResponseWriter, r *http.Request, cfg *config.Config) ([]byte, string, error) {
	if r.ContentLength > cfg.MaxUploadSize {
		return nil, "", errTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(cfg.MaxUploadSize); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, "", errTooLarge
		}
		return nil, "", errMissingImage
	}

	file, header, err := r.FormFile(imageField)
	if err != nil {
		return nil, "", errMissingImage
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

var (
	errMissingImage = errors.New(`multipart field "image" is required`)
	errTooLarge     = errors.New("upload too large")
)

// PredictHandler runs the plant pipeline on an uploaded image and returns
// {"image": [...records], "photo_id", "width", "height", "cached"}.
func PredictHandler(manager *services.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed", logger)
			return
		}

		data, filename, err := readUpload(w, r, cfg)
		if err != nil {
			writeError(w, statusFor(err), err.Error(), logger)
			return
		}

		prediction, err := manager.Predict(r.Context(), data, filename)
		if err != nil {
			logger.Error("Prediction failed for %s: %v", filename, err)
			writeError(w, statusFor(err), err.Error(), logger)
			return
		}

		writeJSON(w, http.StatusOK, prediction, logger)
	}
}

// AnnotatedPredictHandler returns the uploaded image with plant boxes drawn on it.
func AnnotatedPredictHandler(manager *services.Manager, cfg *config.Config, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed", logger)
			return
		}

		data, _, err := readUpload(w, r, cfg)
		if err != nil {
			writeError(w, statusFor(err), err.Error(), logger)
			return
		}

		annotated, err := manager.Annotate(r.Context(), data)
		if err != nil {
			logger.Error("Annotation failed: %v", err)
			writeError(w, statusFor(err), err.Error(), logger)
			return
		}

		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(annotated)
	}
}
