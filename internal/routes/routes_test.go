package routes

import (
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"gardenvision/internal/config"
	"gardenvision/internal/fusion"
	"gardenvision/internal/handlers"
	"gardenvision/internal/logger"
	"gardenvision/internal/repository/sqlite"
	"gardenvision/internal/services"
	"gardenvision/internal/services/media"
	"gardenvision/internal/services/storage"
	"gardenvision/internal/services/websocket"
)

func TestSetupRoutes(t *testing.T) {
	cfg := &config.Config{
		MaxUploadSize:  1 << 20,
		LogDirectory:   t.TempDir(),
		AllowedOrigins: []string{"*"},
	}
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	none := fusion.DetectorFunc(func(context.Context, image.Image, float64) ([]fusion.RawDetection, error) {
		return nil, nil
	})
	engine, _ := fusion.NewEngine(none, nil, media.JPEGEncoder{})
	log := logger.NewNop()
	manager := services.NewManager(engine, sqlite.NewPhotoRepository(db), sqlite.NewPlantRepository(db),
		storage.NewBufferService(t.TempDir(), 4, log), nil, services.ManagerOptions{}, log)
	defer manager.Stop()

	router := SetupRoutes(manager, websocket.NewHubService(log), map[string]handlers.Check{"database": db.Ping}, cfg, log)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/photos", http.StatusOK},
		{http.MethodGet, "/api/plants/stats", http.StatusOK},
		{http.MethodGet, "/api/photos/plants?id=x", http.StatusBadRequest},
		{http.MethodGet, "/predict", http.StatusMethodNotAllowed},
		{http.MethodGet, "/logs/info", http.StatusNotFound},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("%s %s = %d, expected %d", tt.method, tt.path, rec.Code, tt.status)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing request id")
			}
		})
	}
}
