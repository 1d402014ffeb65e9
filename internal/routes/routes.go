package routes

import (
	"net/http"

	"gardenvision/internal/config"
	"gardenvision/internal/handlers"
	"gardenvision/internal/logger"
	"gardenvision/internal/middleware"
	"gardenvision/internal/services"
	"gardenvision/internal/services/websocket"
)

// SetupRoutes registers the prediction API, photo history, live viewer and
// log endpoints, wrapped with recovery, request logging and CORS.
func SetupRoutes(manager *services.Manager, hub *websocket.HubService, checks map[string]handlers.Check, cfg *config.Config, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Prediction
	mux.HandleFunc("/predict", handlers.PredictHandler(manager, cfg, log))
	mux.HandleFunc("/predict/annotated", handlers.AnnotatedPredictHandler(manager, cfg, log))

	// History
	mux.HandleFunc("/api/photos", handlers.GetPhotosHandler(manager, log))
	mux.HandleFunc("/api/photos/plants", handlers.GetPhotoPlantsHandler(manager, log))
	mux.HandleFunc("/api/photos/view", handlers.ViewPhotoHandler(manager, log))
	mux.HandleFunc("/api/plants/stats", handlers.GetStatsHandler(manager, log))
	mux.HandleFunc("/api/view", handlers.ViewWebsocketHandler(hub, log))

	mux.HandleFunc("/health", handlers.HealthHandler(checks, log))

	// Log endpoints
	for _, file := range []string{logger.InfoFile, logger.WarningFile, logger.ErrorFile} {
		name := file[:len(file)-len(".log")]
		mux.HandleFunc("/logs/"+name, handlers.ShowLogsHandler(cfg, file))
		mux.HandleFunc("/logs/"+name+"/clear", handlers.ClearLogsHandler(log, file))
	}

	return middleware.Chain(mux,
		middleware.Recover(log.Zap()),
		middleware.Logger(log.Zap()),
		middleware.CORS(cfg.AllowedOrigins),
	)
}
