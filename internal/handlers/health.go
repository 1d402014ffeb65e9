package handlers

import (
	"context"
	"net/http"
	"time"

	"gardenvision/internal/logger"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// HealthHandler runs every check and answers 200 when all pass, 503 otherwise.
func HealthHandler(checks map[string]Check, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				result[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}

		writeJSON(w, status, map[string]interface{}{
			"status": http.StatusText(status),
			"checks": result,
		}, logger)
	}
}
