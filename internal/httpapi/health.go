package httpapi

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

// handleHealth checks the remote data source. Connectivity failures still
// report 200 since reads keep working from the Mock Dataset.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !a.service.Remote() {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "partial",
			"message":     "Health check OK (database not configured)",
			"environment": "development/offline mode",
		})
		return
	}

	health, err := a.service.Health(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "success",
			"message": "Database connection OK",
			"data":    map[string]any{"customers": health.Customers},
		})
	case errors.Is(err, store.ErrUnavailable):
		log.Warn().Str("component", "http").Err(err).Msg("health check: database unavailable")
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "partial",
			"message": "Health check OK (database unavailable)",
			"error":   "database unavailable",
		})
	default:
		log.Error().Str("component", "http").Err(err).Msg("health check failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "Database connection failed",
			"details": err.Error(),
		})
	}
}
