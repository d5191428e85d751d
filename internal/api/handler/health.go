package handler

import (
	"net/http"

	"github.com/mahmoud-fouad2/chatdesk/internal/api/response"
	"github.com/mahmoud-fouad2/chatdesk/internal/repository/postgres"
	"github.com/mahmoud-fouad2/chatdesk/internal/responder"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including database connectivity
func ReadyCheck(db *postgres.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListProviders returns the registered responder providers
func ListProviders(router *responder.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.ListProviders(),
			"default_provider": router.DefaultProvider(),
		})
	}
}
