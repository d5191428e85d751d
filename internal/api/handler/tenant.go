package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mahmoud-fouad2/chatdesk/internal/api/middleware"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/response"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/service"
)

// TenantHandler handles dashboard tenant-settings endpoints
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// Settings returns the tenant record
func (h *TenantHandler) Settings(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	tenant, err := h.tenantService.Settings(r.Context(), tenantID)
	if err != nil {
		response.InternalError(w, "failed to load settings")
		return
	}

	response.OK(w, tenant)
}

// UpdateWidget replaces the widget configuration
func (h *TenantHandler) UpdateWidget(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var cfg domain.WidgetConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.tenantService.UpdateWidgetConfig(r.Context(), tenantID, cfg); err != nil {
		response.InternalError(w, "failed to update widget config")
		return
	}

	response.OK(w, cfg)
}

// Usage returns the tenant's quota snapshot
func (h *TenantHandler) Usage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	usage, err := h.tenantService.Usage(r.Context(), tenantID)
	if err != nil {
		response.InternalError(w, "failed to load usage")
		return
	}

	response.OK(w, usage)
}
