package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/response"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/service"
)

// ChatHandler handles the public widget endpoints
type ChatHandler struct {
	chatService   *service.ChatService
	tenantService *service.TenantService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, tenantService *service.TenantService) *ChatHandler {
	return &ChatHandler{chatService: chatService, tenantService: tenantService}
}

// Message handles an inbound visitor message
func (h *ChatHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	result, err := h.chatService.HandleMessage(r.Context(), req)
	if err != nil {
		var quotaErr *domain.QuotaExceededError
		if errors.As(err, &quotaErr) {
			response.TooManyRequests(w, map[string]any{
				"code":  "quota_exceeded",
				"used":  quotaErr.Used,
				"quota": quotaErr.Quota,
			})
			return
		}
		response.InternalError(w, "failed to process message")
		return
	}

	response.OK(w, result)
}

// Widget returns the public widget bootstrap for a tenant
func (h *ChatHandler) Widget(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tenantID"))
	if err != nil {
		response.BadRequest(w, "invalid tenant ID")
		return
	}

	info, err := h.tenantService.WidgetInfo(r.Context(), tenantID)
	if err != nil {
		response.NotFound(w, "widget not available")
		return
	}

	response.OK(w, info)
}
