package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/middleware"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/response"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/service"
)

// ConversationHandler handles dashboard conversation endpoints
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List returns a page of the tenant's conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	conversations, err := h.conversationService.List(r.Context(), tenantID, limit, offset)
	if err != nil {
		response.InternalError(w, "failed to list conversations")
		return
	}

	response.OK(w, map[string]any{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// Messages returns a conversation transcript
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		response.BadRequest(w, "invalid conversation ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.conversationService.Messages(r.Context(), tenantID, conversationID, limit)
	if err != nil {
		response.NotFound(w, "conversation not found")
		return
	}

	response.OK(w, map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}

// Reply posts an agent message into a conversation
func (h *ConversationHandler) Reply(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		response.BadRequest(w, "invalid conversation ID")
		return
	}

	var req domain.AgentReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	msg, err := h.conversationService.AgentReply(r.Context(), tenantID, conversationID, req)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Created(w, msg)
}

// Close finishes a conversation
func (h *ConversationHandler) Close(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		response.BadRequest(w, "invalid conversation ID")
		return
	}

	var req domain.CloseConversationRequest
	if r.Body != nil {
		// An empty body closes without a rating; anything else must parse.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			response.BadRequest(w, "invalid request body")
			return
		}
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "rating must be between 1 and 5")
		return
	}

	if err := h.conversationService.Close(r.Context(), tenantID, conversationID, req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.NoContent(w)
}
