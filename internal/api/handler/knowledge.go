package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/middleware"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/response"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/service"
)

// KnowledgeHandler handles dashboard knowledge-base endpoints
type KnowledgeHandler struct {
	knowledgeService *service.KnowledgeService
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeService: knowledgeService}
}

// Create ingests a new knowledge chunk
func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.KnowledgeChunkCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	chunk, err := h.knowledgeService.Ingest(r.Context(), tenantID, req)
	if err != nil {
		response.InternalError(w, "failed to store knowledge chunk")
		return
	}

	response.Created(w, chunk)
}

// List returns the tenant's knowledge chunks
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chunks, err := h.knowledgeService.List(r.Context(), tenantID)
	if err != nil {
		response.InternalError(w, "failed to list knowledge chunks")
		return
	}

	response.OK(w, map[string]any{
		"chunks": chunks,
		"count":  len(chunks),
	})
}

// Delete removes a knowledge chunk
func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chunkID, err := uuid.Parse(chi.URLParam(r, "chunkID"))
	if err != nil {
		response.BadRequest(w, "invalid chunk ID")
		return
	}

	if err := h.knowledgeService.Delete(r.Context(), tenantID, chunkID); err != nil {
		response.NotFound(w, "knowledge chunk not found")
		return
	}

	response.NoContent(w)
}

// InvalidateCache drops the tenant's cached answers
func (h *KnowledgeHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	removed, err := h.knowledgeService.InvalidateCache(r.Context(), tenantID)
	if err != nil {
		response.InternalError(w, "failed to invalidate cache")
		return
	}

	response.OK(w, map[string]any{
		"message":      "cache invalidated",
		"keys_deleted": removed,
	})
}
