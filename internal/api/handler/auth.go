package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/middleware"
	"github.com/mahmoud-fouad2/chatdesk/internal/api/response"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/service"
)

var validate = validator.New()

// AuthHandler handles dashboard authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles tenant signup. The business and its first dashboard
// user are created together.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	user, tokens, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(w, "email already registered")
			return
		}
		response.InternalError(w, "registration failed")
		return
	}

	response.Created(w, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"tenant_id": user.TenantID,
		"tokens":    tokens,
	})
}

// Login handles dashboard login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	user, tokens, err := h.authService.Login(r.Context(), input)
	if err != nil {
		response.Unauthorized(w, "invalid email or password")
		return
	}

	response.OK(w, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"tenant_id": user.TenantID,
		"tokens":    tokens,
	})
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "refresh_token is required")
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		response.Unauthorized(w, "invalid or expired refresh token")
		return
	}

	response.OK(w, tokens)
}

// Me returns the authenticated caller's identity
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	email, _ := middleware.GetUserEmail(r.Context())
	tenantID, _ := middleware.GetTenantID(r.Context())

	response.OK(w, map[string]any{
		"id":        userID,
		"email":     email,
		"tenant_id": tenantID,
	})
}

// validationMessages turns validator errors into a field-keyed map
func validationMessages(err error) any {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make(map[string]string)
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages[e.Field()] = "field is required"
		case "email":
			messages[e.Field()] = "invalid email format"
		case "min":
			messages[e.Field()] = "must be at least " + e.Param() + " characters"
		case "max":
			messages[e.Field()] = "must be at most " + e.Param() + " characters"
		default:
			messages[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return messages
}
