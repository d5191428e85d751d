package domain

import "github.com/google/uuid"

// ChatRequest is the widget's message-handling entry point payload
type ChatRequest struct {
	Message        string    `json:"message" validate:"required,max=4000"`
	TenantID       uuid.UUID `json:"tenantId" validate:"required"`
	ConversationID uuid.UUID `json:"conversationId,omitempty"`
	SessionID      string    `json:"sessionId,omitempty" validate:"max=128"`
}

// ChatResponse is the discriminated response for the message endpoint.
// Exactly one of the optional field groups is populated depending on the
// path the pipeline took.
type ChatResponse struct {
	Response       string    `json:"response,omitempty"`
	ConversationID uuid.UUID `json:"conversationId"`
	FromCache      bool      `json:"fromCache"`
	Model          string    `json:"model,omitempty"`
	KnowledgeUsed  bool      `json:"knowledgeUsed"`
	Action         string    `json:"action,omitempty"`
	Status         string    `json:"status,omitempty"`
}

// QuotaExceededError carries the usage snapshot for the upgrade prompt.
// It maps to HTTP 429 with an explicit structured body.
type QuotaExceededError struct {
	Used  int
	Quota int
}

func (e *QuotaExceededError) Error() string {
	return "message quota exceeded"
}

// AgentReplyRequest is a human agent's reply from the dashboard
type AgentReplyRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// CloseConversationRequest closes a conversation with an optional rating
type CloseConversationRequest struct {
	Rating *int `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
}
