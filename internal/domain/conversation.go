package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConversationStatus is the lifecycle state of a conversation
type ConversationStatus string

const (
	StatusActive            ConversationStatus = "active"
	StatusHandoverRequested ConversationStatus = "handover_requested"
	StatusAgentActive       ConversationStatus = "agent_active"
	StatusClosed            ConversationStatus = "closed"
)

// WaitingForAgent reports whether inbound messages should bypass the
// automated pipeline entirely.
func (s ConversationStatus) WaitingForAgent() bool {
	return s == StatusHandoverRequested || s == StatusAgentActive
}

// PreChatData holds the contact-collection scratch state. Both fields start
// nil and are filled opportunistically as the visitor volunteers them.
type PreChatData struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// Complete reports whether both contact fields are known.
func (p *PreChatData) Complete() bool {
	return p != nil && p.Name != nil && p.Phone != nil
}

// Conversation is a thread between one visitor session and a tenant.
// Conversations are closed, never deleted. A message addressed to a closed
// conversation opens a new one; closed is terminal.
type Conversation struct {
	ID          uuid.UUID          `json:"id"`
	TenantID    uuid.UUID          `json:"tenant_id"`
	SessionID   string             `json:"session_id"`
	Status      ConversationStatus `json:"status"`
	PreChatData *PreChatData       `json:"pre_chat_data,omitempty"`
	Rating      *int               `json:"rating,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ConversationRepository defines the interface for conversation storage
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	Get(ctx context.Context, id uuid.UUID) (*Conversation, error)
	// GetOpenBySession returns the newest non-closed conversation for a
	// visitor session, or nil when none exists.
	GetOpenBySession(ctx context.Context, tenantID uuid.UUID, sessionID string) (*Conversation, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]Conversation, error)
	// UpdateStatus transitions status only when the stored status still
	// matches expected, returning false when another writer won.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next ConversationStatus) (bool, error)
	UpdatePreChatData(ctx context.Context, id uuid.UUID, data *PreChatData) error
	Close(ctx context.Context, id uuid.UUID, rating *int) error
}
