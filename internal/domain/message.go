package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Pipeline actions recorded on assistant turns. The handover detector reads
// the previous turn's action to know whether details were already requested.
const (
	ActionAskDetails       = "ask_details"
	ActionHandoverComplete = "handover_complete"
	ActionContactRequest   = "contact_request"
)

// MessageMeta carries per-turn bookkeeping persisted alongside the content.
type MessageMeta struct {
	Action       string   `json:"action,omitempty"`
	RequestText  string   `json:"request_text,omitempty"`
	Model        string   `json:"model,omitempty"`
	TokensUsed   int      `json:"tokens_used,omitempty"`
	Sources      []string `json:"sources,omitempty"`
	KnowledgeIDs []string `json:"knowledge_ids,omitempty"`
}

// Message is one immutable turn in a conversation. The message log is
// append-only; read flags are the only mutable columns.
type Message struct {
	ID             uuid.UUID    `json:"id"`
	ConversationID uuid.UUID    `json:"conversation_id"`
	TenantID       uuid.UUID    `json:"tenant_id"`
	Role           MessageRole  `json:"role"`
	Content        string       `json:"content"`
	WasFromCache   bool         `json:"was_from_cache"`
	FromAgent      bool         `json:"from_agent"`
	ReadByBusiness bool         `json:"read_by_business"`
	ReadByVisitor  bool         `json:"read_by_visitor"`
	Meta           *MessageMeta `json:"meta,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
	// LastAssistant returns the most recent assistant turn in a
	// conversation, or nil when the assistant has not spoken yet.
	LastAssistant(ctx context.Context, conversationID uuid.UUID) (*Message, error)
	MarkRead(ctx context.Context, conversationID uuid.UUID, byBusiness bool) error
}
