package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/notify"
	"github.com/rs/zerolog/log"
)

// ConversationService backs the dashboard side of a conversation: agent
// takeover, closing, listing and read tracking.
type ConversationService struct {
	convRepo    domain.ConversationRepository
	messageRepo domain.MessageRepository
	emitter     notify.Emitter
}

func NewConversationService(convRepo domain.ConversationRepository, messageRepo domain.MessageRepository, emitter notify.Emitter) *ConversationService {
	return &ConversationService{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		emitter:     emitter,
	}
}

// AgentReply posts a human agent's message into a conversation. The first
// agent reply in a handover-requested conversation moves it to agent
// control; from then on the automated pipeline stays out.
func (s *ConversationService) AgentReply(ctx context.Context, tenantID, conversationID uuid.UUID, req domain.AgentReplyRequest) (*domain.Message, error) {
	conv, err := s.convRepo.Get(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv.TenantID != tenantID {
		return nil, fmt.Errorf("conversation does not belong to tenant")
	}
	if conv.Status == domain.StatusClosed {
		return nil, fmt.Errorf("conversation is closed")
	}

	if conv.Status != domain.StatusAgentActive {
		won, err := s.convRepo.UpdateStatus(ctx, conversationID, conv.Status, domain.StatusAgentActive)
		if err != nil {
			return nil, fmt.Errorf("failed to take over conversation: %w", err)
		}
		if !won {
			// Another agent got there first; the reply still lands.
			log.Debug().Str("conversation_id", conversationID.String()).Msg("takeover raced, continuing")
		}
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		TenantID:       tenantID,
		Role:           domain.RoleAssistant,
		Content:        req.Message,
		FromAgent:      true,
		CreatedAt:      time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist agent reply: %w", err)
	}

	return msg, nil
}

// Close finishes a conversation with an optional 1-5 rating. Closing is
// terminal; a later visitor message starts a new conversation.
func (s *ConversationService) Close(ctx context.Context, tenantID, conversationID uuid.UUID, req domain.CloseConversationRequest) error {
	conv, err := s.convRepo.Get(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv.TenantID != tenantID {
		return fmt.Errorf("conversation does not belong to tenant")
	}
	if conv.Status == domain.StatusClosed {
		return nil
	}

	if err := s.convRepo.Close(ctx, conversationID, req.Rating); err != nil {
		return fmt.Errorf("failed to close conversation: %w", err)
	}

	return nil
}

// List returns a page of the tenant's conversations, newest first
func (s *ConversationService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]domain.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.convRepo.ListByTenant(ctx, tenantID, limit, offset)
}

// Messages returns a conversation transcript and marks visitor messages
// as read by the business.
func (s *ConversationService) Messages(ctx context.Context, tenantID, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	conv, err := s.convRepo.Get(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv.TenantID != tenantID {
		return nil, fmt.Errorf("conversation does not belong to tenant")
	}

	if limit <= 0 || limit > 500 {
		limit = 200
	}
	messages, err := s.messageRepo.ListByConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	if err := s.messageRepo.MarkRead(ctx, conversationID, true); err != nil {
		log.Warn().Err(err).Msg("failed to mark messages read")
	}

	return messages, nil
}
