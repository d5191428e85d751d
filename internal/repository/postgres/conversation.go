package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
)

// ConversationRepository implements domain.ConversationRepository
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a new conversation
func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	query := `
		INSERT INTO conversations (id, tenant_id, session_id, status, pre_chat_data, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	preChatJSON, err := marshalPreChat(conv.PreChatData)
	if err != nil {
		return err
	}

	_, err = r.db.Pool.Exec(ctx, query,
		conv.ID,
		conv.TenantID,
		conv.SessionID,
		conv.Status,
		preChatJSON,
		conv.Rating,
		conv.CreatedAt,
		conv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	return nil
}

// Get retrieves a conversation by ID
func (r *ConversationRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	query := `
		SELECT id, tenant_id, session_id, status, pre_chat_data, rating, created_at, updated_at
		FROM conversations
		WHERE id = $1
	`

	return r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
}

// GetOpenBySession returns the newest non-closed conversation for a visitor
// session, or nil when every conversation for the session is closed.
func (r *ConversationRepository) GetOpenBySession(ctx context.Context, tenantID uuid.UUID, sessionID string) (*domain.Conversation, error) {
	query := `
		SELECT id, tenant_id, session_id, status, pre_chat_data, rating, created_at, updated_at
		FROM conversations
		WHERE tenant_id = $1 AND session_id = $2 AND status != 'closed'
		ORDER BY created_at DESC
		LIMIT 1
	`

	conv, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, tenantID, sessionID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return conv, err
}

// ListByTenant lists conversations for the dashboard, newest first
func (r *ConversationRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]domain.Conversation, error) {
	query := `
		SELECT id, tenant_id, session_id, status, pre_chat_data, rating, created_at, updated_at
		FROM conversations
		WHERE tenant_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		conv, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}

	return convs, nil
}

// UpdateStatus performs an optimistic status transition. It only writes when
// the stored status still matches expected and reports whether it won.
func (r *ConversationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.ConversationStatus) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE conversations SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, expected, next,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update conversation status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// UpdatePreChatData replaces the contact-collection scratch state
func (r *ConversationRepository) UpdatePreChatData(ctx context.Context, id uuid.UUID, data *domain.PreChatData) error {
	preChatJSON, err := marshalPreChat(data)
	if err != nil {
		return err
	}

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE conversations SET pre_chat_data = $2, updated_at = now() WHERE id = $1`,
		id, preChatJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update pre-chat data: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Close marks a conversation closed with an optional rating
func (r *ConversationRepository) Close(ctx context.Context, id uuid.UUID, rating *int) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE conversations SET status = 'closed', rating = $2, updated_at = now() WHERE id = $1`,
		id, rating,
	)
	if err != nil {
		return fmt.Errorf("failed to close conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ConversationRepository) scanOne(row pgx.Row) (*domain.Conversation, error) {
	conv, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}

func (r *ConversationRepository) scanRow(row rowScanner) (*domain.Conversation, error) {
	var conv domain.Conversation
	var statusStr string
	var preChatJSON []byte

	if err := row.Scan(
		&conv.ID,
		&conv.TenantID,
		&conv.SessionID,
		&statusStr,
		&preChatJSON,
		&conv.Rating,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan conversation: %w", err)
	}

	conv.Status = domain.ConversationStatus(statusStr)
	if len(preChatJSON) > 0 {
		var data domain.PreChatData
		if err := json.Unmarshal(preChatJSON, &data); err != nil {
			return nil, fmt.Errorf("failed to parse pre-chat data: %w", err)
		}
		conv.PreChatData = &data
	}

	return &conv, nil
}

func marshalPreChat(data *domain.PreChatData) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pre-chat data: %w", err)
	}
	return raw, nil
}
