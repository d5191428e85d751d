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

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends a message. Messages are immutable once written.
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, tenant_id, role, content, was_from_cache, from_agent, read_by_business, read_by_visitor, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var metaJSON []byte
	if message.Meta != nil {
		var err error
		metaJSON, err = json.Marshal(message.Meta)
		if err != nil {
			return fmt.Errorf("failed to marshal message meta: %w", err)
		}
	}

	_, err := r.db.Pool.Exec(ctx, query,
		message.ID,
		message.ConversationID,
		message.TenantID,
		message.Role,
		message.Content,
		message.WasFromCache,
		message.FromAgent,
		message.ReadByBusiness,
		message.ReadByVisitor,
		metaJSON,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListByConversation retrieves the latest messages in chronological order
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	query := `
		SELECT id, conversation_id, tenant_id, role, content, was_from_cache, from_agent, read_by_business, read_by_visitor, meta, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}

	// Reverse to return chronological order (oldest first)
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// LastAssistant returns the most recent assistant turn, or nil when none
func (r *MessageRepository) LastAssistant(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT id, conversation_id, tenant_id, role, content, was_from_cache, from_agent, read_by_business, read_by_visitor, meta, created_at
		FROM messages
		WHERE conversation_id = $1 AND role = 'assistant'
		ORDER BY created_at DESC
		LIMIT 1
	`

	m, err := scanMessage(r.db.Pool.QueryRow(ctx, query, conversationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return m, nil
}

// MarkRead flips the read flag for one side of the conversation
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID uuid.UUID, byBusiness bool) error {
	column := "read_by_visitor"
	if byBusiness {
		column = "read_by_business"
	}

	_, err := r.db.Pool.Exec(ctx,
		fmt.Sprintf(`UPDATE messages SET %s = true WHERE conversation_id = $1`, column),
		conversationID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}

	return nil
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	var roleStr string
	var metaJSON []byte

	if err := row.Scan(
		&m.ID,
		&m.ConversationID,
		&m.TenantID,
		&roleStr,
		&m.Content,
		&m.WasFromCache,
		&m.FromAgent,
		&m.ReadByBusiness,
		&m.ReadByVisitor,
		&metaJSON,
		&m.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}

	m.Role = domain.MessageRole(roleStr)
	if len(metaJSON) > 0 {
		var meta domain.MessageMeta
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			return nil, fmt.Errorf("failed to parse message meta: %w", err)
		}
		m.Meta = &meta
	}

	return &m, nil
}
