package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
)

// KnowledgeRepository implements domain.KnowledgeRepository
type KnowledgeRepository struct {
	db *DB
}

// NewKnowledgeRepository creates a new knowledge repository
func NewKnowledgeRepository(db *DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// Upsert inserts or replaces a knowledge chunk
func (r *KnowledgeRepository) Upsert(ctx context.Context, chunk *domain.KnowledgeChunk) error {
	query := `
		INSERT INTO knowledge_chunks (id, tenant_id, content, embedding, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content, embedding = EXCLUDED.embedding, source = EXCLUDED.source
	`

	embJSON, err := json.Marshal(chunk.Embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query,
		chunk.ID,
		chunk.TenantID,
		chunk.Content,
		embJSON,
		chunk.Source,
		chunk.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert knowledge chunk: %w", err)
	}

	return nil
}

// ListByTenant retrieves all chunks for a tenant with embeddings
func (r *KnowledgeRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.KnowledgeChunk, error) {
	query := `
		SELECT id, tenant_id, content, embedding, source, created_at
		FROM knowledge_chunks
		WHERE tenant_id = $1
	`

	return r.list(ctx, query, tenantID)
}

// ListRecent retrieves the newest chunks first, capped at limit
func (r *KnowledgeRepository) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.KnowledgeChunk, error) {
	query := `
		SELECT id, tenant_id, content, embedding, source, created_at
		FROM knowledge_chunks
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return r.list(ctx, query, tenantID, limit)
}

// Delete removes one chunk, scoped to its tenant
func (r *KnowledgeRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM knowledge_chunks WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete knowledge chunk: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *KnowledgeRepository) list(ctx context.Context, query string, args ...any) ([]domain.KnowledgeChunk, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.KnowledgeChunk
	for rows.Next() {
		var c domain.KnowledgeChunk
		var embJSON []byte

		if err := rows.Scan(&c.ID, &c.TenantID, &c.Content, &embJSON, &c.Source, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge chunk: %w", err)
		}
		if len(embJSON) > 0 {
			if err := json.Unmarshal(embJSON, &c.Embedding); err != nil {
				return nil, fmt.Errorf("failed to parse embedding: %w", err)
			}
		}
		chunks = append(chunks, c)
	}

	return chunks, nil
}
