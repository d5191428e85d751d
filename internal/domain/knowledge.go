package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// KnowledgeChunk is a unit of tenant-supplied reference content used to
// ground answers. Chunks are written by the ingestion collaborator; the
// message pipeline only reads them.
type KnowledgeChunk struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KnowledgeRepository defines the interface for knowledge chunk storage
type KnowledgeRepository interface {
	Upsert(ctx context.Context, chunk *KnowledgeChunk) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]KnowledgeChunk, error)
	// ListRecent returns the newest chunks first, capped at limit.
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]KnowledgeChunk, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// KnowledgeChunkCreate represents an ingestion write
type KnowledgeChunkCreate struct {
	Content string `json:"content" validate:"required,max=8000"`
	Source  string `json:"source,omitempty" validate:"max=512"`
}
