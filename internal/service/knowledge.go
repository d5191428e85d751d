package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/knowledge"
	"github.com/rs/zerolog/log"
)

// CacheInvalidator drops a tenant's cached answers, returning how many
// entries were removed.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// KnowledgeService manages a tenant's knowledge chunks. Any mutation
// invalidates the tenant's answer cache so stale answers stop serving.
type KnowledgeService struct {
	repo     domain.KnowledgeRepository
	embedder knowledge.Embedder
	cache    CacheInvalidator
}

func NewKnowledgeService(repo domain.KnowledgeRepository, embedder knowledge.Embedder, cache CacheInvalidator) *KnowledgeService {
	return &KnowledgeService{
		repo:     repo,
		embedder: embedder,
		cache:    cache,
	}
}

// Ingest stores a new chunk, embedding it when an embedder is available.
// An embedding failure is logged and the chunk is kept without a vector;
// keyword fallback still finds it.
func (s *KnowledgeService) Ingest(ctx context.Context, tenantID uuid.UUID, req domain.KnowledgeChunkCreate) (*domain.KnowledgeChunk, error) {
	chunk := &domain.KnowledgeChunk{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Content:   req.Content,
		Source:    req.Source,
		CreatedAt: time.Now(),
	}

	if s.embedder != nil {
		embedding, err := s.embedder.Embed(ctx, req.Content)
		if err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("embedding failed, storing chunk without vector")
		} else {
			chunk.Embedding = embedding
		}
	}

	if err := s.repo.Upsert(ctx, chunk); err != nil {
		return nil, fmt.Errorf("failed to store knowledge chunk: %w", err)
	}

	s.invalidate(ctx, tenantID)

	return chunk, nil
}

// List returns all of a tenant's chunks
func (s *KnowledgeService) List(ctx context.Context, tenantID uuid.UUID) ([]domain.KnowledgeChunk, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

// Delete removes a chunk and invalidates the tenant's answer cache
func (s *KnowledgeService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete knowledge chunk: %w", err)
	}
	s.invalidate(ctx, tenantID)
	return nil
}

// InvalidateCache drops the tenant's cached answers on demand
func (s *KnowledgeService) InvalidateCache(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Invalidate(ctx, tenantID)
}

func (s *KnowledgeService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	removed, err := s.cache.Invalidate(ctx, tenantID)
	if err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("answer cache invalidation failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Str("tenant_id", tenantID.String()).Msg("answer cache invalidated")
	}
}
