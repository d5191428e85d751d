package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockKnowledgeRepo struct {
	mock.Mock
}

func (m *mockKnowledgeRepo) Upsert(ctx context.Context, chunk *domain.KnowledgeChunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

func (m *mockKnowledgeRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]domain.KnowledgeChunk, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeChunk), args.Error(1)
}

func (m *mockKnowledgeRepo) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.KnowledgeChunk, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeChunk), args.Error(1)
}

func (m *mockKnowledgeRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func TestIngest_EmbedsAndInvalidatesCache(t *testing.T) {
	repo := new(mockKnowledgeRepo)
	embedder := new(mockEmbedder)
	cache := new(mockInvalidator)
	svc := NewKnowledgeService(repo, embedder, cache)

	tenantID := uuid.New()
	embedder.On("Embed", mock.Anything, "We deliver nationwide within 3 days.").Return([]float32{0.1, 0.2}, nil)
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.KnowledgeChunk")).Return(nil)
	cache.On("Invalidate", mock.Anything, tenantID).Return(int64(4), nil)

	chunk, err := svc.Ingest(context.Background(), tenantID, domain.KnowledgeChunkCreate{
		Content: "We deliver nationwide within 3 days.",
		Source:  "shipping-faq",
	})

	assert.NoError(t, err)
	assert.Equal(t, tenantID, chunk.TenantID)
	assert.Equal(t, []float32{0.1, 0.2}, chunk.Embedding)
	cache.AssertCalled(t, "Invalidate", mock.Anything, tenantID)
}

func TestIngest_EmbeddingFailureKeepsChunk(t *testing.T) {
	repo := new(mockKnowledgeRepo)
	embedder := new(mockEmbedder)
	cache := new(mockInvalidator)
	svc := NewKnowledgeService(repo, embedder, cache)

	tenantID := uuid.New()
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("embedding service down"))
	repo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.KnowledgeChunk")).Return(nil)
	cache.On("Invalidate", mock.Anything, tenantID).Return(int64(0), nil)

	chunk, err := svc.Ingest(context.Background(), tenantID, domain.KnowledgeChunkCreate{Content: "Returns accepted within 14 days."})

	assert.NoError(t, err)
	assert.Nil(t, chunk.Embedding)
	repo.AssertCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestDelete_InvalidatesCache(t *testing.T) {
	repo := new(mockKnowledgeRepo)
	cache := new(mockInvalidator)
	svc := NewKnowledgeService(repo, nil, cache)

	tenantID := uuid.New()
	chunkID := uuid.New()
	repo.On("Delete", mock.Anything, tenantID, chunkID).Return(nil)
	cache.On("Invalidate", mock.Anything, tenantID).Return(int64(2), nil)

	err := svc.Delete(context.Background(), tenantID, chunkID)

	assert.NoError(t, err)
	cache.AssertCalled(t, "Invalidate", mock.Anything, tenantID)
}

func TestDelete_RepoErrorSkipsInvalidation(t *testing.T) {
	repo := new(mockKnowledgeRepo)
	cache := new(mockInvalidator)
	svc := NewKnowledgeService(repo, nil, cache)

	tenantID := uuid.New()
	chunkID := uuid.New()
	repo.On("Delete", mock.Anything, tenantID, chunkID).Return(errors.New("not found"))

	err := svc.Delete(context.Background(), tenantID, chunkID)

	assert.Error(t, err)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}
