package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/repository/redis"
	"github.com/mahmoud-fouad2/chatdesk/internal/responder"
	"github.com/stretchr/testify/mock"
)

type mockTenantRepo struct {
	mock.Mock
}

func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tenant), args.Error(1)
}

func (m *mockTenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *mockTenantRepo) UpdateWidgetConfig(ctx context.Context, id uuid.UUID, cfg domain.WidgetConfig) error {
	args := m.Called(ctx, id, cfg)
	return args.Error(0)
}

func (m *mockTenantRepo) IncrementUsage(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockTenantRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockConversationRepo struct {
	mock.Mock
}

func (m *mockConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

func (m *mockConversationRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) GetOpenBySession(ctx context.Context, tenantID uuid.UUID, sessionID string) (*domain.Conversation, error) {
	args := m.Called(ctx, tenantID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]domain.Conversation, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Conversation), args.Error(1)
}

func (m *mockConversationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.ConversationStatus) (bool, error) {
	args := m.Called(ctx, id, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *mockConversationRepo) UpdatePreChatData(ctx context.Context, id uuid.UUID, data *domain.PreChatData) error {
	args := m.Called(ctx, id, data)
	return args.Error(0)
}

func (m *mockConversationRepo) Close(ctx context.Context, id uuid.UUID, rating *int) error {
	args := m.Called(ctx, id, rating)
	return args.Error(0)
}

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *mockMessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *mockMessageRepo) LastAssistant(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *mockMessageRepo) MarkRead(ctx context.Context, conversationID uuid.UUID, byBusiness bool) error {
	args := m.Called(ctx, conversationID, byBusiness)
	return args.Error(0)
}

type mockCacheStore struct {
	mock.Mock
}

func (m *mockCacheStore) Get(ctx context.Context, tenantID uuid.UUID, query string) *redis.CachedAnswer {
	args := m.Called(ctx, tenantID, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.CachedAnswer)
}

func (m *mockCacheStore) Set(ctx context.Context, tenantID uuid.UUID, query string, answer *redis.CachedAnswer) {
	m.Called(ctx, tenantID, query, answer)
}

type mockKnowledgeIndex struct {
	mock.Mock
}

func (m *mockKnowledgeIndex) Retrieve(ctx context.Context, tenantID uuid.UUID, query string, k int) ([]domain.KnowledgeChunk, error) {
	args := m.Called(ctx, tenantID, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeChunk), args.Error(1)
}

type mockEmitter struct {
	mock.Mock
}

func (m *mockEmitter) Emit(tenantID, conversationID uuid.UUID, event string, payload map[string]any) {
	m.Called(tenantID, conversationID, event, payload)
}

type mockProvider struct {
	mock.Mock
	name string
}

func (m *mockProvider) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func (m *mockProvider) DefaultModel() string { return "mock-model" }

func (m *mockProvider) IsConfigured() bool { return true }

func (m *mockProvider) Generate(ctx context.Context, req responder.Request, model string) (*responder.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responder.Response), args.Error(1)
}
