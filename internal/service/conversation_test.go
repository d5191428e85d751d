package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAgentReply_TakesOverConversation(t *testing.T) {
	convs := new(mockConversationRepo)
	messages := new(mockMessageRepo)
	svc := NewConversationService(convs, messages, nil)

	tenantID := uuid.New()
	conv := openConversation(tenantID, domain.StatusHandoverRequested)

	convs.On("Get", mock.Anything, conv.ID).Return(conv, nil)
	convs.On("UpdateStatus", mock.Anything, conv.ID, domain.StatusHandoverRequested, domain.StatusAgentActive).Return(true, nil)
	messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)

	msg, err := svc.AgentReply(context.Background(), tenantID, conv.ID, domain.AgentReplyRequest{
		Message: "Hi, this is Nour from support. I can help with that order.",
	})

	assert.NoError(t, err)
	assert.True(t, msg.FromAgent)
	assert.Equal(t, domain.RoleAssistant, msg.Role)
	convs.AssertCalled(t, "UpdateStatus", mock.Anything, conv.ID, domain.StatusHandoverRequested, domain.StatusAgentActive)
}

func TestAgentReply_AlreadyAgentActiveSkipsTransition(t *testing.T) {
	convs := new(mockConversationRepo)
	messages := new(mockMessageRepo)
	svc := NewConversationService(convs, messages, nil)

	tenantID := uuid.New()
	conv := openConversation(tenantID, domain.StatusAgentActive)

	convs.On("Get", mock.Anything, conv.ID).Return(conv, nil)
	messages.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)

	_, err := svc.AgentReply(context.Background(), tenantID, conv.ID, domain.AgentReplyRequest{Message: "Following up."})

	assert.NoError(t, err)
	convs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAgentReply_RejectsForeignTenant(t *testing.T) {
	convs := new(mockConversationRepo)
	messages := new(mockMessageRepo)
	svc := NewConversationService(convs, messages, nil)

	conv := openConversation(uuid.New(), domain.StatusActive)
	convs.On("Get", mock.Anything, conv.ID).Return(conv, nil)

	_, err := svc.AgentReply(context.Background(), uuid.New(), conv.ID, domain.AgentReplyRequest{Message: "hi"})

	assert.Error(t, err)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAgentReply_RejectsClosedConversation(t *testing.T) {
	convs := new(mockConversationRepo)
	messages := new(mockMessageRepo)
	svc := NewConversationService(convs, messages, nil)

	tenantID := uuid.New()
	conv := openConversation(tenantID, domain.StatusClosed)
	convs.On("Get", mock.Anything, conv.ID).Return(conv, nil)

	_, err := svc.AgentReply(context.Background(), tenantID, conv.ID, domain.AgentReplyRequest{Message: "hi"})

	assert.Error(t, err)
}

func TestClose_WithRating(t *testing.T) {
	convs := new(mockConversationRepo)
	svc := NewConversationService(convs, new(mockMessageRepo), nil)

	tenantID := uuid.New()
	conv := openConversation(tenantID, domain.StatusActive)
	rating := 5

	convs.On("Get", mock.Anything, conv.ID).Return(conv, nil)
	convs.On("Close", mock.Anything, conv.ID, &rating).Return(nil)

	err := svc.Close(context.Background(), tenantID, conv.ID, domain.CloseConversationRequest{Rating: &rating})

	assert.NoError(t, err)
	convs.AssertCalled(t, "Close", mock.Anything, conv.ID, &rating)
}

func TestClose_AlreadyClosedIsIdempotent(t *testing.T) {
	convs := new(mockConversationRepo)
	svc := NewConversationService(convs, new(mockMessageRepo), nil)

	tenantID := uuid.New()
	conv := openConversation(tenantID, domain.StatusClosed)
	convs.On("Get", mock.Anything, conv.ID).Return(conv, nil)

	err := svc.Close(context.Background(), tenantID, conv.ID, domain.CloseConversationRequest{})

	assert.NoError(t, err)
	convs.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessages_MarksReadByBusiness(t *testing.T) {
	convs := new(mockConversationRepo)
	messages := new(mockMessageRepo)
	svc := NewConversationService(convs, messages, nil)

	tenantID := uuid.New()
	conv := openConversation(tenantID, domain.StatusActive)

	convs.On("Get", mock.Anything, conv.ID).Return(conv, nil)
	messages.On("ListByConversation", mock.Anything, conv.ID, 200).Return([]domain.Message{
		{ID: uuid.New(), Role: domain.RoleUser, Content: "hello"},
	}, nil)
	messages.On("MarkRead", mock.Anything, conv.ID, true).Return(nil)

	out, err := svc.Messages(context.Background(), tenantID, conv.ID, 0)

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	messages.AssertCalled(t, "MarkRead", mock.Anything, conv.ID, true)
}
