package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
)

// WidgetInfo is the public subset of a tenant's widget configuration the
// embedded widget needs to render itself. Nothing sensitive crosses here.
type WidgetInfo struct {
	TenantID       uuid.UUID `json:"tenant_id"`
	BrandName      string    `json:"brand_name"`
	BrandColor     string    `json:"brand_color,omitempty"`
	WelcomeMessage string    `json:"welcome_message,omitempty"`
	Dialect        string    `json:"dialect"`
	CollectContact bool      `json:"collect_contact"`
}

// UsageInfo is the dashboard's quota snapshot
type UsageInfo struct {
	MessagesUsed int `json:"messages_used"`
	MessageQuota int `json:"message_quota"`
}

// TenantService serves tenant settings for both the public widget
// bootstrap and the dashboard.
type TenantService struct {
	repo domain.TenantRepository
}

func NewTenantService(repo domain.TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

// WidgetInfo returns the public widget bootstrap for a tenant
func (s *TenantService) WidgetInfo(ctx context.Context, tenantID uuid.UUID) (*WidgetInfo, error) {
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if !tenant.Active {
		return nil, fmt.Errorf("tenant is deactivated")
	}

	return &WidgetInfo{
		TenantID:       tenant.ID,
		BrandName:      tenant.WidgetConfig.BrandName,
		BrandColor:     tenant.WidgetConfig.BrandColor,
		WelcomeMessage: tenant.WidgetConfig.WelcomeMessage,
		Dialect:        tenant.WidgetConfig.Dialect,
		CollectContact: tenant.WidgetConfig.CollectContactInfo,
	}, nil
}

// Settings returns the full tenant record for the dashboard
func (s *TenantService) Settings(ctx context.Context, tenantID uuid.UUID) (*domain.Tenant, error) {
	return s.repo.GetByID(ctx, tenantID)
}

// UpdateWidgetConfig replaces a tenant's widget configuration
func (s *TenantService) UpdateWidgetConfig(ctx context.Context, tenantID uuid.UUID, cfg domain.WidgetConfig) error {
	if cfg.Dialect == "" {
		cfg.Dialect = "en"
	}
	return s.repo.UpdateWidgetConfig(ctx, tenantID, cfg)
}

// Usage returns the tenant's quota snapshot
func (s *TenantService) Usage(ctx context.Context, tenantID uuid.UUID) (*UsageInfo, error) {
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	return &UsageInfo{
		MessagesUsed: tenant.MessagesUsed,
		MessageQuota: tenant.MessageQuota,
	}, nil
}
