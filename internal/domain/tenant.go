package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tenant represents a business account on the platform. It is the unit of
// quota, widget configuration, and cache namespacing.
type Tenant struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	MessageQuota int          `json:"message_quota"`
	MessagesUsed int          `json:"messages_used"`
	WidgetConfig WidgetConfig `json:"widget_config"`
	Active       bool         `json:"active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// QuotaExceeded reports whether the tenant has consumed its entitlement.
// Evaluated against the usage before the current request is counted.
func (t *Tenant) QuotaExceeded() bool {
	return t.MessagesUsed >= t.MessageQuota
}

// WidgetConfig is the typed widget configuration. It is parsed once at the
// storage boundary; callers never deal with the raw JSON blob.
type WidgetConfig struct {
	Dialect            string `json:"dialect"`
	CollectContactInfo bool   `json:"collect_contact_info"`
	BrandName          string `json:"brand_name,omitempty"`
	BrandColor         string `json:"brand_color,omitempty"`
	WelcomeMessage     string `json:"welcome_message,omitempty"`
	WebhookURL         string `json:"webhook_url,omitempty"`
}

// ArabicDialect reports whether replies are expected in Arabic.
func (c WidgetConfig) ArabicDialect() bool {
	switch c.Dialect {
	case "ar", "egyptian", "gulf", "levantine", "msa":
		return true
	}
	return false
}

// ParseWidgetConfig decodes a stored widget config blob. An empty blob
// yields the zero config rather than an error.
func ParseWidgetConfig(raw []byte) (WidgetConfig, error) {
	var cfg WidgetConfig
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse widget config: %w", err)
	}
	return cfg, nil
}

// TenantRepository defines the interface for tenant storage
type TenantRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	Create(ctx context.Context, tenant *Tenant) error
	UpdateWidgetConfig(ctx context.Context, id uuid.UUID, cfg WidgetConfig) error
	// IncrementUsage bumps messages_used by one at the storage layer and
	// returns the new value. The counter is monotonic; there is no
	// corresponding decrement.
	IncrementUsage(ctx context.Context, id uuid.UUID) (int, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
