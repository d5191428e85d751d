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

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// TenantRepository implements domain.TenantRepository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetByID retrieves a tenant with its parsed widget config
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tenant, error) {
	query := `
		SELECT id, name, email, message_quota, messages_used, widget_config, active, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`

	var t domain.Tenant
	var rawConfig []byte
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Email,
		&t.MessageQuota,
		&t.MessagesUsed,
		&rawConfig,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	cfg, err := domain.ParseWidgetConfig(rawConfig)
	if err != nil {
		return nil, err
	}
	t.WidgetConfig = cfg

	return &t, nil
}

// Create inserts a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, email, message_quota, messages_used, widget_config, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	rawConfig, err := json.Marshal(tenant.WidgetConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal widget config: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Email,
		tenant.MessageQuota,
		tenant.MessagesUsed,
		rawConfig,
		tenant.Active,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// UpdateWidgetConfig replaces the stored widget configuration
func (r *TenantRepository) UpdateWidgetConfig(ctx context.Context, id uuid.UUID, cfg domain.WidgetConfig) error {
	rawConfig, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal widget config: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE tenants SET widget_config = $2, updated_at = now() WHERE id = $1`,
		id, rawConfig,
	)
	if err != nil {
		return fmt.Errorf("failed to update widget config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// IncrementUsage atomically bumps the usage counter and returns the new
// value. A single UPDATE keeps the counter correct under concurrent load.
func (r *TenantRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (int, error) {
	var used int
	err := r.db.Pool.QueryRow(ctx,
		`UPDATE tenants SET messages_used = messages_used + 1, updated_at = now() WHERE id = $1 RETURNING messages_used`,
		id,
	).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}

	return used, nil
}

// Deactivate switches a tenant off without deleting it
func (r *TenantRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE tenants SET active = false, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
