package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/domain"
	"github.com/mahmoud-fouad2/chatdesk/internal/repository/postgres"
	"github.com/mahmoud-fouad2/chatdesk/internal/security"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles dashboard registration, login and token refresh.
// Registration provisions the tenant alongside its first user.
type AuthService struct {
	userRepo     *postgres.UserRepository
	tenantRepo   domain.TenantRepository
	jwtManager   *security.JWTManager
	accessTTL    time.Duration
	defaultQuota int
}

func NewAuthService(userRepo *postgres.UserRepository, tenantRepo domain.TenantRepository, jwtManager *security.JWTManager, accessTTL time.Duration, defaultQuota int) *AuthService {
	if defaultQuota <= 0 {
		defaultQuota = 500
	}
	return &AuthService{
		userRepo:     userRepo,
		tenantRepo:   tenantRepo,
		jwtManager:   jwtManager,
		accessTTL:    accessTTL,
		defaultQuota: defaultQuota,
	}
}

// Register creates a tenant and its owning user in one step
func (s *AuthService) Register(ctx context.Context, req domain.UserCreate) (*domain.User, *domain.TokenPair, error) {
	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:           uuid.New(),
		Name:         req.BusinessName,
		Email:        req.Email,
		MessageQuota: s.defaultQuota,
		Active:       true,
		WidgetConfig: domain.WidgetConfig{
			Dialect:   "en",
			BrandName: req.BusinessName,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req domain.UserLogin) (*domain.User, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *domain.User) (*domain.TokenPair, error) {
	access, err := s.jwtManager.GenerateAccessToken(user.ID, user.TenantID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}
