package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/auth"
	"github.com/MepCity/payment-dashboard/internal/cache"
	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/store"
)

type AuthService struct {
	store   store.Store
	cache   *cache.Cache
	manager *auth.Manager
	logger  *zap.Logger
}

func NewAuthService(st store.Store, c *cache.Cache, manager *auth.Manager, logger *zap.Logger) *AuthService {
	return &AuthService{store: st, cache: c, manager: manager, logger: logger}
}

// Login verifies the credentials and issues the session token. The response
// is only successful when user, token and API key are all present.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	merchant, err := s.store.GetMerchantByEmail(ctx, email)
	if err != nil {
		// Hide whether the email exists.
		return nil, auth.ErrInvalidCredentials
	}
	if !merchant.Active {
		return nil, auth.ErrInactiveMerchant
	}
	if !auth.CheckPassword(merchant.PasswordHash, password) {
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.manager.Issue(merchant)
	if err != nil {
		return nil, err
	}

	s.logger.Info("merchant logged in", zap.String("merchant_id", merchant.MerchantID))

	return &models.LoginResponse{
		Success: true,
		Message: "login successful",
		User:    merchant,
		Token:   token,
		APIKey:  merchant.APIKey,
	}, nil
}

// Logout revokes the token for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	ttl := s.manager.TTL()
	if claims, err := s.manager.Verify(token); err == nil {
		ttl = time.Until(claims.ExpiresAt)
	}
	return s.cache.RevokeToken(ctx, token, ttl)
}

func (s *AuthService) Profile(ctx context.Context, merchantID string) (*models.Merchant, error) {
	return s.store.GetMerchant(ctx, merchantID)
}

// SeedDevMerchant creates the development login when it does not exist yet.
func (s *AuthService) SeedDevMerchant(ctx context.Context) error {
	const devEmail = "test@merchant.com"

	if _, err := s.store.GetMerchantByEmail(ctx, devEmail); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		return err
	}

	merchant := &models.Merchant{
		MerchantID:   "mer_" + uuid.New().String(),
		Email:        devEmail,
		Name:         "Test Merchant",
		PasswordHash: hash,
		APIKey:       auth.NewAPIKey(),
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateMerchant(ctx, merchant); err != nil {
		return err
	}

	s.logger.Info("seeded development merchant", zap.String("email", devEmail))
	return nil
}
