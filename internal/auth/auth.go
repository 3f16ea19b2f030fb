// Package auth issues and verifies the two credentials every dashboard call
// carries: an HS256 session token and the merchant's API key.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/MepCity/payment-dashboard/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveMerchant   = errors.New("merchant account is inactive")
	ErrInvalidToken       = errors.New("invalid token")
)

type Claims struct {
	MerchantID string
	Email      string
	ExpiresAt  time.Time
}

type Manager struct {
	secret []byte
	expMin int
}

func NewManager(secret string, expiresMinutes int) *Manager {
	if expiresMinutes <= 0 {
		expiresMinutes = 60
	}
	return &Manager{secret: []byte(secret), expMin: expiresMinutes}
}

// Issue signs a session token for the merchant.
func (m *Manager) Issue(merchant *models.Merchant) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   merchant.MerchantID,
		"typ":   "merchant",
		"email": merchant.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Duration(m.expMin) * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a session token.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if typ, _ := claims["typ"].(string); typ != "merchant" {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}

	out := &Claims{MerchantID: sub, Email: email}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return time.Duration(m.expMin) * time.Minute
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewAPIKey generates the merchant's integration credential.
func NewAPIKey() string {
	return "pk_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
