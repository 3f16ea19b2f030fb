package models

import "time"

// Merchant is the account on whose behalf payments are processed. It doubles
// as the dashboard login identity.
type Merchant struct {
	MerchantID   string    `json:"merchantId" db:"merchant_id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	APIKey       string    `json:"-" db:"api_key"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse mirrors the auth contract: success is only meaningful when
// user, token and apiKey are all present.
type LoginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	User    *Merchant `json:"user,omitempty"`
	Token   string    `json:"token,omitempty"`
	APIKey  string    `json:"apiKey,omitempty"`
}

const MerchantSchema = `
CREATE TABLE IF NOT EXISTS merchants (
    merchant_id VARCHAR(36) PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    name VARCHAR(255) NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    api_key VARCHAR(64) NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`
