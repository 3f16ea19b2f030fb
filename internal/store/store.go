// Package store provides persistence for the dashboard's collections.
//
// Two backends implement the same interface: an embedded BoltDB store, the
// default for development and single-node deployments, and a PostgreSQL
// store for production. Records are written one at a time; there is no
// whole-collection read-modify-write cycle, so concurrent writers cannot
// silently overwrite each other.
package store

import (
	"context"
	"errors"

	"github.com/MepCity/payment-dashboard/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

type Store interface {
	// Payments
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	GetPaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error)
	// ListPayments returns the full collection for a merchant (all merchants
	// when merchantID is empty), unsorted. Filtering, sorting and pagination
	// happen in the dashboard layer.
	ListPayments(ctx context.Context, merchantID string) ([]models.Payment, error)
	UpdatePayment(ctx context.Context, p *models.Payment) error
	DeletePayment(ctx context.Context, id string) error

	// Refunds
	CreateRefund(ctx context.Context, r *models.Refund) error
	ListRefundsByPayment(ctx context.Context, paymentID string) ([]models.Refund, error)
	ListRefunds(ctx context.Context, merchantID string) ([]models.Refund, error)

	// Disputes
	CreateDispute(ctx context.Context, d *models.Dispute) error
	GetDispute(ctx context.Context, id string) (*models.Dispute, error)
	UpdateDispute(ctx context.Context, d *models.Dispute) error
	ListDisputes(ctx context.Context, merchantID string) ([]models.Dispute, error)

	// Merchants
	CreateMerchant(ctx context.Context, m *models.Merchant) error
	GetMerchant(ctx context.Context, id string) (*models.Merchant, error)
	GetMerchantByEmail(ctx context.Context, email string) (*models.Merchant, error)

	Close() error
}
