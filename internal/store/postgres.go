package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/MepCity/payment-dashboard/internal/models"
)

// PostgresStore is the production backend.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool and applies the schema.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, schema := range []string{
		models.PaymentSchema,
		models.RefundSchema,
		models.DisputeSchema,
		models.MerchantSchema,
	} {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Payments

const paymentColumns = `payment_id, transaction_id, merchant_id, customer_id,
	customer_name, customer_email, amount, currency, status, payment_method,
	masked_card_number, card_holder_name, card_network, description,
	processor_ref, failure_reason, idempotency_key, created_at, updated_at, completed_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var completedAt sql.NullTime
	err := row.Scan(
		&p.PaymentID, &p.TransactionID, &p.MerchantID, &p.CustomerID,
		&p.CustomerName, &p.CustomerEmail, &p.Amount, &p.Currency, &p.Status,
		&p.PaymentMethod, &p.MaskedCardNumber, &p.CardHolderName, &p.CardNetwork,
		&p.Description, &p.ProcessorRef, &p.FailureReason, &p.IdempotencyKey,
		&p.CreatedAt, &p.UpdatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		p.CompletedAt = &completedAt.Time
	}
	return p, nil
}

func (s *PostgresStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	var completedAt sql.NullTime
	if p.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *p.CompletedAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		p.PaymentID, p.TransactionID, p.MerchantID, p.CustomerID,
		p.CustomerName, p.CustomerEmail, p.Amount, p.Currency, p.Status,
		p.PaymentMethod, p.MaskedCardNumber, p.CardHolderName, p.CardNetwork,
		p.Description, p.ProcessorRef, p.FailureReason, p.IdempotencyKey,
		p.CreatedAt, p.UpdatedAt, completedAt,
	)
	return err
}

func (s *PostgresStore) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`
	return scanPayment(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) GetPaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	return scanPayment(s.db.QueryRowContext(ctx, query, transactionID))
}

func (s *PostgresStore) ListPayments(ctx context.Context, merchantID string) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments`
	args := []interface{}{}
	if merchantID != "" {
		query += ` WHERE merchant_id = $1`
		args = append(args, merchantID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (s *PostgresStore) UpdatePayment(ctx context.Context, p *models.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, failure_reason = $2, updated_at = $3, completed_at = $4
		WHERE payment_id = $5
	`
	var completedAt sql.NullTime
	if p.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *p.CompletedAt, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, query, p.Status, p.FailureReason, p.UpdatedAt, completedAt, p.PaymentID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeletePayment(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE payment_id = $1`, id)
	return err
}

// Refunds

func (s *PostgresStore) CreateRefund(ctx context.Context, r *models.Refund) error {
	query := `
		INSERT INTO refunds (refund_id, payment_id, merchant_id, amount, currency, status, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.RefundID, r.PaymentID, r.MerchantID, r.Amount, r.Currency, r.Status, r.Reason, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) ListRefundsByPayment(ctx context.Context, paymentID string) ([]models.Refund, error) {
	return s.queryRefunds(ctx, `WHERE payment_id = $1`, paymentID)
}

func (s *PostgresStore) ListRefunds(ctx context.Context, merchantID string) ([]models.Refund, error) {
	if merchantID == "" {
		return s.queryRefunds(ctx, ``)
	}
	return s.queryRefunds(ctx, `WHERE merchant_id = $1`, merchantID)
}

func (s *PostgresStore) queryRefunds(ctx context.Context, where string, args ...interface{}) ([]models.Refund, error) {
	query := `SELECT refund_id, payment_id, merchant_id, amount, currency, status, reason, created_at, updated_at FROM refunds ` + where

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refunds := []models.Refund{}
	for rows.Next() {
		var r models.Refund
		if err := rows.Scan(&r.RefundID, &r.PaymentID, &r.MerchantID, &r.Amount,
			&r.Currency, &r.Status, &r.Reason, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		refunds = append(refunds, r)
	}
	return refunds, rows.Err()
}

// Disputes

const disputeColumns = `dispute_id, payment_id, merchant_id, amount, currency,
	status, reason, response_text, opened_at, respond_by, resolved_at, created_at, updated_at`

func scanDispute(row interface{ Scan(...interface{}) error }) (*models.Dispute, error) {
	d := &models.Dispute{}
	var respondBy, resolvedAt sql.NullTime
	err := row.Scan(
		&d.DisputeID, &d.PaymentID, &d.MerchantID, &d.Amount, &d.Currency,
		&d.Status, &d.Reason, &d.ResponseText, &d.OpenedAt, &respondBy, &resolvedAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if respondBy.Valid {
		d.RespondBy = &respondBy.Time
	}
	if resolvedAt.Valid {
		d.ResolvedAt = &resolvedAt.Time
	}
	return d, nil
}

func (s *PostgresStore) CreateDispute(ctx context.Context, d *models.Dispute) error {
	query := `
		INSERT INTO disputes (` + disputeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	var respondBy, resolvedAt sql.NullTime
	if d.RespondBy != nil {
		respondBy = sql.NullTime{Time: *d.RespondBy, Valid: true}
	}
	if d.ResolvedAt != nil {
		resolvedAt = sql.NullTime{Time: *d.ResolvedAt, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		d.DisputeID, d.PaymentID, d.MerchantID, d.Amount, d.Currency,
		d.Status, d.Reason, d.ResponseText, d.OpenedAt, respondBy, resolvedAt,
		d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) GetDispute(ctx context.Context, id string) (*models.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE dispute_id = $1`
	return scanDispute(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) UpdateDispute(ctx context.Context, d *models.Dispute) error {
	query := `
		UPDATE disputes
		SET status = $1, response_text = $2, resolved_at = $3, updated_at = $4
		WHERE dispute_id = $5
	`
	var resolvedAt sql.NullTime
	if d.ResolvedAt != nil {
		resolvedAt = sql.NullTime{Time: *d.ResolvedAt, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, query, d.Status, d.ResponseText, resolvedAt, d.UpdatedAt, d.DisputeID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListDisputes(ctx context.Context, merchantID string) ([]models.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes`
	args := []interface{}{}
	if merchantID != "" {
		query += ` WHERE merchant_id = $1`
		args = append(args, merchantID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	disputes := []models.Dispute{}
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, *d)
	}
	return disputes, rows.Err()
}

// Merchants

func (s *PostgresStore) CreateMerchant(ctx context.Context, m *models.Merchant) error {
	query := `
		INSERT INTO merchants (merchant_id, email, name, password_hash, api_key, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		m.MerchantID, m.Email, m.Name, m.PasswordHash, m.APIKey, m.Active, m.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetMerchant(ctx context.Context, id string) (*models.Merchant, error) {
	return s.queryMerchant(ctx, `merchant_id = $1`, id)
}

func (s *PostgresStore) GetMerchantByEmail(ctx context.Context, email string) (*models.Merchant, error) {
	return s.queryMerchant(ctx, `email = $1`, email)
}

func (s *PostgresStore) queryMerchant(ctx context.Context, where string, arg interface{}) (*models.Merchant, error) {
	query := `SELECT merchant_id, email, name, password_hash, api_key, active, created_at FROM merchants WHERE ` + where

	m := &models.Merchant{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&m.MerchantID, &m.Email, &m.Name, &m.PasswordHash, &m.APIKey, &m.Active, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
