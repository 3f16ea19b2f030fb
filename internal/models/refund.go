package models

import "time"

type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "PENDING"
	RefundStatusProcessing RefundStatus = "PROCESSING"
	RefundStatusCompleted  RefundStatus = "COMPLETED"
	RefundStatusFailed     RefundStatus = "FAILED"
)

type Refund struct {
	RefundID   string       `json:"refundId" db:"refund_id"`
	PaymentID  string       `json:"paymentId" db:"payment_id"`
	MerchantID string       `json:"merchantId" db:"merchant_id"`
	Amount     float64      `json:"amount" db:"amount"`
	Currency   string       `json:"currency" db:"currency"`
	Status     RefundStatus `json:"status" db:"status"`
	Reason     string       `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time    `json:"updatedAt" db:"updated_at"`
}

type CreateRefundRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason"`
}

const RefundSchema = `
CREATE TABLE IF NOT EXISTS refunds (
    refund_id VARCHAR(36) PRIMARY KEY,
    payment_id VARCHAR(36) NOT NULL,
    merchant_id VARCHAR(36) NOT NULL,
    amount DECIMAL(19, 4) NOT NULL,
    currency VARCHAR(3) NOT NULL,
    status VARCHAR(20) NOT NULL,
    reason TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_refunds_payment_id ON refunds (payment_id);
CREATE INDEX IF NOT EXISTS idx_refunds_merchant_id ON refunds (merchant_id);
`
