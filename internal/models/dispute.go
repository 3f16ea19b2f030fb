package models

import "time"

type DisputeStatus string

const (
	DisputeStatusOpened           DisputeStatus = "OPENED"
	DisputeStatusUnderReview      DisputeStatus = "UNDER_REVIEW"
	DisputeStatusEvidenceRequired DisputeStatus = "EVIDENCE_REQUIRED"
	DisputeStatusResolved         DisputeStatus = "RESOLVED"
	DisputeStatusClosed           DisputeStatus = "CLOSED"
	DisputeStatusWon              DisputeStatus = "WON"
	DisputeStatusLost             DisputeStatus = "LOST"
)

func (s DisputeStatus) Valid() bool {
	switch s {
	case DisputeStatusOpened, DisputeStatusUnderReview, DisputeStatusEvidenceRequired,
		DisputeStatusResolved, DisputeStatusClosed, DisputeStatusWon, DisputeStatusLost:
		return true
	default:
		return false
	}
}

type DisputeReason string

const (
	DisputeReasonFraudulent         DisputeReason = "FRAUDULENT"
	DisputeReasonUnrecognized       DisputeReason = "UNRECOGNIZED"
	DisputeReasonDuplicate          DisputeReason = "DUPLICATE"
	DisputeReasonProductNotReceived DisputeReason = "PRODUCT_NOT_RECEIVED"
	DisputeReasonProductDefective   DisputeReason = "PRODUCT_UNACCEPTABLE"
	DisputeReasonCreditNotProcessed DisputeReason = "CREDIT_NOT_PROCESSED"
	DisputeReasonGeneral            DisputeReason = "GENERAL"
)

type Dispute struct {
	DisputeID    string        `json:"disputeId" db:"dispute_id"`
	PaymentID    string        `json:"paymentId" db:"payment_id"`
	MerchantID   string        `json:"merchantId" db:"merchant_id"`
	Amount       float64       `json:"amount" db:"amount"`
	Currency     string        `json:"currency" db:"currency"`
	Status       DisputeStatus `json:"status" db:"status"`
	Reason       DisputeReason `json:"reason" db:"reason"`
	ResponseText string        `json:"responseText,omitempty" db:"response_text"`
	OpenedAt     time.Time     `json:"openedAt" db:"opened_at"`
	RespondBy    *time.Time    `json:"respondBy,omitempty" db:"respond_by"`
	ResolvedAt   *time.Time    `json:"resolvedAt,omitempty" db:"resolved_at"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}

// DisputeStats summarizes a merchant's disputes for the dashboard.
type DisputeStats struct {
	TotalDisputes int     `json:"totalDisputes"`
	OpenDisputes  int     `json:"openDisputes"`
	WonDisputes   int     `json:"wonDisputes"`
	LostDisputes  int     `json:"lostDisputes"`
	TotalDisputed float64 `json:"totalDisputedAmount"`
	WinRate       float64 `json:"winRate"`
	NeedingAction int     `json:"needingAction"`
}

type DisputeResponseRequest struct {
	ResponseText string `json:"responseText" binding:"required"`
}

const DisputeSchema = `
CREATE TABLE IF NOT EXISTS disputes (
    dispute_id VARCHAR(36) PRIMARY KEY,
    payment_id VARCHAR(36) NOT NULL,
    merchant_id VARCHAR(36) NOT NULL,
    amount DECIMAL(19, 4) NOT NULL,
    currency VARCHAR(3) NOT NULL,
    status VARCHAR(20) NOT NULL,
    reason VARCHAR(32) NOT NULL,
    response_text TEXT,
    opened_at TIMESTAMP NOT NULL,
    respond_by TIMESTAMP,
    resolved_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_disputes_merchant_id ON disputes (merchant_id);
CREATE INDEX IF NOT EXISTS idx_disputes_status ON disputes (status);
`
