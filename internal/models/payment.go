package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentMethodCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard     PaymentMethod = "DEBIT_CARD"
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodDigitalWallet PaymentMethod = "DIGITAL_WALLET"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard,
		PaymentMethodBankTransfer, PaymentMethodDigitalWallet:
		return true
	default:
		return false
	}
}

type Payment struct {
	PaymentID        string        `json:"paymentId" db:"payment_id"`
	TransactionID    string        `json:"transactionId" db:"transaction_id"`
	MerchantID       string        `json:"merchantId" db:"merchant_id"`
	CustomerID       string        `json:"customerId" db:"customer_id"`
	CustomerName     string        `json:"customerName,omitempty" db:"customer_name"`
	CustomerEmail    string        `json:"customerEmail,omitempty" db:"customer_email"`
	Amount           float64       `json:"amount" db:"amount"`
	Currency         string        `json:"currency" db:"currency"`
	Status           PaymentStatus `json:"status" db:"status"`
	PaymentMethod    PaymentMethod `json:"paymentMethod" db:"payment_method"`
	MaskedCardNumber string        `json:"maskedCardNumber,omitempty" db:"masked_card_number"`
	CardHolderName   string        `json:"cardHolderName,omitempty" db:"card_holder_name"`
	CardNetwork      string        `json:"cardNetwork,omitempty" db:"card_network"`
	Description      string        `json:"description,omitempty" db:"description"`
	ProcessorRef     string        `json:"-" db:"processor_ref"`
	FailureReason    string        `json:"failureReason,omitempty" db:"failure_reason"`
	IdempotencyKey   string        `json:"idempotencyKey,omitempty" db:"idempotency_key"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
	CompletedAt      *time.Time    `json:"completedAt,omitempty" db:"completed_at"`
}

type CreatePaymentRequest struct {
	MerchantID     string        `json:"merchantId"`
	CustomerID     string        `json:"customerId" binding:"required"`
	CustomerName   string        `json:"customerName"`
	CustomerEmail  string        `json:"customerEmail"`
	Amount         float64       `json:"amount" binding:"required,gt=0"`
	Currency       string        `json:"currency" binding:"required,len=3"`
	PaymentMethod  PaymentMethod `json:"paymentMethod" binding:"required"`
	CardNumber     string        `json:"cardNumber"`
	CardHolderName string        `json:"cardHolderName"`
	CardExpMonth   int           `json:"cardExpMonth"`
	CardExpYear    int           `json:"cardExpYear"`
	CardCVV        string        `json:"cardCvv"`
	Description    string        `json:"description"`
	IdempotencyKey string        `json:"idempotencyKey"`
}

// Database schema
const PaymentSchema = `
CREATE TABLE IF NOT EXISTS payments (
    payment_id VARCHAR(36) PRIMARY KEY,
    transaction_id VARCHAR(36) NOT NULL,
    merchant_id VARCHAR(36) NOT NULL,
    customer_id VARCHAR(64) NOT NULL,
    customer_name VARCHAR(255),
    customer_email VARCHAR(255),
    amount DECIMAL(19, 4) NOT NULL,
    currency VARCHAR(3) NOT NULL,
    status VARCHAR(20) NOT NULL,
    payment_method VARCHAR(20) NOT NULL,
    masked_card_number VARCHAR(19),
    card_holder_name VARCHAR(255),
    card_network VARCHAR(20),
    description TEXT,
    processor_ref VARCHAR(255),
    failure_reason TEXT,
    idempotency_key VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_idempotency_key
    ON payments (idempotency_key) WHERE idempotency_key <> '';
CREATE INDEX IF NOT EXISTS idx_payments_merchant_id ON payments (merchant_id);
CREATE INDEX IF NOT EXISTS idx_payments_customer_id ON payments (customer_id);
CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (status);
CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments (created_at);
`
