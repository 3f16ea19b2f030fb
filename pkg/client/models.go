package client

import "encoding/json"

// View models for backend records. Custom unmarshaling tolerates the
// backend's mixed field naming (camelCase preferred, snake_case accepted)
// and mixed date encodings.

type Merchant struct {
	MerchantID string `json:"merchantId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
}

type Payment struct {
	PaymentID        string   `json:"paymentId"`
	TransactionID    string   `json:"transactionId"`
	MerchantID       string   `json:"merchantId"`
	CustomerID       string   `json:"customerId"`
	CustomerName     string   `json:"customerName"`
	CustomerEmail    string   `json:"customerEmail"`
	Amount           float64  `json:"amount"`
	Currency         string   `json:"currency"`
	Status           string   `json:"status"`
	PaymentMethod    string   `json:"paymentMethod"`
	MaskedCardNumber string   `json:"maskedCardNumber"`
	CardHolderName   string   `json:"cardHolderName"`
	FailureReason    string   `json:"failureReason"`
	CreatedAt        FlexTime `json:"createdAt"`
	UpdatedAt        FlexTime `json:"updatedAt"`
}

func (p *Payment) UnmarshalJSON(data []byte) error {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	unmarshalField(record, &p.PaymentID, "paymentId", "payment_id")
	unmarshalField(record, &p.TransactionID, "transactionId", "transaction_id")
	unmarshalField(record, &p.MerchantID, "merchantId", "merchant_id")
	unmarshalField(record, &p.CustomerID, "customerId", "customer_id")
	unmarshalField(record, &p.CustomerName, "customerName", "customer_name")
	unmarshalField(record, &p.CustomerEmail, "customerEmail", "customer_email")
	unmarshalField(record, &p.Amount, "amount")
	unmarshalField(record, &p.Currency, "currency")
	unmarshalField(record, &p.Status, "status")
	unmarshalField(record, &p.PaymentMethod, "paymentMethod", "payment_method")
	unmarshalField(record, &p.MaskedCardNumber, "maskedCardNumber", "masked_card_number")
	unmarshalField(record, &p.CardHolderName, "cardHolderName", "card_holder_name")
	unmarshalField(record, &p.FailureReason, "failureReason", "failure_reason")
	unmarshalField(record, &p.CreatedAt, "createdAt", "created_at")
	unmarshalField(record, &p.UpdatedAt, "updatedAt", "updated_at")
	return nil
}

type Refund struct {
	RefundID  string   `json:"refundId"`
	PaymentID string   `json:"paymentId"`
	Amount    float64  `json:"amount"`
	Status    string   `json:"status"`
	Reason    string   `json:"reason"`
	CreatedAt FlexTime `json:"createdAt"`
}

func (r *Refund) UnmarshalJSON(data []byte) error {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	unmarshalField(record, &r.RefundID, "refundId", "refund_id")
	unmarshalField(record, &r.PaymentID, "paymentId", "payment_id")
	unmarshalField(record, &r.Amount, "amount")
	unmarshalField(record, &r.Status, "status")
	unmarshalField(record, &r.Reason, "reason")
	unmarshalField(record, &r.CreatedAt, "createdAt", "created_at")
	return nil
}

type Dispute struct {
	DisputeID    string   `json:"disputeId"`
	PaymentID    string   `json:"paymentId"`
	MerchantID   string   `json:"merchantId"`
	Amount       float64  `json:"amount"`
	Currency     string   `json:"currency"`
	Status       string   `json:"status"`
	Reason       string   `json:"reason"`
	ResponseText string   `json:"responseText"`
	OpenedAt     FlexTime `json:"openedAt"`
	RespondBy    FlexTime `json:"respondBy"`
	ResolvedAt   FlexTime `json:"resolvedAt"`
}

func (d *Dispute) UnmarshalJSON(data []byte) error {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	unmarshalField(record, &d.DisputeID, "disputeId", "dispute_id")
	unmarshalField(record, &d.PaymentID, "paymentId", "payment_id")
	unmarshalField(record, &d.MerchantID, "merchantId", "merchant_id")
	unmarshalField(record, &d.Amount, "amount")
	unmarshalField(record, &d.Currency, "currency")
	unmarshalField(record, &d.Status, "status")
	unmarshalField(record, &d.Reason, "reason")
	unmarshalField(record, &d.ResponseText, "responseText", "response_text")
	unmarshalField(record, &d.OpenedAt, "openedAt", "opened_at")
	unmarshalField(record, &d.RespondBy, "respondBy", "respond_by")
	unmarshalField(record, &d.ResolvedAt, "resolvedAt", "resolved_at")
	return nil
}

type Customer struct {
	CustomerID    string   `json:"customerId"`
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail"`
	TotalPayments int      `json:"totalPayments"`
	TotalAmount   float64  `json:"totalAmount"`
	LastPaymentAt FlexTime `json:"lastPaymentAt"`
}

type PaymentStats struct {
	TotalPayments      int     `json:"totalPayments"`
	SuccessfulPayments int     `json:"successfulPayments"`
	FailedPayments     int     `json:"failedPayments"`
	PendingPayments    int     `json:"pendingPayments"`
	TotalAmount        float64 `json:"totalAmount"`
	SuccessRate        float64 `json:"successRate"`
	AverageAmount      float64 `json:"averageAmount"`
}

type DisputeStats struct {
	TotalDisputes int     `json:"totalDisputes"`
	OpenDisputes  int     `json:"openDisputes"`
	WonDisputes   int     `json:"wonDisputes"`
	LostDisputes  int     `json:"lostDisputes"`
	TotalDisputed float64 `json:"totalDisputedAmount"`
	WinRate       float64 `json:"winRate"`
	NeedingAction int     `json:"needingAction"`
}

type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalCount int  `json:"totalCount"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// CreatePaymentRequest is the payment submission body. The merchant is
// taken from the session server-side.
type CreatePaymentRequest struct {
	CustomerID     string  `json:"customerId"`
	CustomerName   string  `json:"customerName,omitempty"`
	CustomerEmail  string  `json:"customerEmail,omitempty"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	PaymentMethod  string  `json:"paymentMethod"`
	CardNumber     string  `json:"cardNumber,omitempty"`
	CardHolderName string  `json:"cardHolderName,omitempty"`
	CardExpMonth   int     `json:"cardExpMonth,omitempty"`
	CardExpYear    int     `json:"cardExpYear,omitempty"`
	CardCVV        string  `json:"cardCvv,omitempty"`
	Description    string  `json:"description,omitempty"`
	IdempotencyKey string  `json:"idempotencyKey,omitempty"`
}
