package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/models"
)

// declineCard always declines, mirroring the test card most gateways reserve
// for that purpose.
const declineCard = "4000000000000002"

// Simulated authorizes payments in-process. Card payments must carry a valid
// card; bank transfers and wallets are approved as-is.
type Simulated struct {
	logger *zap.Logger
}

func NewSimulated(logger *zap.Logger) *Simulated {
	return &Simulated{logger: logger}
}

func (s *Simulated) Authorize(ctx context.Context, req *models.CreatePaymentRequest) (*AuthResult, error) {
	if req.PaymentMethod == models.PaymentMethodCreditCard || req.PaymentMethod == models.PaymentMethodDebitCard {
		if !ValidateLuhnChecksum(req.CardNumber) {
			return &AuthResult{Reason: "invalid card number"}, nil
		}
		if DetectCardNetwork(req.CardNumber) == "" {
			return &AuthResult{Reason: "unsupported card network"}, nil
		}
		if req.CardNumber == declineCard {
			return &AuthResult{Reason: "card declined"}, nil
		}
		if expired(req.CardExpMonth, req.CardExpYear) {
			return &AuthResult{Reason: "card expired"}, nil
		}
	}

	ref := fmt.Sprintf("sim_%s", uuid.New().String())
	s.logger.Debug("authorization approved",
		zap.String("reference", ref),
		zap.String("method", string(req.PaymentMethod)))

	return &AuthResult{Approved: true, Reference: ref}, nil
}

func (s *Simulated) Refund(ctx context.Context, payment *models.Payment, amount float64) error {
	s.logger.Debug("refund settled",
		zap.String("payment_id", payment.PaymentID),
		zap.Float64("amount", amount))
	return nil
}

func (s *Simulated) SyncStatus(ctx context.Context, payment *models.Payment) (models.PaymentStatus, error) {
	// Nothing external to consult; the stored status is authoritative.
	return payment.Status, nil
}

func expired(month, year int) bool {
	if month < 1 || month > 12 || year == 0 {
		return true
	}
	now := time.Now()
	if year < now.Year() {
		return true
	}
	return year == now.Year() && month < int(now.Month())
}
