package processor

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/models"
)

// Stripe hands authorizations to the Stripe API.
type Stripe struct {
	logger *zap.Logger
}

func NewStripe(apiKey string, logger *zap.Logger) *Stripe {
	stripe.Key = apiKey
	return &Stripe{logger: logger}
}

func (s *Stripe) Authorize(ctx context.Context, req *models.CreatePaymentRequest) (*AuthResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.Amount * 100)), // Convert to cents
		Currency: stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Description: stripe.String(req.Description),
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
			return &AuthResult{Reason: stripeErr.Msg}, nil
		}
		return nil, err
	}

	s.logger.Info("stripe payment intent created",
		zap.String("intent_id", intent.ID),
		zap.String("status", string(intent.Status)))

	return &AuthResult{Approved: true, Reference: intent.ID}, nil
}

func (s *Stripe) Refund(ctx context.Context, payment *models.Payment, amount float64) error {
	_, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(payment.ProcessorRef),
		Amount:        stripe.Int64(int64(amount * 100)),
	})
	return err
}

func (s *Stripe) SyncStatus(ctx context.Context, payment *models.Payment) (models.PaymentStatus, error) {
	intent, err := paymentintent.Get(payment.ProcessorRef, nil)
	if err != nil {
		return payment.Status, err
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return models.PaymentStatusCompleted, nil
	case stripe.PaymentIntentStatusProcessing:
		return models.PaymentStatusProcessing, nil
	case stripe.PaymentIntentStatusCanceled:
		return models.PaymentStatusCancelled, nil
	default:
		return models.PaymentStatusPending, nil
	}
}
