// Package processor abstracts the external card authorizer. The simulated
// authorizer approves or declines in-process; the Stripe authorizer hands the
// charge to Stripe. Which one runs is a config choice, the payment service
// does not care.
package processor

import (
	"context"

	"github.com/MepCity/payment-dashboard/internal/models"
)

// AuthResult is the outcome of an authorization attempt. A decline is not an
// error: errors mean the authorizer itself failed.
type AuthResult struct {
	Approved  bool
	Reference string
	Reason    string
}

type Authorizer interface {
	Authorize(ctx context.Context, req *models.CreatePaymentRequest) (*AuthResult, error)
	// Refund settles a refund against the original authorization.
	Refund(ctx context.Context, payment *models.Payment, amount float64) error
	// SyncStatus re-reads the authorizer's view of a payment.
	SyncStatus(ctx context.Context, payment *models.Payment) (models.PaymentStatus, error)
}

// ValidateLuhnChecksum validates a card number using Luhn algorithm
func ValidateLuhnChecksum(cardNumber string) bool {
	if cardNumber == "" {
		return false
	}

	var sum int
	parity := len(cardNumber) % 2

	for i, digit := range cardNumber {
		if digit < '0' || digit > '9' {
			return false
		}
		d := int(digit - '0')
		if i%2 == parity {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}

	return sum%10 == 0
}

// DetectCardNetwork detects the card network based on IIN
func DetectCardNetwork(cardNumber string) string {
	if len(cardNumber) < 2 {
		return ""
	}

	prefix := cardNumber[:2]

	switch {
	case prefix == "34" || prefix == "37":
		return "amex"
	case prefix >= "40" && prefix <= "49":
		return "visa"
	case prefix >= "51" && prefix <= "55":
		return "mastercard"
	case prefix >= "22" && prefix <= "27":
		return "mastercard"
	case prefix >= "60" && prefix <= "65":
		return "discover"
	default:
		return ""
	}
}

// MaskCardNumber keeps the last four digits and blanks the rest.
func MaskCardNumber(cardNumber string) string {
	if len(cardNumber) < 4 {
		return ""
	}
	return "**** **** **** " + cardNumber[len(cardNumber)-4:]
}
