// Package dashboard holds the derivation and query logic behind the merchant
// dashboard: customer views and payment statistics are pure functions of the
// payment collection, recomputed on demand rather than stored.
package dashboard

import (
	"sort"

	"github.com/MepCity/payment-dashboard/internal/models"
)

const (
	unknownCustomerName  = "Unknown Customer"
	unknownCustomerEmail = "no-email@example.com"
)

// DeriveCustomers groups payments by customerId and synthesizes one view per
// distinct customer. The first payment in collection order supplies the
// contact fields; totals cover the whole group. Results are sorted by last
// payment time, newest first.
func DeriveCustomers(payments []models.Payment) []models.CustomerView {
	byCustomer := make(map[string]*models.CustomerView)
	order := make([]string, 0)

	for i := range payments {
		p := &payments[i]
		view, ok := byCustomer[p.CustomerID]
		if !ok {
			name := p.CustomerName
			if name == "" {
				name = unknownCustomerName
			}
			email := p.CustomerEmail
			if email == "" {
				email = unknownCustomerEmail
			}
			view = &models.CustomerView{
				CustomerID:    p.CustomerID,
				CustomerName:  name,
				CustomerEmail: email,
			}
			byCustomer[p.CustomerID] = view
			order = append(order, p.CustomerID)
		}

		view.TotalPayments++
		view.TotalAmount += p.Amount
		if view.LastPaymentAt == nil || p.CreatedAt.After(*view.LastPaymentAt) {
			t := p.CreatedAt
			view.LastPaymentAt = &t
		}
	}

	views := make([]models.CustomerView, 0, len(order))
	for _, id := range order {
		views = append(views, *byCustomer[id])
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].LastPaymentAt, views[j].LastPaymentAt
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})

	return views
}

// ComputeStats aggregates the full payment collection. Statuses outside the
// successful/failed/pending buckets (CANCELLED, REFUNDED) are excluded from
// those counters but still contribute to the total count and total amount.
// A payment with a missing amount counts as zero rather than being dropped,
// so counts stay consistent with totals.
func ComputeStats(payments []models.Payment) models.PaymentStats {
	stats := models.PaymentStats{TotalPayments: len(payments)}

	for i := range payments {
		p := &payments[i]
		switch p.Status {
		case models.PaymentStatusCompleted:
			stats.SuccessfulPayments++
		case models.PaymentStatusFailed:
			stats.FailedPayments++
		case models.PaymentStatusPending, models.PaymentStatusProcessing:
			stats.PendingPayments++
		}
		stats.TotalAmount += p.Amount
	}

	if stats.TotalPayments > 0 {
		stats.SuccessRate = float64(stats.SuccessfulPayments) / float64(stats.TotalPayments) * 100
		stats.AverageAmount = stats.TotalAmount / float64(stats.TotalPayments)
	}

	return stats
}
