package dashboard

import (
	"sort"
	"strings"

	"github.com/MepCity/payment-dashboard/internal/models"
)

// ApplyFilters narrows a payment collection using the fixed filter order:
// free-text search, status set, method set, date range, amount range. The
// surviving records are sorted by createdAt descending. Applying the same
// filters twice yields the same result.
func ApplyFilters(payments []models.Payment, f models.DashboardFilters) []models.Payment {
	out := make([]models.Payment, 0, len(payments))

	for i := range payments {
		if matches(&payments[i], &f) {
			out = append(out, payments[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

func matches(p *models.Payment, f *models.DashboardFilters) bool {
	if f.Search != "" && !matchesSearch(p, f.Search) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, p.Status) {
		return false
	}
	if len(f.Methods) > 0 && !containsMethod(f.Methods, p.PaymentMethod) {
		return false
	}
	if f.StartDate != nil && p.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && p.CreatedAt.After(*f.EndDate) {
		return false
	}
	if f.MinAmount != nil && p.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && p.Amount > *f.MaxAmount {
		return false
	}
	return true
}

// matchesSearch is a case-insensitive substring match; a record matches when
// any of the searchable fields contains the term.
func matchesSearch(p *models.Payment, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{p.PaymentID, p.TransactionID, p.CustomerID, p.CardHolderName} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func containsStatus(set []models.PaymentStatus, s models.PaymentStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsMethod(set []models.PaymentMethod, m models.PaymentMethod) bool {
	for _, v := range set {
		if v == m {
			return true
		}
	}
	return false
}

// Paginate slices a filtered collection into a 1-based page. Out-of-range
// input is clamped rather than rejected.
func Paginate(payments []models.Payment, page, pageSize int) ([]models.Payment, models.Pagination) {
	info := models.NewPagination(page, pageSize, len(payments))

	start := (info.Page - 1) * info.PageSize
	if start >= len(payments) {
		return []models.Payment{}, info
	}
	end := start + info.PageSize
	if end > len(payments) {
		end = len(payments)
	}
	return payments[start:end], info
}
