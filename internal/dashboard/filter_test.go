package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MepCity/payment-dashboard/internal/models"
)

func samplePayments() []models.Payment {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.Payment{
		{PaymentID: "pay-001", TransactionID: "txn-aaa", CustomerID: "cust-1", CardHolderName: "Grace Hopper",
			Amount: 100, Status: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodCreditCard, CreatedAt: base},
		{PaymentID: "pay-002", TransactionID: "txn-bbb", CustomerID: "cust-2", CardHolderName: "Alan Turing",
			Amount: 250, Status: models.PaymentStatusFailed, PaymentMethod: models.PaymentMethodDebitCard, CreatedAt: base.AddDate(0, 0, 1)},
		{PaymentID: "pay-003", TransactionID: "txn-ccc", CustomerID: "cust-1", CardHolderName: "Grace Hopper",
			Amount: 75, Status: models.PaymentStatusPending, PaymentMethod: models.PaymentMethodBankTransfer, CreatedAt: base.AddDate(0, 0, 2)},
		{PaymentID: "pay-004", TransactionID: "txn-ddd", CustomerID: "cust-3", CardHolderName: "Ada Lovelace",
			Amount: 500, Status: models.PaymentStatusCompleted, PaymentMethod: models.PaymentMethodCreditCard, CreatedAt: base.AddDate(0, 0, 3)},
	}
}

func TestApplyFilters(t *testing.T) {
	payments := samplePayments()
	minAmount := 100.0
	maxAmount := 300.0
	start := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		filters models.DashboardFilters
		wantIDs []string
	}{
		{
			name:    "no filters passes all, newest first",
			filters: models.DashboardFilters{},
			wantIDs: []string{"pay-004", "pay-003", "pay-002", "pay-001"},
		},
		{
			name:    "search matches card holder case-insensitively",
			filters: models.DashboardFilters{Search: "grace"},
			wantIDs: []string{"pay-003", "pay-001"},
		},
		{
			name:    "search matches payment id",
			filters: models.DashboardFilters{Search: "pay-002"},
			wantIDs: []string{"pay-002"},
		},
		{
			name:    "status set",
			filters: models.DashboardFilters{Statuses: []models.PaymentStatus{models.PaymentStatusCompleted}},
			wantIDs: []string{"pay-004", "pay-001"},
		},
		{
			name:    "method set",
			filters: models.DashboardFilters{Methods: []models.PaymentMethod{models.PaymentMethodDebitCard, models.PaymentMethodBankTransfer}},
			wantIDs: []string{"pay-003", "pay-002"},
		},
		{
			name:    "date range is inclusive of the start bound",
			filters: models.DashboardFilters{StartDate: &start},
			wantIDs: []string{"pay-004", "pay-003", "pay-002"},
		},
		{
			name:    "amount range is inclusive",
			filters: models.DashboardFilters{MinAmount: &minAmount, MaxAmount: &maxAmount},
			wantIDs: []string{"pay-002", "pay-001"},
		},
		{
			name: "filters compose",
			filters: models.DashboardFilters{
				Search:   "grace",
				Statuses: []models.PaymentStatus{models.PaymentStatusPending},
			},
			wantIDs: []string{"pay-003"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(payments, tt.filters)
			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.PaymentID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestApplyFilters_Idempotent(t *testing.T) {
	payments := samplePayments()
	filters := models.DashboardFilters{Statuses: []models.PaymentStatus{models.PaymentStatusCompleted}}

	once := ApplyFilters(payments, filters)
	twice := ApplyFilters(once, filters)
	assert.Equal(t, once, twice)
}

func TestPaginate(t *testing.T) {
	var payments []models.Payment
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		payments = append(payments, models.Payment{
			PaymentID: fmt.Sprintf("pay-%03d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	pageItems, info := Paginate(payments, 1, 10)
	assert.Len(t, pageItems, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 25, info.TotalCount)
	assert.True(t, info.HasNext)
	assert.False(t, info.HasPrev)

	lastPage, lastInfo := Paginate(payments, 3, 10)
	assert.Len(t, lastPage, 5)
	assert.False(t, lastInfo.HasNext)
	assert.True(t, lastInfo.HasPrev)

	empty, overflowInfo := Paginate(payments, 99, 10)
	assert.Empty(t, empty)
	assert.Equal(t, 99, overflowInfo.Page)
}

func TestPaginate_ClampsBadInput(t *testing.T) {
	payments := samplePayments()

	pageItems, info := Paginate(payments, 0, -5)
	assert.Equal(t, 1, info.Page)
	assert.Equal(t, models.DefaultPageSize, info.PageSize)
	assert.Len(t, pageItems, len(payments))
}

func TestPaginate_RoundTrip(t *testing.T) {
	payments := ApplyFilters(samplePayments(), models.DashboardFilters{})

	const pageSize = 3
	_, info := Paginate(payments, 1, pageSize)

	var rebuilt []models.Payment
	for page := 1; page <= info.TotalPages; page++ {
		items, _ := Paginate(payments, page, pageSize)
		rebuilt = append(rebuilt, items...)
	}

	require.Equal(t, payments, rebuilt, "concatenated pages must reconstruct the collection")
}
