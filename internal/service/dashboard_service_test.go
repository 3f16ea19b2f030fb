package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/processor"
	"github.com/MepCity/payment-dashboard/internal/store"
)

func newDashboardFixture(t *testing.T) (*DashboardService, *PaymentService) {
	t.Helper()
	st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := zap.NewNop()
	return NewDashboardService(st, nil, logger),
		NewPaymentService(st, nil, processor.NewSimulated(logger), logger)
}

func TestDashboardStats(t *testing.T) {
	dash, payments := newDashboardFixture(t)
	ctx := context.Background()

	req := validRequest()
	_, err := payments.CreatePayment(ctx, req)
	require.NoError(t, err)

	declined := validRequest()
	declined.CardNumber = "4000000000000002"
	_, err = payments.CreatePayment(ctx, declined)
	require.NoError(t, err)

	stats, err := dash.Stats(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPayments)
	assert.Equal(t, 1, stats.SuccessfulPayments)
	assert.Equal(t, 1, stats.FailedPayments)
	assert.Equal(t, 50.0, stats.SuccessRate)
	assert.Equal(t, 200.0, stats.TotalAmount)
}

func TestDashboardCustomers(t *testing.T) {
	dash, payments := newDashboardFixture(t)
	ctx := context.Background()

	for _, customer := range []string{"cust-1", "cust-2", "cust-1"} {
		req := validRequest()
		req.CustomerID = customer
		_, err := payments.CreatePayment(ctx, req)
		require.NoError(t, err)
	}

	views, info, err := dash.Customers(ctx, "m-1", 1, 10)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, 2, info.TotalCount)

	one, err := dash.Customer(ctx, "m-1", "cust-2")
	require.NoError(t, err)
	assert.Equal(t, 1, one.TotalPayments)

	_, err = dash.Customer(ctx, "m-1", "cust-404")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
