package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/processor"
	"github.com/MepCity/payment-dashboard/internal/store"
)

func newPaymentService(t *testing.T) (*PaymentService, store.Store) {
	t.Helper()
	st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := zap.NewNop()
	return NewPaymentService(st, nil, processor.NewSimulated(logger), logger), st
}

func validRequest() *models.CreatePaymentRequest {
	return &models.CreatePaymentRequest{
		MerchantID:     "m-1",
		CustomerID:     "cust-1",
		CustomerName:   "Grace Hopper",
		CustomerEmail:  "grace@example.com",
		Amount:         100,
		Currency:       "usd",
		PaymentMethod:  models.PaymentMethodCreditCard,
		CardNumber:     "4242424242424242",
		CardHolderName: "Grace Hopper",
		CardExpMonth:   12,
		CardExpYear:    2099,
		CardCVV:        "123",
	}
}

func TestCreatePayment_Approved(t *testing.T) {
	svc, _ := newPaymentService(t)
	ctx := context.Background()

	p, err := svc.CreatePayment(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, p.Status)
	assert.Equal(t, "USD", p.Currency, "currency is upper-cased")
	assert.Equal(t, "**** **** **** 4242", p.MaskedCardNumber)
	assert.Equal(t, "visa", p.CardNetwork)
	assert.NotNil(t, p.CompletedAt)
	assert.NotEmpty(t, p.TransactionID)

	got, err := svc.GetPaymentByTransaction(ctx, p.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, p.PaymentID, got.PaymentID)
}

func TestCreatePayment_Declined(t *testing.T) {
	svc, _ := newPaymentService(t)

	req := validRequest()
	req.CardNumber = "4000000000000002"

	p, err := svc.CreatePayment(context.Background(), req)
	require.NoError(t, err, "a decline is a recorded payment, not an error")
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	assert.Equal(t, "card declined", p.FailureReason)
	assert.Nil(t, p.CompletedAt)
}

func TestCreatePayment_InvalidMethod(t *testing.T) {
	svc, _ := newPaymentService(t)

	req := validRequest()
	req.PaymentMethod = "CHEQUE"

	_, err := svc.CreatePayment(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	svc, st := newPaymentService(t)
	ctx := context.Background()

	p, err := svc.CreatePayment(ctx, validRequest())
	require.NoError(t, err)

	// COMPLETED may only move to REFUNDED.
	_, err = svc.UpdateStatus(ctx, p.PaymentID, models.PaymentStatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := svc.UpdateStatus(ctx, p.PaymentID, models.PaymentStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, updated.Status)

	// REFUNDED is terminal.
	_, err = svc.UpdateStatus(ctx, p.PaymentID, models.PaymentStatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, p.PaymentID, "BOGUS")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stored, err := st.GetPayment(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, stored.Status)
}

func TestCreateRefund_CumulativeCap(t *testing.T) {
	svc, _ := newPaymentService(t)
	ctx := context.Background()

	p, err := svc.CreatePayment(ctx, validRequest())
	require.NoError(t, err)

	// Over-amount refund is rejected outright.
	_, err = svc.CreateRefund(ctx, p.PaymentID, &models.CreateRefundRequest{Amount: 150})
	assert.ErrorIs(t, err, ErrRefundExceedsPayment)

	// Partial refund leaves the payment completed.
	r1, err := svc.CreateRefund(ctx, p.PaymentID, &models.CreateRefundRequest{Amount: 60, Reason: "damaged goods"})
	require.NoError(t, err)
	assert.Equal(t, models.RefundStatusCompleted, r1.Status)

	after, err := svc.GetPayment(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, after.Status)

	// A second refund beyond the remainder is rejected: the cap is cumulative.
	_, err = svc.CreateRefund(ctx, p.PaymentID, &models.CreateRefundRequest{Amount: 50})
	assert.ErrorIs(t, err, ErrRefundExceedsPayment)

	// Refunding exactly the remainder flips the payment to REFUNDED.
	_, err = svc.CreateRefund(ctx, p.PaymentID, &models.CreateRefundRequest{Amount: 40})
	require.NoError(t, err)

	final, err := svc.GetPayment(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, final.Status)

	// A fully refunded payment cannot be refunded again.
	_, err = svc.CreateRefund(ctx, p.PaymentID, &models.CreateRefundRequest{Amount: 1})
	assert.ErrorIs(t, err, ErrPaymentNotRefundable)

	refunds, err := svc.ListRefundsByPayment(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Len(t, refunds, 2)
}

func TestListPayments_FiltersAndPaginates(t *testing.T) {
	svc, _ := newPaymentService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		req := validRequest()
		if i%2 == 1 {
			req.CardNumber = "4000000000000002" // declined
		}
		_, err := svc.CreatePayment(ctx, req)
		require.NoError(t, err)
	}

	completed, info, err := svc.ListPayments(ctx, "m-1", models.DashboardFilters{
		Statuses: []models.PaymentStatus{models.PaymentStatusCompleted},
	}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, completed, 2)
	assert.Equal(t, 3, info.TotalCount)
	assert.Equal(t, 2, info.TotalPages)
	assert.True(t, info.HasNext)

	// Other merchants see nothing.
	none, _, err := svc.ListPayments(ctx, "m-2", models.DashboardFilters{}, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListByStatus(t *testing.T) {
	svc, _ := newPaymentService(t)
	ctx := context.Background()

	_, err := svc.CreatePayment(ctx, validRequest())
	require.NoError(t, err)

	failed, err := svc.ListByStatus(ctx, "m-1", models.PaymentStatusFailed)
	require.NoError(t, err)
	assert.Empty(t, failed)

	_, err = svc.ListByStatus(ctx, "m-1", "NOPE")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeletePayment(t *testing.T) {
	svc, _ := newPaymentService(t)
	ctx := context.Background()

	p, err := svc.CreatePayment(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeletePayment(ctx, p.PaymentID))
	_, err = svc.GetPayment(ctx, p.PaymentID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	err = svc.DeletePayment(ctx, p.PaymentID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestSyncPayment_NoChangeWithSimulatedAuthorizer(t *testing.T) {
	svc, _ := newPaymentService(t)
	ctx := context.Background()

	p, err := svc.CreatePayment(ctx, validRequest())
	require.NoError(t, err)

	synced, err := svc.SyncPayment(ctx, p.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, p.Status, synced.Status)
}
