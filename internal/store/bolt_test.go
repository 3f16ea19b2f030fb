package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/store"
)

func newTestStore(t *testing.T) *store.BoltStore {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testPayment(id, merchant string) *models.Payment {
	now := time.Now().UTC()
	return &models.Payment{
		PaymentID:     id,
		TransactionID: "txn-" + id,
		MerchantID:    merchant,
		CustomerID:    "cust-1",
		Amount:        100,
		Currency:      "USD",
		Status:        models.PaymentStatusCompleted,
		PaymentMethod: models.PaymentMethodCreditCard,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestBoltStore_PaymentLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := testPayment("pay-1", "m-1")
	require.NoError(t, s.CreatePayment(ctx, p))

	// Retried create with the same ID must not overwrite.
	err := s.CreatePayment(ctx, p)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, p.PaymentID, got.PaymentID)
	assert.Equal(t, p.Amount, got.Amount)

	byTxn, err := s.GetPaymentByTransaction(ctx, "txn-pay-1")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", byTxn.PaymentID)

	got.Status = models.PaymentStatusRefunded
	require.NoError(t, s.UpdatePayment(ctx, got))
	updated, err := s.GetPayment(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, updated.Status)

	require.NoError(t, s.DeletePayment(ctx, "pay-1"))
	_, err = s.GetPayment(ctx, "pay-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting a missing record is a no-op, not an error.
	assert.NoError(t, s.DeletePayment(ctx, "pay-1"))
}

func TestBoltStore_ListPaymentsByMerchant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePayment(ctx, testPayment("pay-1", "m-1")))
	require.NoError(t, s.CreatePayment(ctx, testPayment("pay-2", "m-1")))
	require.NoError(t, s.CreatePayment(ctx, testPayment("pay-3", "m-2")))

	all, err := s.ListPayments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := s.ListPayments(ctx, "m-1")
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	none, err := s.ListPayments(ctx, "m-9")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestBoltStore_Refunds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	r := &models.Refund{
		RefundID:   "ref-1",
		PaymentID:  "pay-1",
		MerchantID: "m-1",
		Amount:     50,
		Currency:   "USD",
		Status:     models.RefundStatusCompleted,
		Reason:     "requested by customer",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateRefund(ctx, r))

	byPayment, err := s.ListRefundsByPayment(ctx, "pay-1")
	require.NoError(t, err)
	require.Len(t, byPayment, 1)
	assert.Equal(t, 50.0, byPayment[0].Amount)

	byMerchant, err := s.ListRefunds(ctx, "m-1")
	require.NoError(t, err)
	assert.Len(t, byMerchant, 1)
}

func TestBoltStore_Disputes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	d := &models.Dispute{
		DisputeID:  "dsp-1",
		PaymentID:  "pay-1",
		MerchantID: "m-1",
		Amount:     100,
		Currency:   "USD",
		Status:     models.DisputeStatusOpened,
		Reason:     models.DisputeReasonFraudulent,
		OpenedAt:   now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.CreateDispute(ctx, d))

	got, err := s.GetDispute(ctx, "dsp-1")
	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusOpened, got.Status)

	got.Status = models.DisputeStatusUnderReview
	got.ResponseText = "evidence attached"
	require.NoError(t, s.UpdateDispute(ctx, got))

	listed, err := s.ListDisputes(ctx, "m-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.DisputeStatusUnderReview, listed[0].Status)
}

func TestBoltStore_Merchants(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := &models.Merchant{
		MerchantID:   "m-1",
		Email:        "test@merchant.com",
		Name:         "Test Merchant",
		PasswordHash: "x",
		APIKey:       "key",
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.CreateMerchant(ctx, m))
	assert.ErrorIs(t, s.CreateMerchant(ctx, m), store.ErrAlreadyExists)

	byEmail, err := s.GetMerchantByEmail(ctx, "test@merchant.com")
	require.NoError(t, err)
	assert.Equal(t, "m-1", byEmail.MerchantID)

	_, err = s.GetMerchantByEmail(ctx, "nobody@merchant.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
