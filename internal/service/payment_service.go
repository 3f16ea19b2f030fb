package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/cache"
	"github.com/MepCity/payment-dashboard/internal/dashboard"
	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/processor"
	"github.com/MepCity/payment-dashboard/internal/store"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidStatus        = errors.New("invalid payment status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrPaymentNotRefundable = errors.New("only completed payments can be refunded")
	ErrRefundExceedsPayment = errors.New("Refund amount cannot exceed payment amount")
)

var paymentsProcessed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payments_processed_total",
		Help: "Processed payments by final status",
	},
	[]string{"status"},
)

type PaymentService struct {
	store      store.Store
	cache      *cache.Cache
	authorizer processor.Authorizer
	logger     *zap.Logger
}

func NewPaymentService(st store.Store, c *cache.Cache, authorizer processor.Authorizer, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		store:      st,
		cache:      c,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreatePayment authorizes and records a payment. A repeated idempotency key
// returns the original payment without touching the authorizer again.
func (s *PaymentService) CreatePayment(ctx context.Context, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if cached, err := s.cache.GetIdempotentPayment(ctx, req.IdempotencyKey); err == nil && cached != nil {
		return cached, nil
	}

	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		PaymentID:      "pay_" + uuid.New().String(),
		TransactionID:  "txn_" + uuid.New().String(),
		MerchantID:     req.MerchantID,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		Amount:         req.Amount,
		Currency:       strings.ToUpper(req.Currency),
		PaymentMethod:  req.PaymentMethod,
		Description:    req.Description,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.CardNumber != "" {
		payment.MaskedCardNumber = processor.MaskCardNumber(req.CardNumber)
		payment.CardHolderName = req.CardHolderName
		payment.CardNetwork = processor.DetectCardNetwork(req.CardNumber)
	}

	result, err := s.authorizer.Authorize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	if result.Approved {
		payment.Status = models.PaymentStatusCompleted
		payment.ProcessorRef = result.Reference
		completed := now
		payment.CompletedAt = &completed
	} else {
		payment.Status = models.PaymentStatusFailed
		payment.FailureReason = result.Reason
	}

	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	paymentsProcessed.WithLabelValues(string(payment.Status)).Inc()
	if err := s.cache.SetIdempotentPayment(ctx, req.IdempotencyKey, payment); err != nil {
		s.logger.Warn("failed to cache idempotent payment", zap.Error(err))
	}
	s.cache.InvalidateStats(ctx, payment.MerchantID)

	s.logger.Info("payment processed",
		zap.String("payment_id", payment.PaymentID),
		zap.String("merchant_id", payment.MerchantID),
		zap.String("status", string(payment.Status)),
		zap.Float64("amount", payment.Amount))

	return payment, nil
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	p, err := s.store.GetPayment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

func (s *PaymentService) GetPaymentByTransaction(ctx context.Context, transactionID string) (*models.Payment, error) {
	p, err := s.store.GetPaymentByTransaction(ctx, transactionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	return p, err
}

// ListPayments loads the merchant's collection and applies filters, sorting
// and pagination in memory.
func (s *PaymentService) ListPayments(ctx context.Context, merchantID string, filters models.DashboardFilters, page, pageSize int) ([]models.Payment, models.Pagination, error) {
	payments, err := s.store.ListPayments(ctx, merchantID)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	filtered := dashboard.ApplyFilters(payments, filters)
	items, info := dashboard.Paginate(filtered, page, pageSize)
	return items, info, nil
}

func (s *PaymentService) ListByCustomer(ctx context.Context, merchantID, customerID string) ([]models.Payment, error) {
	payments, err := s.store.ListPayments(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	out := []models.Payment{}
	for _, p := range dashboard.ApplyFilters(payments, models.DashboardFilters{}) {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PaymentService) ListByStatus(ctx context.Context, merchantID string, status models.PaymentStatus) ([]models.Payment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	payments, err := s.store.ListPayments(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return dashboard.ApplyFilters(payments, models.DashboardFilters{
		Statuses: []models.PaymentStatus{status},
	}), nil
}

// Status transitions are backend-owned; clients only display them.
var allowedTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending:    {models.PaymentStatusProcessing, models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusCancelled},
	models.PaymentStatusProcessing: {models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusCancelled},
	models.PaymentStatusCompleted:  {models.PaymentStatusRefunded},
}

func transitionAllowed(from, to models.PaymentStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *PaymentService) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Payment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(payment.Status, status) {
		return nil, ErrInvalidTransition
	}

	payment.Status = status
	payment.UpdatedAt = time.Now().UTC()
	if status == models.PaymentStatusCompleted && payment.CompletedAt == nil {
		t := payment.UpdatedAt
		payment.CompletedAt = &t
	}

	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, err
	}
	s.cache.InvalidateStats(ctx, payment.MerchantID)
	return payment, nil
}

// CreateRefund settles a refund against a completed payment. The cap is
// cumulative: the sum of all completed refunds for the payment, including
// this one, may never exceed the original amount.
func (s *PaymentService) CreateRefund(ctx context.Context, paymentID string, req *models.CreateRefundRequest) (*models.Refund, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusCompleted {
		return nil, ErrPaymentNotRefundable
	}

	prior, err := s.store.ListRefundsByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	var refunded float64
	for _, r := range prior {
		if r.Status == models.RefundStatusCompleted {
			refunded += r.Amount
		}
	}
	if req.Amount+refunded > payment.Amount {
		return nil, ErrRefundExceedsPayment
	}

	if err := s.authorizer.Refund(ctx, payment, req.Amount); err != nil {
		return nil, fmt.Errorf("refund settlement failed: %w", err)
	}

	now := time.Now().UTC()
	ref := &models.Refund{
		RefundID:   "ref_" + uuid.New().String(),
		PaymentID:  payment.PaymentID,
		MerchantID: payment.MerchantID,
		Amount:     req.Amount,
		Currency:   payment.Currency,
		Status:     models.RefundStatusCompleted,
		Reason:     req.Reason,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateRefund(ctx, ref); err != nil {
		return nil, err
	}

	// A fully refunded payment flips to REFUNDED.
	if refunded+req.Amount >= payment.Amount {
		payment.Status = models.PaymentStatusRefunded
		payment.UpdatedAt = now
		if err := s.store.UpdatePayment(ctx, payment); err != nil {
			s.logger.Error("failed to mark payment refunded",
				zap.Error(err),
				zap.String("payment_id", payment.PaymentID))
		}
	}
	s.cache.InvalidateStats(ctx, payment.MerchantID)

	s.logger.Info("refund created",
		zap.String("refund_id", ref.RefundID),
		zap.String("payment_id", payment.PaymentID),
		zap.Float64("amount", ref.Amount))

	return ref, nil
}

func (s *PaymentService) ListRefunds(ctx context.Context, merchantID string) ([]models.Refund, error) {
	return s.store.ListRefunds(ctx, merchantID)
}

func (s *PaymentService) ListRefundsByPayment(ctx context.Context, paymentID string) ([]models.Refund, error) {
	return s.store.ListRefundsByPayment(ctx, paymentID)
}

func (s *PaymentService) DeletePayment(ctx context.Context, id string) error {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePayment(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateStats(ctx, payment.MerchantID)
	return nil
}

// SyncPayment re-reads the authorizer's view of the payment and reconciles
// the stored status with it.
func (s *PaymentService) SyncPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := s.authorizer.SyncStatus(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("sync failed: %w", err)
	}
	if status == payment.Status {
		return payment, nil
	}

	payment.Status = status
	payment.UpdatedAt = time.Now().UTC()
	if status == models.PaymentStatusCompleted && payment.CompletedAt == nil {
		t := payment.UpdatedAt
		payment.CompletedAt = &t
	}
	if err := s.store.UpdatePayment(ctx, payment); err != nil {
		return nil, err
	}
	s.cache.InvalidateStats(ctx, payment.MerchantID)
	return payment, nil
}
