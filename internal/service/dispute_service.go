package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/store"
)

var (
	ErrDisputeNotFound      = errors.New("dispute not found")
	ErrDisputeNotOpen       = errors.New("dispute is not awaiting a response")
	ErrInvalidDisputeStatus = errors.New("invalid dispute status")
)

type DisputeService struct {
	store  store.Store
	logger *zap.Logger
}

func NewDisputeService(st store.Store, logger *zap.Logger) *DisputeService {
	return &DisputeService{store: st, logger: logger}
}

// OpenDispute records an incoming dispute against a payment. In production
// these arrive from the card networks; the payment frontend never creates
// them directly.
func (s *DisputeService) OpenDispute(ctx context.Context, paymentID string, reason models.DisputeReason, amount float64) (*models.Dispute, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	respondBy := now.AddDate(0, 0, 14)
	d := &models.Dispute{
		DisputeID:  "dsp_" + uuid.New().String(),
		PaymentID:  payment.PaymentID,
		MerchantID: payment.MerchantID,
		Amount:     amount,
		Currency:   payment.Currency,
		Status:     models.DisputeStatusOpened,
		Reason:     reason,
		OpenedAt:   now,
		RespondBy:  &respondBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateDispute(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("dispute opened",
		zap.String("dispute_id", d.DisputeID),
		zap.String("payment_id", d.PaymentID),
		zap.String("reason", string(reason)))

	return d, nil
}

// GetDispute returns a dispute only if it belongs to the merchant.
func (s *DisputeService) GetDispute(ctx context.Context, merchantID, disputeID string) (*models.Dispute, error) {
	d, err := s.store.GetDispute(ctx, disputeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.MerchantID != merchantID {
		return nil, ErrDisputeNotFound
	}
	return d, nil
}

// ListDisputes returns a merchant's disputes, optionally narrowed by status,
// newest first, as a 1-based page.
func (s *DisputeService) ListDisputes(ctx context.Context, merchantID string, status models.DisputeStatus, page, pageSize int) ([]models.Dispute, models.Pagination, error) {
	if status != "" && !status.Valid() {
		return nil, models.Pagination{}, ErrInvalidDisputeStatus
	}

	all, err := s.store.ListDisputes(ctx, merchantID)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	disputes := []models.Dispute{}
	for _, d := range all {
		if status == "" || d.Status == status {
			disputes = append(disputes, d)
		}
	}
	sort.SliceStable(disputes, func(i, j int) bool {
		return disputes[i].OpenedAt.After(disputes[j].OpenedAt)
	})

	info := models.NewPagination(page, pageSize, len(disputes))
	start := (info.Page - 1) * info.PageSize
	if start >= len(disputes) {
		return []models.Dispute{}, info, nil
	}
	end := start + info.PageSize
	if end > len(disputes) {
		end = len(disputes)
	}
	return disputes[start:end], info, nil
}

// Stats summarizes the merchant's disputes.
func (s *DisputeService) Stats(ctx context.Context, merchantID string) (*models.DisputeStats, error) {
	disputes, err := s.store.ListDisputes(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	stats := &models.DisputeStats{TotalDisputes: len(disputes)}
	for _, d := range disputes {
		switch d.Status {
		case models.DisputeStatusOpened, models.DisputeStatusUnderReview, models.DisputeStatusEvidenceRequired:
			stats.OpenDisputes++
		case models.DisputeStatusWon:
			stats.WonDisputes++
		case models.DisputeStatusLost:
			stats.LostDisputes++
		}
		if d.Status == models.DisputeStatusOpened || d.Status == models.DisputeStatusEvidenceRequired {
			stats.NeedingAction++
		}
		stats.TotalDisputed += d.Amount
	}

	if resolved := stats.WonDisputes + stats.LostDisputes; resolved > 0 {
		stats.WinRate = float64(stats.WonDisputes) / float64(resolved) * 100
	}
	return stats, nil
}

// Respond submits the merchant's evidence. Only disputes still waiting on the
// merchant accept a response; submitting moves them under review.
func (s *DisputeService) Respond(ctx context.Context, merchantID, disputeID, responseText string) (*models.Dispute, error) {
	d, err := s.GetDispute(ctx, merchantID, disputeID)
	if err != nil {
		return nil, err
	}

	if d.Status != models.DisputeStatusOpened && d.Status != models.DisputeStatusEvidenceRequired {
		return nil, ErrDisputeNotOpen
	}

	d.ResponseText = responseText
	d.Status = models.DisputeStatusUnderReview
	d.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateDispute(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("dispute response submitted",
		zap.String("dispute_id", d.DisputeID),
		zap.String("merchant_id", merchantID))

	return d, nil
}
