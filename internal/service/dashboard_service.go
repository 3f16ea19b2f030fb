package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/cache"
	"github.com/MepCity/payment-dashboard/internal/dashboard"
	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/store"
)

var ErrCustomerNotFound = errors.New("customer not found")

// DashboardService serves the aggregate views: payment statistics and the
// customer list, both derived from the payment collection on demand.
type DashboardService struct {
	store  store.Store
	cache  *cache.Cache
	logger *zap.Logger
}

func NewDashboardService(st store.Store, c *cache.Cache, logger *zap.Logger) *DashboardService {
	return &DashboardService{store: st, cache: c, logger: logger}
}

// Stats computes the merchant's payment statistics, with a short-lived cache
// in front of the store.
func (s *DashboardService) Stats(ctx context.Context, merchantID string) (*models.PaymentStats, error) {
	if cached, err := s.cache.GetStats(ctx, merchantID); err == nil && cached != nil {
		return cached, nil
	}

	payments, err := s.store.ListPayments(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	stats := dashboard.ComputeStats(payments)
	if err := s.cache.SetStats(ctx, merchantID, &stats); err != nil {
		s.logger.Warn("failed to cache stats", zap.Error(err))
	}
	return &stats, nil
}

// Customers derives the customer list from payments and returns one page.
func (s *DashboardService) Customers(ctx context.Context, merchantID string, page, pageSize int) ([]models.CustomerView, models.Pagination, error) {
	payments, err := s.store.ListPayments(ctx, merchantID)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	views := dashboard.DeriveCustomers(payments)
	info := models.NewPagination(page, pageSize, len(views))

	start := (info.Page - 1) * info.PageSize
	if start >= len(views) {
		return []models.CustomerView{}, info, nil
	}
	end := start + info.PageSize
	if end > len(views) {
		end = len(views)
	}
	return views[start:end], info, nil
}

// Customer returns the derived view for a single customer. A customer with
// no payments does not exist.
func (s *DashboardService) Customer(ctx context.Context, merchantID, customerID string) (*models.CustomerView, error) {
	payments, err := s.store.ListPayments(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	for _, v := range dashboard.DeriveCustomers(payments) {
		if v.CustomerID == customerID {
			return &v, nil
		}
	}
	return nil, ErrCustomerNotFound
}
