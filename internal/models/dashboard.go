package models

import (
	"math"
	"time"
)

// CustomerView is derived from the payment collection, never stored.
type CustomerView struct {
	CustomerID    string     `json:"customerId"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	TotalPayments int        `json:"totalPayments"`
	TotalAmount   float64    `json:"totalAmount"`
	LastPaymentAt *time.Time `json:"lastPaymentAt,omitempty"`
}

type PaymentStats struct {
	TotalPayments      int     `json:"totalPayments"`
	SuccessfulPayments int     `json:"successfulPayments"`
	FailedPayments     int     `json:"failedPayments"`
	PendingPayments    int     `json:"pendingPayments"`
	TotalAmount        float64 `json:"totalAmount"`
	SuccessRate        float64 `json:"successRate"`
	AverageAmount      float64 `json:"averageAmount"`
}

// DashboardFilters is a transient query object rebuilt per request.
type DashboardFilters struct {
	Search    string          `json:"search" form:"search"`
	Statuses  []PaymentStatus `json:"statuses" form:"status"`
	Methods   []PaymentMethod `json:"methods" form:"method"`
	StartDate *time.Time      `json:"startDate" form:"startDate" time_format:"2006-01-02"`
	EndDate   *time.Time      `json:"endDate" form:"endDate" time_format:"2006-01-02"`
	MinAmount *float64        `json:"minAmount" form:"minAmount"`
	MaxAmount *float64        `json:"maxAmount" form:"maxAmount"`
}

// Pagination is 1-based everywhere. The page is clamped, never rejected.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalCount int  `json:"totalCount"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

const DefaultPageSize = 20

// NewPagination normalizes page/pageSize and computes the derived fields.
func NewPagination(page, pageSize, totalCount int) Pagination {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(totalCount) / float64(pageSize)))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
