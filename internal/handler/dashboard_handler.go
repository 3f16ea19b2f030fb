package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/middleware"
	"github.com/MepCity/payment-dashboard/internal/service"
)

type DashboardHandler struct {
	service *service.DashboardService
	logger  *zap.Logger
}

func NewDashboardHandler(service *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// Stats handles GET /v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.GetString(middleware.CtxMerchantID))
	if err != nil {
		h.logger.Error("failed to compute payment stats", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// ListCustomers handles GET /v1/customers
func (h *DashboardHandler) ListCustomers(c *gin.Context) {
	page, pageSize := pageParams(c)

	customers, pagination, err := h.service.Customers(c.Request.Context(), c.GetString(middleware.CtxMerchantID), page, pageSize)
	if err != nil {
		h.logger.Error("failed to derive customers", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to list customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"customers":  customers,
		"pagination": pagination,
	})
}

// GetCustomer handles GET /v1/customers/:id
func (h *DashboardHandler) GetCustomer(c *gin.Context) {
	customer, err := h.service.Customer(c.Request.Context(), c.GetString(middleware.CtxMerchantID), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			fail(c, http.StatusNotFound, "Customer not found")
			return
		}
		h.logger.Error("failed to load customer", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to load customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
}
