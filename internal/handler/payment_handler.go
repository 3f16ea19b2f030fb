package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/middleware"
	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/service"
)

type PaymentHandler struct {
	service *service.PaymentService
	logger  *zap.Logger
}

func NewPaymentHandler(service *service.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger,
	}
}

// CreatePayment handles POST /v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, http.StatusBadRequest, err)
		return
	}
	req.MerchantID = c.GetString(middleware.CtxMerchantID)

	payment, err := h.service.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPaymentMethod) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create payment", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to process payment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "payment": payment})
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Payment not found")
		return
	}
	if payment.MerchantID != c.GetString(middleware.CtxMerchantID) {
		fail(c, http.StatusNotFound, "Payment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": payment})
}

// GetPaymentByTransaction handles GET /v1/payments/transaction/:transactionId
func (h *PaymentHandler) GetPaymentByTransaction(c *gin.Context) {
	payment, err := h.service.GetPaymentByTransaction(c.Request.Context(), c.Param("transactionId"))
	if err != nil || payment.MerchantID != c.GetString(middleware.CtxMerchantID) {
		fail(c, http.StatusNotFound, "Payment not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": payment})
}

// ListPayments handles GET /v1/payments and GET /v1/payments/merchant/:merchantId
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	merchantID := c.GetString(middleware.CtxMerchantID)
	if id := c.Param("merchantId"); id != "" && id != merchantID {
		// Merchants only ever see their own payments.
		fail(c, http.StatusForbidden, "Access denied")
		return
	}

	var filters models.DashboardFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		failBinding(c, http.StatusBadRequest, err)
		return
	}
	page, pageSize := pageParams(c)

	payments, pagination, err := h.service.ListPayments(c.Request.Context(), merchantID, filters, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list payments", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to list payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"payments":   payments,
		"pagination": pagination,
	})
}

// ListByCustomer handles GET /v1/payments/customer/:customerId
func (h *PaymentHandler) ListByCustomer(c *gin.Context) {
	merchantID := c.GetString(middleware.CtxMerchantID)

	payments, err := h.service.ListByCustomer(c.Request.Context(), merchantID, c.Param("customerId"))
	if err != nil {
		h.logger.Error("failed to list customer payments", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to list payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payments": payments})
}

// ListByStatus handles GET /v1/payments/status/:status
func (h *PaymentHandler) ListByStatus(c *gin.Context) {
	status := models.PaymentStatus(c.Param("status"))
	if !status.Valid() {
		fail(c, http.StatusBadRequest, "Invalid payment status")
		return
	}

	payments, err := h.service.ListByStatus(c.Request.Context(), c.GetString(middleware.CtxMerchantID), status)
	if err != nil {
		h.logger.Error("failed to list payments by status", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to list payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payments": payments})
}

// UpdateStatus handles PUT /v1/payments/:id/status?status=...
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	status := models.PaymentStatus(c.Query("status"))

	payment, err := h.requireOwned(c)
	if err != nil {
		return
	}

	payment, err = h.service.UpdateStatus(c.Request.Context(), payment.PaymentID, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidTransition):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update payment status", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Failed to update payment")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": payment})
}

// CreateRefund handles POST /v1/payments/:id/refund
func (h *PaymentHandler) CreateRefund(c *gin.Context) {
	var req models.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, http.StatusBadRequest, err)
		return
	}

	payment, err := h.requireOwned(c)
	if err != nil {
		return
	}

	refund, err := h.service.CreateRefund(c.Request.Context(), payment.PaymentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotRefundable), errors.Is(err, service.ErrRefundExceedsPayment):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to refund payment", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Failed to refund payment")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "refund": refund})
}

// ListRefunds handles GET /v1/refunds
func (h *PaymentHandler) ListRefunds(c *gin.Context) {
	refunds, err := h.service.ListRefunds(c.Request.Context(), c.GetString(middleware.CtxMerchantID))
	if err != nil {
		h.logger.Error("failed to list refunds", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to list refunds")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "refunds": refunds})
}

// DeletePayment handles DELETE /v1/payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	payment, err := h.requireOwned(c)
	if err != nil {
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), payment.PaymentID); err != nil {
		h.logger.Error("failed to delete payment", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to delete payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "payment deleted"})
}

// SyncPayment handles POST /v1/payments/:id/sync
func (h *PaymentHandler) SyncPayment(c *gin.Context) {
	payment, err := h.requireOwned(c)
	if err != nil {
		return
	}

	payment, err = h.service.SyncPayment(c.Request.Context(), payment.PaymentID)
	if err != nil {
		h.logger.Error("failed to sync payment", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to sync payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": payment})
}

// requireOwned loads the payment at :id and 404s unless it belongs to the
// authenticated merchant. It writes the response itself on failure.
func (h *PaymentHandler) requireOwned(c *gin.Context) (*models.Payment, error) {
	payment, err := h.service.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil || payment.MerchantID != c.GetString(middleware.CtxMerchantID) {
		fail(c, http.StatusNotFound, "Payment not found")
		return nil, service.ErrPaymentNotFound
	}
	return payment, nil
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))
	return page, pageSize
}
