package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/middleware"
	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/service"
)

type DisputeHandler struct {
	service *service.DisputeService
	logger  *zap.Logger
}

func NewDisputeHandler(service *service.DisputeService, logger *zap.Logger) *DisputeHandler {
	return &DisputeHandler{
		service: service,
		logger:  logger,
	}
}

type openDisputeRequest struct {
	PaymentID string               `json:"paymentId" binding:"required"`
	Reason    models.DisputeReason `json:"reason" binding:"required"`
	Amount    float64              `json:"amount"`
}

// OpenDispute handles POST /v1/disputes
func (h *DisputeHandler) OpenDispute(c *gin.Context) {
	var req openDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, http.StatusBadRequest, err)
		return
	}

	dispute, err := h.service.OpenDispute(c.Request.Context(), req.PaymentID, req.Reason, req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			fail(c, http.StatusNotFound, "Payment not found")
			return
		}
		h.logger.Error("failed to open dispute", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to open dispute")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "dispute": dispute})
}

// ListDisputes handles GET /v1/disputes
func (h *DisputeHandler) ListDisputes(c *gin.Context) {
	status := models.DisputeStatus(c.Query("status"))
	page, pageSize := pageParams(c)

	disputes, pagination, err := h.service.ListDisputes(c.Request.Context(), c.GetString(middleware.CtxMerchantID), status, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDisputeStatus) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to list disputes", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to list disputes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"disputes":   disputes,
		"pagination": pagination,
	})
}

// GetDispute handles GET /v1/disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	dispute, err := h.service.GetDispute(c.Request.Context(), c.GetString(middleware.CtxMerchantID), c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Dispute not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "dispute": dispute})
}

// Stats handles GET /v1/disputes/stats
func (h *DisputeHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.GetString(middleware.CtxMerchantID))
	if err != nil {
		h.logger.Error("failed to compute dispute stats", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to compute dispute stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// Respond handles POST /v1/disputes/:id/respond
func (h *DisputeHandler) Respond(c *gin.Context) {
	var req models.DisputeResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, http.StatusBadRequest, err)
		return
	}

	dispute, err := h.service.Respond(c.Request.Context(), c.GetString(middleware.CtxMerchantID), c.Param("id"), req.ResponseText)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDisputeNotFound):
			fail(c, http.StatusNotFound, "Dispute not found")
		case errors.Is(err, service.ErrDisputeNotOpen):
			fail(c, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to submit dispute response", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Failed to submit response")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "dispute": dispute})
}
