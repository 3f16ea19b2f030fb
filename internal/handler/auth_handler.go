package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MepCity/payment-dashboard/internal/auth"
	"github.com/MepCity/payment-dashboard/internal/middleware"
	"github.com/MepCity/payment-dashboard/internal/models"
	"github.com/MepCity/payment-dashboard/internal/service"
)

type AuthHandler struct {
	service *service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, http.StatusBadRequest, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, auth.ErrInactiveMerchant):
			fail(c, http.StatusForbidden, "Merchant account is inactive")
		default:
			h.logger.Error("login failed", zap.Error(err))
			fail(c, http.StatusInternalServerError, "Failed to log in")
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// Profile handles GET /v1/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	merchantID := c.GetString(middleware.CtxMerchantID)

	merchant, err := h.service.Profile(c.Request.Context(), merchantID)
	if err != nil {
		fail(c, http.StatusNotFound, "Merchant not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": merchant})
}
