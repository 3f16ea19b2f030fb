package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MepCity/payment-dashboard/internal/auth"
	"github.com/MepCity/payment-dashboard/internal/cache"
	"github.com/MepCity/payment-dashboard/internal/store"
)

const (
	APIKeyHeader = "X-API-Key"

	// Context keys set for downstream handlers.
	CtxMerchantID    = "merchant_id"
	CtxMerchantEmail = "merchant_email"
)

// RequireAuth enforces the two-credential contract: a valid bearer token and
// the merchant's API key on every request. Any failure is a 401; the client
// treats that as a forced logout.
func RequireAuth(manager *auth.Manager, st store.Store, c *cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			unauthorized(ctx, "missing or malformed authorization header")
			return
		}
		token := parts[1]

		if c.IsTokenRevoked(ctx.Request.Context(), token) {
			unauthorized(ctx, "session has been revoked")
			return
		}

		claims, err := manager.Verify(token)
		if err != nil {
			unauthorized(ctx, "invalid or expired token")
			return
		}

		apiKey := ctx.GetHeader(APIKeyHeader)
		if apiKey == "" {
			unauthorized(ctx, "missing API key")
			return
		}

		merchant, err := st.GetMerchant(ctx.Request.Context(), claims.MerchantID)
		if err != nil || !merchant.Active || merchant.APIKey != apiKey {
			unauthorized(ctx, "invalid API key")
			return
		}

		ctx.Set(CtxMerchantID, merchant.MerchantID)
		ctx.Set(CtxMerchantEmail, merchant.Email)
		ctx.Next()
	}
}

func unauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}
