package util

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/7pairs/twingo2/internal/models"
)

// IPMiddleware extracts client IP and stores it in the context
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gin's ClientIP() handles X-Forwarded-For and other headers
		c.Set("client_ip", c.ClientIP())
		c.Next()
	}
}

// GetIPFromContext extracts the client IP address from the context
func GetIPFromContext(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.ClientIP()
	}

	// Set by IPMiddleware
	if ip, ok := ctx.Value("client_ip").(string); ok {
		return ip
	}

	return ""
}

// GetAccountFromContext extracts the logged-in account from the context, if
// RequireAuth has resolved one for this request.
func GetAccountFromContext(ctx context.Context) *models.Account {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if v, exists := ginCtx.Get("account"); exists {
			if account, ok := v.(*models.Account); ok {
				return account
			}
		}
	}
	return nil
}
