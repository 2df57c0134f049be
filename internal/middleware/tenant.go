package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TenantKey is the gin context key holding the resolved tenant id.
const TenantKey = "tenant_id"

// Tenant resolves the tenant from the X-Tenant-ID header and makes it
// available to handlers. Tenancy is an explicit argument everywhere
// below this point; no store call runs without it.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Tenant-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TENANT_REQUIRED",
					"message": "Missing X-Tenant-ID header",
				},
			})
			return
		}

		tenantID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tenantID <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TENANT_INVALID",
					"message": "X-Tenant-ID must be a positive integer",
				},
			})
			return
		}

		c.Set(TenantKey, tenantID)
		c.Next()
	}
}
