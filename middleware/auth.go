package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"payment-service/models"
)

const TenantKey = "tenantContext"

// AuthMiddleware validates the bearer token and materialises the tenant
// claims (organizationId, branchId, sub) into the request context. Handlers
// read them with GetTenant and pass them to the core as explicit parameters.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || token == nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		tenant := models.TenantContext{
			OrganizationID: stringClaim(claims, "organizationId"),
			BranchID:       stringClaim(claims, "branchId"),
			UserID:         stringClaim(claims, "sub"),
		}
		if err := tenant.Validate(); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant claims missing from token"})
			return
		}

		c.Set(TenantKey, tenant)
		c.Next()
	}
}

// GetTenant returns the tenant context set by AuthMiddleware.
func GetTenant(c *gin.Context) (models.TenantContext, bool) {
	val, exists := c.Get(TenantKey)
	if !exists {
		return models.TenantContext{}, false
	}
	tenant, ok := val.(models.TenantContext)
	return tenant, ok
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
