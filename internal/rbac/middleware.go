package rbac

import (
	"net/http"

	"gavalink/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireTaxpayer enforces that an authenticated taxpayer identity exists in context.
// It does not validate the PIN against the registry; that belongs to the
// registration flow once persistence exists.
func RequireTaxpayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		pin, err := auth.TaxpayerPIN(c.Request.Context())
		if err != nil || pin == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "taxpayer_pin required"})
			return
		}
		c.Next()
	}
}

// RequireAnyRole allows access if the caller has any of the provided roles.
// Rules:
// - admin bypasses all checks
// - citizen routes and officer routes must not share a group; wire the chain explicitly
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.Role(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}

		if IsAdmin(role) {
			c.Next()
			return
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
