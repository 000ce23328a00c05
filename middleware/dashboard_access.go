package middleware

import (
	"net/http"
	"strings"

	"indiflow-dashboard-api/services"

	"github.com/gin-gonic/gin"
)

// ClaimsKey holds the validated *services.Claims for token-authenticated
// dashboard requests.
const ClaimsKey = "claims"

// DashboardAccess admits developer-role tokens from the Authorization header
// or a token query parameter. With openAccess set, ?dev=1 and ?dashboard=1
// are admitted without credentials.
func DashboardAccess(auth *services.AuthService, openAccess bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if openAccess && (c.Query("dev") == "1" || c.Query("dashboard") == "1") {
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "dashboard access requires a developer token"})
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if !claims.CanUseDashboard() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "developer role required"})
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
