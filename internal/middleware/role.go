package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole is a middleware that checks if the user has the required role.
// It must run after Authenticate.
func RequireRole(requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewAPIError(models.KindAuthentication, models.ErrAuthRequired, "user not authenticated"))
			return
		}

		role, _ := c.Get(ContextUserRole)
		userRole, ok := role.(models.Role)
		if !ok || userRole != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewAPIError(models.KindAuthorization, models.ErrForbidden, "insufficient permissions",
					map[string]interface{}{
						"required_role": requiredRole,
						"user_role":     userRole,
						"user_id":       userID,
					}))
			return
		}

		c.Next()
	}
}
