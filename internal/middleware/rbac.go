package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pkdx/pkdb-api/internal/models"
	appErrors "github.com/pkdx/pkdb-api/pkg/errors"
	"github.com/pkdx/pkdb-api/pkg/response"
)

// RequireRoles enforces coarse role checks for routes whose policy depends
// only on the actor's role. Rules that also involve ownership or lock
// state live in the policy package and run inside the services.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
