package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MANGOpali/attendance-backend/internal/apperr"
	"github.com/MANGOpali/attendance-backend/internal/models"
	"github.com/MANGOpali/attendance-backend/internal/utils"
)

const (
	ContextUserID = "userId"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// TokenVerifier turns an Authorization header into verified claims.
type TokenVerifier interface {
	VerifyBearer(header string) (*utils.AccessClaims, error)
}

func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.VerifyBearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": apperr.PublicMessage(err, "Invalid or expired token")})
			return
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

func RequireAnyRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := c.Get(ContextRole)
		for _, role := range roles {
			if current == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// Claims returns the verified claims stored by AuthRequired.
func Claims(c *gin.Context) (*utils.AccessClaims, bool) {
	value, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*utils.AccessClaims)
	return claims, ok
}
