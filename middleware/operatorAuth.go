package middleware

import (
	"net/http"
	"strings"

	"github.com/luisperes28-droid/desperto-app-sub001/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// OperatorAuthMiddleware guards operator-only mutation endpoints. Token
// issuance and session storage live in an external identity service; this
// only verifies the bearer token and the operator role claim.
func OperatorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["role"] != "operator" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Operator access required"})
			return
		}

		c.Set("operatorID", claims["sub"])
		c.Next()
	}
}
