package middleware

import (
	"net/http"
	"strings"

	"anoa.com/eduainexus/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "claims"

type AuthMiddleware struct {
	tokens *token.Manager
}

func NewAuthMiddleware(tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	// browsers cannot set headers on websocket upgrades
	return c.Query("token")
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (bool, string) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return false, "authorization required"
	}

	claims, err := m.tokens.Parse(c.Request.Context(), tokenString)
	if err != nil {
		return false, "invalid or expired token"
	}

	c.Set("user_id", claims.Subject)
	c.Set(claimsKey, claims)
	return true, ""
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, msg := m.authenticate(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets guests through otherwise.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) != "" {
			if ok, msg := m.authenticate(c); !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
				return
			}
		}
		c.Next()
	}
}

// Claims returns the verified token claims set by RequireAuth.
func Claims(c *gin.Context) *jwt.RegisteredClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*jwt.RegisteredClaims)
	return claims
}
