package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/pkg/auth"
)

// Ключи контекста Gin, которые заполняет RequireAuth
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextClaims = "claims"
)

// TokenParser проверяет access-токен
type TokenParser interface {
	ParseToken(ctx context.Context, tokenString string) (*auth.JWTCustomClaims, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	tokens TokenParser
}

// NewAuthMiddleware создает новый middleware
func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth проверяет Bearer токен и кладёт user_id и role в контекст
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		// Формат заголовка Bearer {token}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.tokens.ParseToken(c.Request.Context(), parts[1])
		if err != nil {
			errorType := "token_invalid"
			if errors.Is(err, auth.ErrRevokedToken) {
				errorType = "token_revoked"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errorType})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRole пропускает только пользователей с указанной ролью.
// Применяется ПОСЛЕ RequireAuth.
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		if c.GetString(ContextRole) != role {
			log.Printf("[AuthMiddleware] User %v denied access to %s: role %q required", userID, c.FullPath(), role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "role_forbidden"})
			return
		}

		c.Next()
	}
}
