package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"orderflow/internal/database/models"
	"orderflow/internal/utils"
)

const claimsKey = "auth_claims"

// RevocationChecker reports whether a token id has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) bool
}

func verify(c *gin.Context, jwt *utils.JWTManager, revoked RevocationChecker, token string) (*utils.Claims, bool) {
	claims, err := jwt.ParseToken(token)
	if err != nil {
		return nil, false
	}
	if revoked != nil && revoked.IsRevoked(c.Request.Context(), claims.ID) {
		return nil, false
	}
	return claims, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

// JWTAuth rejects requests without a valid, unrevoked bearer token.
// revoked may be nil.
func JWTAuth(jwt *utils.JWTManager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Not authenticated")
			return
		}
		claims, ok := verify(c, jwt, revoked, token)
		if !ok {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller's claims when a valid token is present
// and lets anonymous requests through.
func OptionalAuth(jwt *utils.JWTManager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, ok := verify(c, jwt, revoked, token); ok {
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// AdminOnly must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			abortUnauthorized(c, "Not authenticated")
			return
		}
		if claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}

// CurrentUserID returns nil for anonymous callers.
func CurrentUserID(c *gin.Context) *int64 {
	claims, ok := CurrentUser(c)
	if !ok {
		return nil
	}
	id := claims.UserId
	return &id
}
