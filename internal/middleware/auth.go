// Package middleware provides gin middleware.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/havenstays/booking-backend/internal/common/jwt"
	"github.com/havenstays/booking-backend/internal/common/response"
)

// Context keys set by the auth middleware.
const (
	CtxKeyUserID = "user_id"
	CtxKeyRole   = "role"
	CtxKeyEmail  = "email"
	CtxKeyClaims = "claims"
	CtxKeyAdmin  = "is_admin"
)

// Auth requires a valid access token.
func Auth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing token")
			c.Abort()
			return
		}

		claims, err := manager.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth parses the token when present but never rejects the
// request. Handlers that vary output by viewer (e.g. the e-ticket gate
// admin bypass) use this.
func OptionalAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			if claims, err := manager.ParseToken(token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AdminAuth requires a valid token whose claims grant admin access.
func AdminAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing token")
			c.Abort()
			return
		}

		claims, err := manager.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		if !claims.IsAdmin() {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(CtxKeyUserID, claims.UserID)
	c.Set(CtxKeyRole, claims.Role)
	c.Set(CtxKeyEmail, claims.Email)
	c.Set(CtxKeyClaims, claims)
	c.Set(CtxKeyAdmin, claims.IsAdmin())
}

// IsAdmin reports whether the current request carries admin claims.
func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get(CtxKeyAdmin)
	if !ok {
		return false
	}
	admin, _ := v.(bool)
	return admin
}

// extractToken reads the bearer token from the Authorization header.
// Query parameters are never consulted; the ticket endpoint uses a
// "token" query parameter as a lookup key, not a credential.
func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return auth
}
