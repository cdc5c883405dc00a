package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// reviewerContextKey is the gin context key under which the authenticated
// reviewer is stored.
const reviewerContextKey = "reviewer"

// Middleware extracts the Authorization header, resolves the token to a
// reviewer, and injects the reviewer into the request context.
//
// If any step fails (missing token, invalid token, reviewer not found) the
// request proceeds without a reviewer. Handlers that need one use
// RequireReviewer / GetReviewer. This keeps public endpoints, protected
// endpoints, and optional-auth endpoints on one middleware.
func Middleware(authService *AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			slog.Debug("no authorization header provided")
			c.Next()
			return
		}

		token, err := ExtractTokenFromHeader(authHeader)
		if err != nil {
			slog.Warn("failed to extract token from header", "error", err)
			c.Next()
			return
		}

		reviewer, err := authService.GetReviewerByToken(c.Request.Context(), token)
		if err != nil {
			slog.Debug("token did not resolve to a reviewer", "error", err)
			c.Next()
			return
		}

		c.Set(reviewerContextKey, reviewer)
		c.Next()
	}
}

// GetReviewer extracts the authenticated reviewer from the gin context.
// Returns nil if the request carried no valid token.
func GetReviewer(c *gin.Context) *Reviewer {
	value, exists := c.Get(reviewerContextKey)
	if !exists {
		return nil
	}
	reviewer, ok := value.(*Reviewer)
	if !ok {
		return nil
	}
	return reviewer
}

// RequireReviewer aborts the request with 401 when no reviewer is
// authenticated.
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetReviewer(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole aborts the request with 403 unless the authenticated reviewer
// holds one of the given roles. Admins always pass.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewer := GetReviewer(c)
		if reviewer == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if reviewer.Role == RoleAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if reviewer.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
