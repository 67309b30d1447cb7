package middleware

import (
	"errors"
	"fmt"
	"strings"

	"anoa.com/hostelhub/internal/modules/auth/token"
	userRepo "anoa.com/hostelhub/internal/modules/user/repository"
	"anoa.com/hostelhub/internal/policy"
	"anoa.com/hostelhub/pkg/apperror"
	"anoa.com/hostelhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	tokens   *token.Manager
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, tokens *token.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// RequireAuth verifies the access token and stores the subject as "user_id".
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			response.ResponseError(c, fmt.Errorf("authorization required: %w", apperror.ErrUnauthorized))
			c.Abort()
			return
		}

		userID, err := m.tokens.Parse(tokenString)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		c.Set("user_id", userID.String())
		c.Next()
	}
}

// Authorize resolves the caller's identity and runs guards over it. Inactive
// accounts are always rejected.
func (m *AuthMiddleware) Authorize(guards ...policy.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				err = fmt.Errorf("user no longer exists: %w", apperror.ErrUnauthorized)
			}
			response.ResponseError(c, err)
			c.Abort()
			return
		}

		all := append([]policy.Guard{policy.RequireActive()}, guards...)
		decision := policy.Evaluate(c.Request.Context(), policy.NewIdentity(user), all...)
		if !decision.Authorized() {
			response.ResponseError(c, decision.Reason)
			c.Abort()
			return
		}

		c.Set("identity", decision.Identity)
		c.Request = c.Request.WithContext(policy.WithIdentity(c.Request.Context(), decision.Identity))
		c.Next()
	}
}

// RequireRole is Authorize with a role guard and the profile check.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return m.Authorize(policy.RequireRole(roles...), policy.RequireProfile())
}
