package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shiftwise/internal/access"
	"shiftwise/pkg/utils"
)

const (
	TokenCookie = "shiftwise_token"
	identityKey = "identity"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, accountID uuid.UUID) (access.Identity, error)
}

// IdentityMiddleware resolves the caller from a bearer token or the token
// cookie. Requests without a valid token continue as anonymous.
func IdentityMiddleware(tokens *utils.TokenIssuer, resolver IdentityResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, access.Anonymous())

		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}
		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			logger.DebugContext(c.Request.Context(), "rejected token", slog.Any("error", err))
			c.Next()
			return
		}

		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			logger.DebugContext(c.Request.Context(), "token without account id", slog.Any("error", err))
			c.Next()
			return
		}

		id, err := resolver.Resolve(c.Request.Context(), accountID)
		if err != nil {
			if !errors.Is(err, utils.ErrAccountNotFound) {
				logger.ErrorContext(c.Request.Context(), "resolve identity",
					slog.String("account_id", claims.AccountID),
					slog.Any("error", err))
			}
			c.Next()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// IdentityFrom returns the identity set by IdentityMiddleware, or an
// anonymous one.
func IdentityFrom(c *gin.Context) access.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(access.Identity); ok {
			return id
		}
	}
	return access.Anonymous()
}

// SetIdentity is used by tests and by handlers that authenticate mid-request.
func SetIdentity(c *gin.Context, id access.Identity) {
	c.Set(identityKey, id)
}

// RequireAuth rejects anonymous callers of JSON endpoints with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).Authenticated {
			utils.RespondError(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}
