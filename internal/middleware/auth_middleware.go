package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/models"
	"github.com/staynest/booking-backend/pkg/jwt"
)

const (
	// PrincipalContextKey is the key used to store the resolved principal in Gin context
	PrincipalContextKey = "principal"
	// IdentityContextKey is the key used to store the verified identity claims
	IdentityContextKey = "identity"
)

// PrincipalResolver maps an identity-provider subject to an internal principal
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, authID string) (*models.Principal, error)
}

// Auth builds the authentication middlewares around one token verifier
type Auth struct {
	tokens   *jwt.Service
	resolver PrincipalResolver
	logger   *logrus.Logger
}

// NewAuth creates the authentication middleware set
func NewAuth(tokens *jwt.Service, resolver PrincipalResolver, logger *logrus.Logger) *Auth {
	return &Auth{tokens: tokens, resolver: resolver, logger: logger}
}

// Identity verifies the bearer token only. Used by routes that run before
// the caller has an internal user row, such as /me/sync.
func (a *Auth) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.verify(c)
		if !ok {
			return
		}
		c.Set(IdentityContextKey, claims)
		c.Next()
	}
}

// Authenticate verifies the bearer token and resolves it to a principal
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := a.verify(c)
		if !ok {
			return
		}
		if !a.resolve(c, claims) {
			return
		}
		c.Next()
	}
}

// Optional resolves a principal when an Authorization header is present
// and lets anonymous requests through untouched.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		claims, ok := a.verify(c)
		if !ok {
			return
		}
		if !a.resolve(c, claims) {
			return
		}
		c.Next()
	}
}

func (a *Auth) verify(c *gin.Context) (*jwt.Claims, bool) {
	fields := logrus.Fields{"path": c.Request.URL.Path, "ip": c.ClientIP()}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		a.logger.WithFields(fields).Debug("Missing authorization header")
		abort(c, http.StatusUnauthorized, "unauthorized", "Authorization header is required", "MISSING_AUTH_HEADER")
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		a.logger.WithFields(fields).Debug("Invalid authorization header format")
		abort(c, http.StatusUnauthorized, "unauthorized", "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
		return nil, false
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		abort(c, http.StatusUnauthorized, "unauthorized", "Token cannot be empty", "INVALID_AUTH_FORMAT")
		return nil, false
	}

	claims, err := a.tokens.ValidateToken(tokenString)
	if err != nil {
		if a.tokens.IsTokenExpired(tokenString) {
			a.logger.WithFields(fields).Info("Identity token expired")
			abort(c, http.StatusUnauthorized, "token_expired", "Identity token has expired", "TOKEN_EXPIRED")
		} else {
			a.logger.WithFields(fields).WithError(err).Warn("Invalid identity token")
			abort(c, http.StatusUnauthorized, "invalid_token", "Invalid identity token", "INVALID_TOKEN")
		}
		return nil, false
	}

	return claims, true
}

func (a *Auth) resolve(c *gin.Context, claims *jwt.Claims) bool {
	principal, err := a.resolver.ResolvePrincipal(c.Request.Context(), claims.Subject)
	if err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			abort(c, http.StatusUnauthorized, "unauthorized", "No account exists for this identity; call /api/v1/me/sync first", "USER_NOT_PROVISIONED")
			return false
		}
		a.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Failed to resolve principal")
		abort(c, http.StatusInternalServerError, "internal_error", "Failed to resolve user", "")
		return false
	}

	c.Set(IdentityContextKey, claims)
	c.Set(PrincipalContextKey, principal)
	return true
}

// RequireHost rejects principals without the host role
func RequireHost() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "User context not found", "MISSING_USER_CONTEXT")
			return
		}
		if !principal.IsHost() {
			abort(c, http.StatusForbidden, "forbidden", "Host account required", "HOST_REQUIRED")
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from Gin context
func GetPrincipal(c *gin.Context) (*models.Principal, bool) {
	value, exists := c.Get(PrincipalContextKey)
	if !exists {
		return nil, false
	}
	principal, ok := value.(*models.Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}

// GetIdentity retrieves the verified identity claims from Gin context
func GetIdentity(c *gin.Context) (*jwt.Claims, bool) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*jwt.Claims)
	return claims, ok && claims != nil
}

func abort(c *gin.Context, status int, code, message, reason string) {
	body := gin.H{"error": code, "message": message}
	if reason != "" {
		body["code"] = reason
	}
	c.AbortWithStatusJSON(status, body)
}
