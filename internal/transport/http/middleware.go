package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/messagely/server/internal/auth"
	"github.com/messagely/server/internal/domain"
)

const (
	// ContextKeyUsername is the context key for the authenticated username.
	ContextKeyUsername = "username"
	// RequestIDHeader carries the request id back to the caller.
	RequestIDHeader = "X-Request-ID"
)

// AuthMiddleware validates the bearer token and stores the acting username
// in the request context. Requests without a verifiable token are rejected
// with Unauthenticated before any policy evaluation runs.
func AuthMiddleware(authService *auth.Service, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug().Msg("missing authorization header")
			respondError(c, logger, domain.Unauthenticated())
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug().Msg("invalid authorization header format")
			respondError(c, logger, domain.Unauthenticated())
			c.Abort()
			return
		}

		claims, err := authService.VerifyToken(parts[1])
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			respondError(c, logger, domain.Unauthenticated())
			c.Abort()
			return
		}

		c.Set(ContextKeyUsername, claims.Username)
		c.Next()
	}
}

// RequestIDMiddleware attaches a request id to the response, generating one
// when the caller did not supply it.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Set(RequestIDHeader, id)
		c.Next()
	}
}

// LoggerMiddleware logs HTTP requests after completion.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Str("request_id", c.GetString(RequestIDHeader)).
			Msg("http request")
	}
}

// actingUsername returns the authenticated username stored by
// AuthMiddleware.
func actingUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}
