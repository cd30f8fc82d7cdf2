package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/allisson/expenses/internal/auth/usecase"
	apperrors "github.com/allisson/expenses/internal/errors"
	"github.com/allisson/expenses/internal/httputil"
)

// AuthenticationMiddleware authenticates requests via a Bearer API key.
//
// The Authorization header carries "Bearer <client-id>.<secret>". On success
// the resolved client is stored in the request context; downstream handlers
// read it with GetClient and use its OwnerID as the expense owner.
//
// Error handling:
//   - Missing or malformed Authorization header yields 401
//   - Unknown client or wrong secret yields 401 (via ErrInvalidCredentials)
//   - Inactive client yields 403 (via ErrClientInactive)
func AuthenticationMiddleware(clientUseCase authUseCase.ClientUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		apiKey := authHeader[len(bearerPrefix):]
		if apiKey == "" {
			logger.Debug("authentication failed: empty bearer key")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		client, err := clientUseCase.Authenticate(c.Request.Context(), apiKey)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithClient(c.Request.Context(), client)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("client_id", client.ID.String()),
			slog.String("owner_id", client.OwnerID))

		c.Next()
	}
}
