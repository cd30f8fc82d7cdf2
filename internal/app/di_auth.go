package app

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/expenses/internal/auth/http"
	authRepository "github.com/allisson/expenses/internal/auth/repository"
	authService "github.com/allisson/expenses/internal/auth/service"
	authUseCase "github.com/allisson/expenses/internal/auth/usecase"
)

// KeyService returns the key service for API key operations.
func (c *Container) KeyService() authService.KeyService {
	c.keyServiceInit.Do(func() {
		c.keyService = authService.NewKeyService()
	})
	return c.keyService
}

// ClientRepository returns the client repository based on database driver.
func (c *Container) ClientRepository() (authUseCase.ClientRepository, error) {
	var err error
	c.clientRepoInit.Do(func() {
		c.clientRepository, err = c.initClientRepository()
		if err != nil {
			c.initErrors["clientRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientRepository"]; exists {
		return nil, storedErr
	}
	return c.clientRepository, nil
}

// ClientUseCase returns the client use case.
func (c *Container) ClientUseCase() (authUseCase.ClientUseCase, error) {
	var err error
	c.clientUseCaseInit.Do(func() {
		c.clientUseCase, err = c.initClientUseCase()
		if err != nil {
			c.initErrors["clientUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientUseCase"]; exists {
		return nil, storedErr
	}
	return c.clientUseCase, nil
}

// initClientRepository creates the client repository based on the database driver.
func (c *Container) initClientRepository() (authUseCase.ClientRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLClientRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initClientUseCase creates the client use case with all its dependencies.
func (c *Container) initClientUseCase() (authUseCase.ClientUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for client use case: %w", err)
	}

	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client use case: %w", err)
	}

	baseUseCase := authUseCase.NewClientUseCase(txManager, clientRepository, c.KeyService())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for client use case: %w", err)
		}
		return authUseCase.NewClientUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// authHTTPMiddleware creates the API key authentication middleware.
func authHTTPMiddleware(clientUseCase authUseCase.ClientUseCase, logger *slog.Logger) gin.HandlerFunc {
	return authHTTP.AuthenticationMiddleware(clientUseCase, logger)
}

// rateLimitHTTPMiddleware creates the per-client rate limiting middleware.
func rateLimitHTTPMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	return authHTTP.RateLimitMiddleware(rps, burst, logger)
}
