// Package usecase implements client management and API key authentication.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/expenses/internal/auth/domain"
)

// ClientRepository defines the persistence operations for API clients.
type ClientRepository interface {
	Create(ctx context.Context, client *authDomain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Client, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// ClientUseCase defines the operations exposed by the auth module.
type ClientUseCase interface {
	// CreateClient creates a client and returns its API key. The key is
	// shown exactly once.
	CreateClient(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)

	// Authenticate resolves an API key of the form "<client-id>.<secret>" to
	// its client. Returns ErrInvalidCredentials for malformed keys, unknown
	// clients and non-matching secrets, and ErrClientInactive for
	// deactivated clients.
	Authenticate(ctx context.Context, apiKey string) (*authDomain.Client, error)

	// SetActive activates or deactivates a client.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
