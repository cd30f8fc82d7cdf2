package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/expenses/internal/auth/domain"
	authService "github.com/allisson/expenses/internal/auth/service"
	"github.com/allisson/expenses/internal/database"
	apperrors "github.com/allisson/expenses/internal/errors"
)

// clientUseCase implements ClientUseCase.
type clientUseCase struct {
	txManager  database.TxManager
	clientRepo ClientRepository
	keyService authService.KeyService
}

// NewClientUseCase creates a new ClientUseCase with the provided dependencies.
func NewClientUseCase(
	txManager database.TxManager,
	clientRepo ClientRepository,
	keyService authService.KeyService,
) ClientUseCase {
	return &clientUseCase{
		txManager:  txManager,
		clientRepo: clientRepo,
		keyService: keyService,
	}
}

// CreateClient generates a key secret, persists the client with the secret's
// hash and returns the composite API key. The plain secret is never stored.
func (c *clientUseCase) CreateClient(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "client name cannot be empty")
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "owner id cannot be empty")
	}

	plainSecret, hashedSecret, err := c.keyService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	client := &authDomain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      input.Name,
		OwnerID:   input.OwnerID,
		KeyHash:   hashedSecret,
		IsActive:  input.IsActive,
		CreatedAt: time.Now().UTC(),
	}

	err = c.txManager.WithTx(ctx, func(ctx context.Context) error {
		return c.clientRepo.Create(ctx, client)
	})
	if err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{
		ID:       client.ID,
		PlainKey: client.ID.String() + "." + plainSecret,
	}, nil
}

// Authenticate validates an API key and returns the associated client.
//
// Malformed keys, unknown client ids and wrong secrets all collapse into
// ErrInvalidCredentials so the error reveals nothing about which part failed.
func (c *clientUseCase) Authenticate(ctx context.Context, apiKey string) (*authDomain.Client, error) {
	clientIDPart, secret, found := strings.Cut(apiKey, ".")
	if !found || secret == "" {
		return nil, authDomain.ErrInvalidCredentials
	}

	clientID, err := uuid.Parse(clientIDPart)
	if err != nil {
		return nil, authDomain.ErrInvalidCredentials
	}

	client, err := c.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, authDomain.ErrClientNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !client.IsActive {
		return nil, authDomain.ErrClientInactive
	}

	if !c.keyService.CompareSecret(secret, client.KeyHash) {
		return nil, authDomain.ErrInvalidCredentials
	}

	return client, nil
}

// SetActive activates or deactivates a client.
func (c *clientUseCase) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return c.txManager.WithTx(ctx, func(ctx context.Context) error {
		return c.clientRepo.SetActive(ctx, id, active)
	})
}
