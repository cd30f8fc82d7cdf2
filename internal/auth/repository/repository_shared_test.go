package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/expenses/internal/auth/domain"
	authUseCase "github.com/allisson/expenses/internal/auth/usecase"
)

func newTestClient(name string) *authDomain.Client {
	return &authDomain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      name,
		OwnerID:   "u1",
		KeyHash:   "test-key-hash",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// runClientRepositorySuite exercises the shared repository contract against a
// real database. cleanup truncates all tables and runs before every subtest.
func runClientRepositorySuite(
	t *testing.T,
	repo authUseCase.ClientRepository,
	cleanup func(),
) {
	ctx := context.Background()

	t.Run("CreateAndGetByID", func(t *testing.T) {
		cleanup()

		client := newTestClient("billing-service")
		require.NoError(t, repo.Create(ctx, client))

		got, err := repo.GetByID(ctx, client.ID)
		require.NoError(t, err)

		assert.Equal(t, client.ID, got.ID)
		assert.Equal(t, client.Name, got.Name)
		assert.Equal(t, client.OwnerID, got.OwnerID)
		assert.Equal(t, client.KeyHash, got.KeyHash)
		assert.True(t, got.IsActive)
		assert.WithinDuration(t, client.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		cleanup()

		_, err := repo.GetByID(ctx, uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
	})

	t.Run("SetActive", func(t *testing.T) {
		cleanup()

		client := newTestClient("billing-service")
		require.NoError(t, repo.Create(ctx, client))

		require.NoError(t, repo.SetActive(ctx, client.ID, false))

		got, err := repo.GetByID(ctx, client.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		require.NoError(t, repo.SetActive(ctx, client.ID, true))

		got, err = repo.GetByID(ctx, client.ID)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
	})

	t.Run("SetActiveNotFound", func(t *testing.T) {
		cleanup()

		err := repo.SetActive(ctx, uuid.Must(uuid.NewV7()), false)
		assert.ErrorIs(t, err, authDomain.ErrClientNotFound)
	})
}
