package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/expenses/internal/errors"
)

func TestRunUpdateClient(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	clientID := uuid.Must(uuid.NewV7())

	t.Run("Deactivate", func(t *testing.T) {
		var gotID uuid.UUID
		var gotActive bool
		useCase := &stubClientUseCase{
			setActiveFn: func(ctx context.Context, id uuid.UUID, active bool) error {
				gotID = id
				gotActive = active
				return nil
			},
		}

		var out bytes.Buffer
		err := RunUpdateClient(ctx, useCase, logger, clientID.String(), false, IOTuple{Writer: &out})

		require.NoError(t, err)
		assert.Equal(t, clientID, gotID)
		assert.False(t, gotActive)
		assert.Contains(t, out.String(), "deactivated")
	})

	t.Run("InvalidID", func(t *testing.T) {
		useCase := &stubClientUseCase{}

		var out bytes.Buffer
		err := RunUpdateClient(ctx, useCase, logger, "not-a-uuid", true, IOTuple{Writer: &out})

		assert.Error(t, err)
	})

	t.Run("UnknownClient", func(t *testing.T) {
		useCase := &stubClientUseCase{
			setActiveFn: func(ctx context.Context, id uuid.UUID, active bool) error {
				return apperrors.ErrNotFound
			},
		}

		var out bytes.Buffer
		err := RunUpdateClient(ctx, useCase, logger, clientID.String(), true, IOTuple{Writer: &out})

		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}
