package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	authUseCase "github.com/allisson/expenses/internal/auth/usecase"
)

// RunUpdateClient activates or deactivates an existing API client.
// Deactivated clients fail authentication until reactivated; their API keys
// stay valid and work again once the client is active.
func RunUpdateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	clientID string,
	isActive bool,
	io IOTuple,
) error {
	id, err := uuid.Parse(clientID)
	if err != nil {
		return fmt.Errorf("invalid client id: %w", err)
	}

	if err := clientUseCase.SetActive(ctx, id, isActive); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	state := "deactivated"
	if isActive {
		state = "activated"
	}

	_, _ = fmt.Fprintf(io.Writer, "Client %s %s\n", id.String(), state)

	logger.Info("client updated",
		slog.String("client_id", id.String()),
		slog.Bool("is_active", isActive),
	)

	return nil
}
