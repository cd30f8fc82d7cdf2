package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/expenses/internal/auth/domain"
	"github.com/allisson/expenses/internal/metrics"
)

// clientUseCaseWithMetrics decorates ClientUseCase with metrics instrumentation.
type clientUseCaseWithMetrics struct {
	next    ClientUseCase
	metrics metrics.BusinessMetrics
}

// NewClientUseCaseWithMetrics wraps a ClientUseCase with metrics recording.
func NewClientUseCaseWithMetrics(useCase ClientUseCase, m metrics.BusinessMetrics) ClientUseCase {
	return &clientUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *clientUseCaseWithMetrics) record(
	ctx context.Context,
	operation string,
	start time.Time,
	err error,
) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordOperation(ctx, "auth", operation, status)
	c.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// CreateClient records metrics for client creation.
func (c *clientUseCaseWithMetrics) CreateClient(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	start := time.Now()
	output, err := c.next.CreateClient(ctx, input)
	c.record(ctx, "client_create", start, err)
	return output, err
}

// Authenticate records metrics for key authentication.
func (c *clientUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	apiKey string,
) (*authDomain.Client, error) {
	start := time.Now()
	client, err := c.next.Authenticate(ctx, apiKey)
	c.record(ctx, "client_authenticate", start, err)
	return client, err
}

// SetActive records metrics for client activation changes.
func (c *clientUseCaseWithMetrics) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	start := time.Now()
	err := c.next.SetActive(ctx, id, active)
	c.record(ctx, "client_set_active", start, err)
	return err
}
