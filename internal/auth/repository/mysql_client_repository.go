package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	authDomain "github.com/allisson/expenses/internal/auth/domain"
	"github.com/allisson/expenses/internal/database"
	apperrors "github.com/allisson/expenses/internal/errors"
)

// MySQLClientRepository implements client persistence for MySQL.
type MySQLClientRepository struct {
	db *sql.DB
}

// NewMySQLClientRepository creates a new MySQL client repository instance.
func NewMySQLClientRepository(db *sql.DB) *MySQLClientRepository {
	return &MySQLClientRepository{db: db}
}

// Create inserts a new client into the MySQL database.
func (m *MySQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO clients (` + clientColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		client.ID,
		client.Name,
		client.OwnerID,
		client.KeyHash,
		client.IsActive,
		client.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create client")
	}
	return nil
}

// GetByID retrieves a client by its primary key.
func (m *MySQLClientRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*authDomain.Client, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	client, err := scanClient(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, authDomain.ErrClientNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get client by id")
	}
	return client, nil
}

// SetActive flips the active flag of a client.
func (m *MySQLClientRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE clients SET is_active = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, active, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update client active flag")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return authDomain.ErrClientNotFound
	}
	return nil
}
