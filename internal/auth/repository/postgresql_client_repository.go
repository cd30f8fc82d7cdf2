// Package repository implements client persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	authDomain "github.com/allisson/expenses/internal/auth/domain"
	"github.com/allisson/expenses/internal/database"
	apperrors "github.com/allisson/expenses/internal/errors"
)

// clientColumns is the canonical column list shared by both backends.
const clientColumns = `id, name, owner_id, key_hash, is_active, created_at`

// PostgreSQLClientRepository implements client persistence for PostgreSQL.
type PostgreSQLClientRepository struct {
	db *sql.DB
}

// NewPostgreSQLClientRepository creates a new PostgreSQL client repository instance.
func NewPostgreSQLClientRepository(db *sql.DB) *PostgreSQLClientRepository {
	return &PostgreSQLClientRepository{db: db}
}

// Create inserts a new client into the PostgreSQL database.
func (p *PostgreSQLClientRepository) Create(ctx context.Context, client *authDomain.Client) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO clients (` + clientColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6)`

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
func (p *PostgreSQLClientRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*authDomain.Client, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

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
func (p *PostgreSQLClientRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE clients SET is_active = $1 WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, active, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update client active flag")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return authDomain.ErrClientNotFound
	}
	return nil
}

// scanClient maps one row into a client.
func scanClient(row *sql.Row) (*authDomain.Client, error) {
	var client authDomain.Client
	err := row.Scan(
		&client.ID,
		&client.Name,
		&client.OwnerID,
		&client.KeyHash,
		&client.IsActive,
		&client.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}
