// Package domain defines the authentication domain model.
//
// API clients authenticate with an opaque key of the form "<client-id>.<secret>".
// The secret is stored only as an Argon2id hash; each client is bound to the
// owner principal its expenses belong to.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client represents an API client allowed to call the service.
type Client struct {
	// ID is the unique identifier (UUIDv7), embedded in the API key.
	ID uuid.UUID
	// Name is a human-readable label for the client.
	Name string
	// OwnerID is the principal all of this client's expenses belong to. It is
	// resolved from the key at authentication time and never taken from
	// request payloads.
	OwnerID string
	// KeyHash is the Argon2id hash of the key secret. The plain secret is
	// shown once at creation and never stored.
	KeyHash string
	// IsActive gates authentication; inactive clients are rejected.
	IsActive bool
	CreatedAt time.Time
}

// CreateClientInput contains the parameters for creating a new API client.
// The key secret is always generated server-side.
type CreateClientInput struct {
	Name     string
	OwnerID  string
	IsActive bool
}

// CreateClientOutput contains the result of creating a client. PlainKey is
// returned exactly once and is not retrievable afterwards.
type CreateClientOutput struct {
	ID       uuid.UUID
	PlainKey string
}
