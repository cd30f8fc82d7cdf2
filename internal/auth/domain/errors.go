package domain

import (
	"github.com/allisson/expenses/internal/errors"
)

// Authentication errors.
var (
	// ErrClientNotFound indicates a client with the specified ID was not found.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrInvalidCredentials indicates a malformed or non-matching API key.
	// Covers unknown client ids too, so callers cannot enumerate clients.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrClientInactive indicates the client exists but is deactivated.
	ErrClientInactive = errors.Wrap(errors.ErrForbidden, "client is inactive")
)
